package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Role names. Roles are non-exclusive: a user can be both coach and admin.
const (
	RoleStudent = "student"
	RoleCoach   = "coach"
	RoleAdmin   = "admin"
)

// StringArray is a custom type to handle JSON array in GORM
type StringArray []string

// Value implements driver.Valuer
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = []string{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		*a = []string{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

func (a StringArray) Contains(s string) bool {
	for _, v := range a {
		if v == s {
			return true
		}
	}
	return false
}

type User struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	Email       string      `json:"email" gorm:"uniqueIndex;not null"`
	Password    string      `json:"-"` // Never return password in JSON
	Name        string      `json:"name"`
	AvatarURL   string      `json:"avatar_url,omitempty"`
	Provider    string      `json:"provider"` // "email" or "google"
	Roles       StringArray `json:"roles" gorm:"type:text"`
	Specialties StringArray `json:"specialties,omitempty" gorm:"type:text"` // coach subject tags
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (u *User) HasRole(role string) bool {
	return u.Roles.Contains(role)
}

type RefreshToken struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CoachStudent links one coach to one student. A student may have several
// coaches with different free-text role labels ("math tutor", "life coach").
type CoachStudent struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	StudentID string    `json:"student_id" gorm:"index:idx_student_coach;not null"`
	CoachID   string    `json:"coach_id" gorm:"index:idx_student_coach;not null"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}
