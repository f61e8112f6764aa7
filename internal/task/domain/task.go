package domain

import (
	"fmt"
	"time"
)

// TaskType is the closed vocabulary of task variants. Each variant carries
// its own settings struct; validation happens once where a task is created
// or edited, not at every consumer.
type TaskType string

const (
	TypeTodo      TaskType = "todo"
	TypeVideo     TaskType = "video"
	TypeExam      TaskType = "exam"
	TypeNutrition TaskType = "nutrition"
	TypeMusic     TaskType = "music"
	TypeOther     TaskType = "other"
)

func (t TaskType) Valid() bool {
	switch t {
	case TypeTodo, TypeVideo, TypeExam, TypeNutrition, TypeMusic, TypeOther:
		return true
	}
	return false
}

// Task represents a unit of work owned by a student. Top-level tasks are
// ordered within their (owner, due date) column; child tasks within their
// parent. Sort orders are dense 0..n-1 per sibling scope.
type Task struct {
	ID          string   `json:"id" gorm:"primaryKey"`
	UserID      string   `json:"user_id" gorm:"index;not null"`
	ProjectID   *string  `json:"project_id,omitempty" gorm:"index"`
	ParentID    *string  `json:"parent_id,omitempty" gorm:"index"`
	Title       string   `json:"title" gorm:"not null"`
	Description string   `json:"description,omitempty"`
	Type        TaskType `json:"type" gorm:"default:todo"`

	DueDate time.Time `json:"due_date" gorm:"index"`         // date component only, UTC midnight
	DueTime *string   `json:"due_time,omitempty"`            // "15:04", optional
	DurationMin int   `json:"duration_min,omitempty"`

	Completed   bool       `json:"completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	SortOrder int `json:"sort_order" gorm:"column:sort_order;not null;default:0"`

	Settings Settings `json:"settings" gorm:"type:text"`
	Metadata Metadata `json:"metadata,omitempty" gorm:"type:text"`

	// AssignedBy is set when a coach created the task for the student.
	AssignedBy string `json:"assigned_by,omitempty"`

	ReminderAt   *time.Time `json:"reminder_at,omitempty"`
	ReminderSent bool       `json:"reminder_sent" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateKey returns the YYYY-MM-DD key used for sibling scoping of top-level
// tasks.
func (t *Task) DateKey() string {
	return t.DueDate.Format("2006-01-02")
}

// NormalizeDate truncates a timestamp to its UTC date, the canonical due
// date representation.
func NormalizeDate(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD due date.
func ParseDate(s string) (time.Time, error) {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return ts, nil
}
