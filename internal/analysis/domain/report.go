package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"coachly-backend/pkg/ai"
)

type ReportStatus string

const (
	StatusPending ReportStatus = "pending"
	StatusReady   ReportStatus = "ready"
	StatusFailed  ReportStatus = "failed"
)

// Suggestions is stored as a JSON column on the report row.
type Suggestions []ai.TaskSuggestion

func (s Suggestions) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *Suggestions) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return errors.New("failed to scan Suggestions")
		}
	}
	return json.Unmarshal(bytes, s)
}

// Report is one generated progress analysis for a student over a period.
type Report struct {
	ID          string       `json:"id" gorm:"primaryKey"`
	UserID      string       `json:"user_id" gorm:"index;not null"`
	RequestedBy string       `json:"requested_by"`
	// From/To are YYYY-MM-DD day keys bounding the analyzed period.
	From        string       `json:"from" gorm:"not null"`
	To          string       `json:"to" gorm:"not null"`
	Status      ReportStatus `json:"status" gorm:"default:pending"`
	Summary     string       `json:"summary"`
	Analysis    string       `json:"analysis"`
	Suggestions Suggestions  `json:"suggestions" gorm:"type:json"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
