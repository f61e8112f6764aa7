package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	taskdomain "coachly-backend/internal/task/domain"
)

// Module tags a template with the coaching area it belongs to.
type Module string

const (
	ModuleExam      Module = "exam"
	ModuleNutrition Module = "nutrition"
	ModuleMusic     Module = "music"
	ModuleCoding    Module = "coding"
	ModuleGeneral   Module = "general"
)

func (m Module) Valid() bool {
	switch m {
	case ModuleExam, ModuleNutrition, ModuleMusic, ModuleCoding, ModuleGeneral:
		return true
	}
	return false
}

// TaskBlueprint is one planned task inside a program, anchored to a day
// offset instead of a calendar date. Day 1 is the program's start date.
type TaskBlueprint struct {
	Day         int                  `json:"day"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Type        taskdomain.TaskType  `json:"type"`
	DueTime     *string              `json:"due_time,omitempty"`
	DurationMin int                  `json:"duration_min,omitempty"`
	Settings    *taskdomain.Settings `json:"settings,omitempty"`
}

// TaskBlueprints is stored as a JSON column on the template row.
type TaskBlueprints []TaskBlueprint

func (b TaskBlueprints) Value() (driver.Value, error) {
	return json.Marshal(b)
}

func (b *TaskBlueprints) Scan(value interface{}) error {
	if value == nil {
		*b = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return errors.New("failed to scan TaskBlueprints")
		}
	}
	return json.Unmarshal(bytes, b)
}

// ProgramTemplate is a reusable multi-day training plan.
type ProgramTemplate struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	CreatedBy    string         `json:"created_by" gorm:"index"`
	Module       Module         `json:"module" gorm:"default:general"`
	Name         string         `json:"name" gorm:"not null"`
	Description  string         `json:"description"`
	DurationDays int            `json:"duration_days"`
	Blueprints   TaskBlueprints `json:"blueprints" gorm:"type:json"`
	Builtin      bool           `json:"builtin"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Expand materializes the template's blueprints into concrete tasks for a
// user starting on the given date. Blueprint fields copy over verbatim;
// only the day offset is resolved.
func (t *ProgramTemplate) Expand(userID string, start time.Time) []*taskdomain.Task {
	start = taskdomain.NormalizeDate(start)
	tasks := make([]*taskdomain.Task, 0, len(t.Blueprints))
	for _, b := range t.Blueprints {
		if b.Day < 1 {
			continue
		}
		task := &taskdomain.Task{
			UserID:      userID,
			Title:       b.Title,
			Description: b.Description,
			Type:        b.Type,
			DueDate:     start.AddDate(0, 0, b.Day-1),
			DueTime:     b.DueTime,
			DurationMin: b.DurationMin,
		}
		if b.Settings != nil {
			task.Settings = *b.Settings
		}
		tasks = append(tasks, task)
	}
	return tasks
}
