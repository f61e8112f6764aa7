package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Per-type settings structs. Exactly one pointer may be set, and it must
// match the task's type tag.

type TodoSettings struct {
	Checklist []string `json:"checklist,omitempty"`
}

type VideoSettings struct {
	URL           string `json:"url,omitempty"`
	TargetMinutes int    `json:"target_minutes,omitempty"`
}

type ExamSettings struct {
	Subject         string `json:"subject,omitempty"`
	TargetQuestions int    `json:"target_questions,omitempty"`
}

type NutritionSettings struct {
	Calories int    `json:"calories,omitempty"`
	Meal     string `json:"meal,omitempty"`
}

type MusicSettings struct {
	Piece          string `json:"piece,omitempty"`
	PracticeMinutes int   `json:"practice_minutes,omitempty"`
}

type OtherSettings struct {
	Note string `json:"note,omitempty"`
}

// Settings is the tagged union of per-type task settings, stored as JSON.
type Settings struct {
	Todo      *TodoSettings      `json:"todo,omitempty"`
	Video     *VideoSettings     `json:"video,omitempty"`
	Exam      *ExamSettings      `json:"exam,omitempty"`
	Nutrition *NutritionSettings `json:"nutrition,omitempty"`
	Music     *MusicSettings     `json:"music,omitempty"`
	Other     *OtherSettings     `json:"other,omitempty"`
}

// Validate checks the union against the task's type tag; at most the
// matching variant may be populated.
func (s Settings) Validate(t TaskType) error {
	variants := map[TaskType]bool{
		TypeTodo:      s.Todo != nil,
		TypeVideo:     s.Video != nil,
		TypeExam:      s.Exam != nil,
		TypeNutrition: s.Nutrition != nil,
		TypeMusic:     s.Music != nil,
		TypeOther:     s.Other != nil,
	}

	for variant, set := range variants {
		if set && variant != t {
			return fmt.Errorf("settings for type %q not allowed on a %q task", variant, t)
		}
	}
	return nil
}

// Value implements driver.Valuer
func (s Settings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *Settings) Scan(value interface{}) error {
	if value == nil {
		*s = Settings{}
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
		*s = Settings{}
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Metadata holds genuinely unstructured per-task extras: attachment URLs,
// display style, recurrence marker. Unlike Settings it carries no schema.
type Metadata map[string]interface{}

// Value implements driver.Valuer
func (m Metadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = Metadata{}
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
		*m = Metadata{}
		return nil
	}
	return json.Unmarshal(bytes, m)
}
