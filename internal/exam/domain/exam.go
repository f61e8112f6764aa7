package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ExamTemplate describes one exam format: its sections and their sizes.
type ExamTemplate struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	CreatedBy   string        `json:"created_by" gorm:"index"`
	Name        string        `json:"name" gorm:"not null"`
	Description string        `json:"description"`
	DurationMin int           `json:"duration_min"`
	Sections    []ExamSection `json:"sections" gorm:"foreignKey:TemplateID"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TotalQuestions sums the section sizes.
func (t *ExamTemplate) TotalQuestions() int {
	total := 0
	for _, s := range t.Sections {
		total += s.QuestionCount
	}
	return total
}

// ExamSection is one scored part of an exam template.
type ExamSection struct {
	ID            string `json:"id" gorm:"primaryKey"`
	TemplateID    string `json:"template_id" gorm:"index;not null"`
	Name          string `json:"name" gorm:"not null"`
	QuestionCount int    `json:"question_count" gorm:"not null"`
	SortOrder     int    `json:"sort_order"`
}

// SectionResult is the scored outcome of one section. Empty and Net are
// derived from the raw counts.
type SectionResult struct {
	SectionID string  `json:"section_id"`
	Name      string  `json:"name"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Empty     int     `json:"empty"`
	Net       float64 `json:"net"`
}

// SectionResults is stored as a JSON column on the result row.
type SectionResults []SectionResult

func (s SectionResults) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *SectionResults) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return errors.New("failed to scan SectionResults")
		}
	}
	return json.Unmarshal(bytes, s)
}

// ExamResult is one student's scored attempt at an exam template.
type ExamResult struct {
	ID         string         `json:"id" gorm:"primaryKey"`
	UserID     string         `json:"user_id" gorm:"index;not null"`
	TemplateID string         `json:"template_id" gorm:"index;not null"`
	// Date is the YYYY-MM-DD day key the exam was taken.
	Date       string         `json:"date" gorm:"not null"`
	Sections   SectionResults `json:"sections" gorm:"type:json"`
	TotalNet   float64        `json:"total_net"`
	Note       string         `json:"note"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Score fills the derived fields of a section result. Every incorrect
// answer costs a quarter point.
func Score(section *ExamSection, correct, incorrect int) (SectionResult, error) {
	if correct < 0 || incorrect < 0 {
		return SectionResult{}, errors.New("answer counts cannot be negative")
	}
	if correct+incorrect > section.QuestionCount {
		return SectionResult{}, fmt.Errorf(
			"section %s has %d questions, got %d answers",
			section.Name, section.QuestionCount, correct+incorrect)
	}
	return SectionResult{
		SectionID: section.ID,
		Name:      section.Name,
		Correct:   correct,
		Incorrect: incorrect,
		Empty:     section.QuestionCount - correct - incorrect,
		Net:       float64(correct) - float64(incorrect)/4.0,
	}, nil
}
