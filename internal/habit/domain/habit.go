package domain

import "time"

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

type TargetType string

const (
	TargetBoolean  TargetType = "boolean"
	TargetCount    TargetType = "count"
	TargetDuration TargetType = "duration"
)

func (t TargetType) Valid() bool {
	return t == TargetBoolean || t == TargetCount || t == TargetDuration
}

// Habit is a recurring practice tracked by per-date completions.
type Habit struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"index;not null"`
	Name        string     `json:"name" gorm:"not null"`
	Description string     `json:"description"`
	Frequency   Frequency  `json:"frequency" gorm:"default:daily"`
	TargetType  TargetType `json:"target_type" gorm:"default:boolean"`
	// TargetValue is the goal per completion (count reps, duration
	// minutes); ignored for boolean habits.
	TargetValue   float64   `json:"target_value"`
	Unit          string    `json:"unit"`
	Color         string    `json:"color"`
	Icon          string    `json:"icon"`
	SortOrder     int       `json:"sort_order"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	Archived      bool      `json:"archived"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HabitCompletion marks a habit done on one date. At most one row exists
// per (habit, date).
type HabitCompletion struct {
	ID      string `json:"id" gorm:"primaryKey"`
	HabitID string `json:"habit_id" gorm:"uniqueIndex:idx_habit_date;not null"`
	// Date is the YYYY-MM-DD day key the completion belongs to.
	Date      string    `json:"date" gorm:"uniqueIndex:idx_habit_date;not null"`
	Value     float64   `json:"value"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
