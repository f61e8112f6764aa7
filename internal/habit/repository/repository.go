package repository

import (
	"coachly-backend/internal/habit/domain"
)

// HabitRepository defines the interface for habit data access
type HabitRepository interface {
	Create(habit *domain.Habit) error
	FindByID(id string) (*domain.Habit, error)
	FindByUser(userID string, includeArchived bool) ([]*domain.Habit, error)
	Update(habit *domain.Habit) error
	UpdateOrders(orders map[string]int) error
	Delete(id string) error

	// SaveCompletion inserts a completion; a second insert for the same
	// (habit, date) is a no-op
	SaveCompletion(completion *domain.HabitCompletion) error
	DeleteCompletion(habitID, date string) error
	FindCompletion(habitID, date string) (*domain.HabitCompletion, error)
	FindCompletions(habitID string, from, to string) ([]*domain.HabitCompletion, error)
	FindCompletionDates(habitID string) ([]string, error)
}
