package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coachly-backend/internal/habit/domain"
)

type habitRepository struct {
	db *gorm.DB
}

// NewHabitRepository creates a new instance of HabitRepository
func NewHabitRepository(db *gorm.DB) HabitRepository {
	return &habitRepository{db: db}
}

func (r *habitRepository) Create(habit *domain.Habit) error {
	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	habit.CreatedAt = time.Now()
	habit.UpdatedAt = time.Now()
	return r.db.Create(habit).Error
}

func (r *habitRepository) FindByID(id string) (*domain.Habit, error) {
	var habit domain.Habit
	err := r.db.Where("id = ?", id).First(&habit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &habit, nil
}

func (r *habitRepository) FindByUser(userID string, includeArchived bool) ([]*domain.Habit, error) {
	query := r.db.Where("user_id = ?", userID)
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}
	var habits []*domain.Habit
	err := query.Order("sort_order ASC").Find(&habits).Error
	if err != nil {
		return nil, err
	}
	return habits, nil
}

func (r *habitRepository) Update(habit *domain.Habit) error {
	habit.UpdatedAt = time.Now()
	return r.db.Save(habit).Error
}

func (r *habitRepository) UpdateOrders(orders map[string]int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for id, order := range orders {
			err := tx.Model(&domain.Habit{}).
				Where("id = ?", id).
				Updates(map[string]interface{}{
					"sort_order": order,
					"updated_at": time.Now(),
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *habitRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", id).Delete(&domain.HabitCompletion{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Habit{}).Error
	})
}

func (r *habitRepository) SaveCompletion(completion *domain.HabitCompletion) error {
	if completion.ID == "" {
		completion.ID = uuid.New().String()
	}
	if completion.CreatedAt.IsZero() {
		completion.CreatedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(completion).Error
}

func (r *habitRepository) DeleteCompletion(habitID, date string) error {
	return r.db.Where("habit_id = ? AND date = ?", habitID, date).
		Delete(&domain.HabitCompletion{}).Error
}

func (r *habitRepository) FindCompletion(habitID, date string) (*domain.HabitCompletion, error) {
	var completion domain.HabitCompletion
	err := r.db.Where("habit_id = ? AND date = ?", habitID, date).First(&completion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &completion, nil
}

func (r *habitRepository) FindCompletions(habitID string, from, to string) ([]*domain.HabitCompletion, error) {
	var completions []*domain.HabitCompletion
	err := r.db.Where("habit_id = ? AND date >= ? AND date <= ?", habitID, from, to).
		Order("date ASC").
		Find(&completions).Error
	if err != nil {
		return nil, err
	}
	return completions, nil
}

func (r *habitRepository) FindCompletionDates(habitID string) ([]string, error) {
	var dates []string
	err := r.db.Model(&domain.HabitCompletion{}).
		Where("habit_id = ?", habitID).
		Order("date ASC").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}
