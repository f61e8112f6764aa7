package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coachly-backend/internal/task/domain"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(task *domain.Task) error {
	task.ID = uuid.New().String()
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	return r.db.Create(task).Error
}

func (r *taskRepository) CreateBatch(tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	now := time.Now()
	for _, task := range tasks {
		task.ID = uuid.New().String()
		task.CreatedAt = now
		task.UpdatedAt = now
	}
	return r.db.Create(&tasks).Error
}

func (r *taskRepository) FindByID(id string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) FindByDate(userID string, date time.Time) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.Where("user_id = ? AND due_date = ? AND parent_id IS NULL", userID, domain.NormalizeDate(date)).
		Order("sort_order ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindRange(userID string, from, to time.Time) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.Where("user_id = ? AND due_date >= ? AND due_date <= ?",
		userID, domain.NormalizeDate(from), domain.NormalizeDate(to)).
		Order("due_date ASC, sort_order ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindByParent(parentID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.Where("parent_id = ?", parentID).
		Order("sort_order ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindChildren(parentIDs []string) ([]*domain.Task, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var tasks []*domain.Task
	err := r.db.Where("parent_id IN ?", parentIDs).Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindProjectRoots(projectID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.Where("project_id = ? AND parent_id IS NULL", projectID).
		Order("sort_order ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindByProject(projectID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.Where("project_id = ?", projectID).
		Order("sort_order ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindByUser(userID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.Where("user_id = ?", userID).Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Update(task *domain.Task) error {
	task.UpdatedAt = time.Now()
	return r.db.Save(task).Error
}

func (r *taskRepository) UpdateOrders(orders map[string]int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return applyOrders(tx, orders)
	})
}

func (r *taskRepository) ApplyMove(task *domain.Task, orders map[string]int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		task.UpdatedAt = time.Now()
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		return applyOrders(tx, orders)
	})
}

func (r *taskRepository) UpdateDates(ids []string, date time.Time, orders map[string]int) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Task{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"due_date":   domain.NormalizeDate(date),
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			return err
		}
		return applyOrders(tx, orders)
	})
}

func (r *taskRepository) DeleteMany(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Where("id IN ?", ids).Delete(&domain.Task{}).Error
	})
}

func (r *taskRepository) FindPendingReminders(now time.Time) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.Where("reminder_at IS NOT NULL AND reminder_at <= ? AND reminder_sent = ? AND completed = ?",
		now, false, false).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) MarkReminderSent(id string) error {
	return r.db.Model(&domain.Task{}).
		Where("id = ?", id).
		Update("reminder_sent", true).Error
}

func applyOrders(tx *gorm.DB, orders map[string]int) error {
	for id, order := range orders {
		err := tx.Model(&domain.Task{}).
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
}
