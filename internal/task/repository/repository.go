package repository

import (
	"time"

	"coachly-backend/internal/task/domain"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *domain.Task) error

	// CreateBatch inserts several tasks in one transaction (template apply)
	CreateBatch(tasks []*domain.Task) error

	// FindByID finds a task by its ID
	FindByID(id string) (*domain.Task, error)

	// FindByDate finds a user's top-level tasks for one due date, ordered
	FindByDate(userID string, date time.Time) ([]*domain.Task, error)

	// FindRange finds all of a user's tasks with due dates in [from, to]
	FindRange(userID string, from, to time.Time) ([]*domain.Task, error)

	// FindByParent finds the ordered children of a task
	FindByParent(parentID string) ([]*domain.Task, error)

	// FindChildren finds children of any of the given parents (cascade sets)
	FindChildren(parentIDs []string) ([]*domain.Task, error)

	// FindProjectRoots finds a project's top-level tasks, ordered
	FindProjectRoots(projectID string) ([]*domain.Task, error)

	// FindByProject finds every task of a project
	FindByProject(projectID string) ([]*domain.Task, error)

	// FindByUser finds every task of a user (search)
	FindByUser(userID string) ([]*domain.Task, error)

	// Update updates an existing task
	Update(task *domain.Task) error

	// UpdateOrders persists a dense renumbering of one or two sibling
	// scopes in a single transaction
	UpdateOrders(orders map[string]int) error

	// ApplyMove saves the moved task (new parent/date) and the renumbered
	// sibling orders of both scopes atomically
	ApplyMove(task *domain.Task, orders map[string]int) error

	// UpdateDates rewrites the due date of every listed task (group move)
	UpdateDates(ids []string, date time.Time, orders map[string]int) error

	// DeleteMany removes the task ids in one transaction (cascade delete)
	DeleteMany(ids []string) error

	// FindPendingReminders finds tasks where reminder_at <= now AND
	// reminder_sent = false AND not completed
	FindPendingReminders(now time.Time) ([]*domain.Task, error)

	// MarkReminderSent marks a task's reminder as sent
	MarkReminderSent(id string) error
}
