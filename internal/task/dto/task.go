package dto

import (
	"coachly-backend/internal/task/domain"
)

type CreateTaskRequest struct {
	UserID      string           `json:"user_id"`
	ProjectID   *string          `json:"project_id"`
	ParentID    *string          `json:"parent_id"`
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Type        domain.TaskType  `json:"type" binding:"required"`
	DueDate     string           `json:"due_date" binding:"required"`
	DueTime     *string          `json:"due_time"`
	DurationMin int              `json:"duration_min"`
	Settings    *domain.Settings `json:"settings"`
	Metadata    domain.Metadata  `json:"metadata"`
	ReminderAt  *string          `json:"reminder_at"`
}

type UpdateTaskRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	DueDate     *string          `json:"due_date"`
	DueTime     *string          `json:"due_time"`
	DurationMin *int             `json:"duration_min"`
	Settings    *domain.Settings `json:"settings"`
	Metadata    domain.Metadata  `json:"metadata"`
	ReminderAt  *string          `json:"reminder_at"`
}

type CompleteTaskRequest struct {
	Completed bool `json:"completed"`
}

type ReorderTaskRequest struct {
	TargetID string `json:"target_id" binding:"required"`
	After    bool   `json:"after"`
}

type ReparentTaskRequest struct {
	ParentID *string `json:"parent_id"`
	Position int     `json:"position"`
}

type TaskNode struct {
	*domain.Task
	Children []*TaskNode `json:"children"`
}
