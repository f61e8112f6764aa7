package usecase

import (
	"errors"
	"time"

	taskdomain "coachly-backend/internal/task/domain"
	taskrepo "coachly-backend/internal/task/repository"

	"coachly-backend/internal/project/domain"
	"coachly-backend/internal/project/repository"
)

// AccessChecker answers whether an actor may touch a student's data.
type AccessChecker interface {
	CanAccessStudent(actorID, studentID string) (bool, error)
}

type CreateProjectRequest struct {
	UserID      string                 `json:"user_id"`
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	Status      domain.ProjectStatus   `json:"status"`
	Priority    domain.ProjectPriority `json:"priority"`
	Color       string                 `json:"color"`
	StartDate   *time.Time             `json:"start_date"`
	EndDate     *time.Time             `json:"end_date"`
}

type UpdateProjectRequest struct {
	Name        *string                 `json:"name"`
	Description *string                 `json:"description"`
	Status      *domain.ProjectStatus   `json:"status"`
	Priority    *domain.ProjectPriority `json:"priority"`
	Color       *string                 `json:"color"`
	StartDate   *time.Time              `json:"start_date"`
	EndDate     *time.Time              `json:"end_date"`
}

// ProjectUsecase defines the interface for project business logic
type ProjectUsecase interface {
	CreateProject(actorID string, req *CreateProjectRequest) (*domain.Project, error)
	GetProject(actorID, projectID string) (*domain.Project, error)
	ListProjects(actorID, userID string) ([]*domain.Project, error)
	UpdateProject(actorID, projectID string, req *UpdateProjectRequest) (*domain.Project, error)
	DeleteProject(actorID, projectID string) error
	RefreshProgress(projectID string) (*domain.Project, error)
}

type projectUsecase struct {
	projectRepo repository.ProjectRepository
	taskRepo    taskrepo.TaskRepository
	access      AccessChecker
}

// NewProjectUsecase creates a new instance of ProjectUsecase
func NewProjectUsecase(projectRepo repository.ProjectRepository, taskRepo taskrepo.TaskRepository, access AccessChecker) ProjectUsecase {
	return &projectUsecase{projectRepo: projectRepo, taskRepo: taskRepo, access: access}
}

func (u *projectUsecase) authorize(actorID, ownerID string) error {
	ok, err := u.access.CanAccessStudent(actorID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("unauthorized")
	}
	return nil
}

func (u *projectUsecase) CreateProject(actorID string, req *CreateProjectRequest) (*domain.Project, error) {
	ownerID := req.UserID
	if ownerID == "" {
		ownerID = actorID
	}
	if err := u.authorize(actorID, ownerID); err != nil {
		return nil, err
	}

	project := &domain.Project{
		UserID:      ownerID,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.StatusPlanning,
		Priority:    domain.PriorityMedium,
		Color:       req.Color,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, errors.New("invalid project status")
		}
		project.Status = req.Status
	}
	if req.Priority != "" {
		if !req.Priority.Valid() {
			return nil, errors.New("invalid project priority")
		}
		project.Priority = req.Priority
	}

	if err := u.projectRepo.Create(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (u *projectUsecase) GetProject(actorID, projectID string) (*domain.Project, error) {
	project, err := u.projectRepo.FindByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, errors.New("project not found")
	}
	if err := u.authorize(actorID, project.UserID); err != nil {
		return nil, err
	}
	return project, nil
}

func (u *projectUsecase) ListProjects(actorID, userID string) ([]*domain.Project, error) {
	if err := u.authorize(actorID, userID); err != nil {
		return nil, err
	}
	return u.projectRepo.FindByUser(userID)
}

func (u *projectUsecase) UpdateProject(actorID, projectID string, req *UpdateProjectRequest) (*domain.Project, error) {
	project, err := u.GetProject(actorID, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, errors.New("invalid project status")
		}
		project.Status = *req.Status
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return nil, errors.New("invalid project priority")
		}
		project.Priority = *req.Priority
	}
	if req.Color != nil {
		project.Color = *req.Color
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}

	if err := u.projectRepo.Update(project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes the project and every task in it.
func (u *projectUsecase) DeleteProject(actorID, projectID string) error {
	if _, err := u.GetProject(actorID, projectID); err != nil {
		return err
	}

	tasks, err := u.taskRepo.FindByProject(projectID)
	if err != nil {
		return err
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	if err := u.taskRepo.DeleteMany(ids); err != nil {
		return err
	}

	return u.projectRepo.Delete(projectID)
}

// RefreshProgress recomputes the completed fraction from the project's
// tasks and transitions the status when everything is done.
func (u *projectUsecase) RefreshProgress(projectID string) (*domain.Project, error) {
	project, err := u.projectRepo.FindByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, errors.New("project not found")
	}

	tasks, err := u.taskRepo.FindByProject(projectID)
	if err != nil {
		return nil, err
	}

	project.Progress = progressOf(tasks)
	if project.Progress == 100 && len(tasks) > 0 {
		project.Status = domain.StatusCompleted
	} else if project.Status == domain.StatusCompleted {
		project.Status = domain.StatusActive
	}

	if err := u.projectRepo.Update(project); err != nil {
		return nil, err
	}
	return project, nil
}

func progressOf(tasks []*taskdomain.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return done * 100 / len(tasks)
}
