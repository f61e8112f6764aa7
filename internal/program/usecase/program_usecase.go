package usecase

import (
	"errors"

	"go.uber.org/zap"

	"coachly-backend/internal/program/domain"
	"coachly-backend/internal/program/repository"
	taskdomain "coachly-backend/internal/task/domain"
	taskrepo "coachly-backend/internal/task/repository"
)

// AccessChecker answers whether an actor may touch a student's data.
type AccessChecker interface {
	CanAccessStudent(actorID, studentID string) (bool, error)
}

type CreateProgramRequest struct {
	Name         string                `json:"name" binding:"required"`
	Description  string                `json:"description"`
	Module       domain.Module         `json:"module"`
	DurationDays int                   `json:"duration_days"`
	Blueprints   domain.TaskBlueprints `json:"blueprints" binding:"required"`
}

type ApplyProgramRequest struct {
	UserID    string `json:"user_id"`
	StartDate string `json:"start_date" binding:"required"`
}

// ProgramUsecase defines the interface for program template business logic
type ProgramUsecase interface {
	CreateProgram(actorID string, req *CreateProgramRequest) (*domain.ProgramTemplate, error)
	GetProgram(programID string) (*domain.ProgramTemplate, error)
	ListPrograms() ([]*domain.ProgramTemplate, error)
	DeleteProgram(actorID, programID string) error
	// Apply expands the template into tasks on the student's calendar
	// starting at the given date.
	Apply(actorID, programID string, req *ApplyProgramRequest) ([]*taskdomain.Task, error)
}

type programUsecase struct {
	programRepo repository.ProgramRepository
	taskRepo    taskrepo.TaskRepository
	access      AccessChecker
}

// NewProgramUsecase creates a new instance of ProgramUsecase
func NewProgramUsecase(programRepo repository.ProgramRepository, taskRepo taskrepo.TaskRepository, access AccessChecker) ProgramUsecase {
	return &programUsecase{programRepo: programRepo, taskRepo: taskRepo, access: access}
}

func (u *programUsecase) CreateProgram(actorID string, req *CreateProgramRequest) (*domain.ProgramTemplate, error) {
	if len(req.Blueprints) == 0 {
		return nil, errors.New("program needs at least one blueprint")
	}
	module := req.Module
	if module == "" {
		module = domain.ModuleGeneral
	}
	if !module.Valid() {
		return nil, errors.New("invalid program module")
	}
	duration := req.DurationDays
	for _, b := range req.Blueprints {
		if b.Day < 1 {
			return nil, errors.New("blueprint days start at 1")
		}
		if b.Title == "" {
			return nil, errors.New("blueprint title is required")
		}
		if !b.Type.Valid() {
			return nil, errors.New("invalid blueprint task type")
		}
		if b.Day > duration {
			duration = b.Day
		}
	}

	template := &domain.ProgramTemplate{
		CreatedBy:    actorID,
		Module:       module,
		Name:         req.Name,
		Description:  req.Description,
		DurationDays: duration,
		Blueprints:   req.Blueprints,
	}
	if err := u.programRepo.Create(template); err != nil {
		return nil, err
	}
	return template, nil
}

func (u *programUsecase) GetProgram(programID string) (*domain.ProgramTemplate, error) {
	template, err := u.programRepo.FindByID(programID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, errors.New("program not found")
	}
	return template, nil
}

func (u *programUsecase) ListPrograms() ([]*domain.ProgramTemplate, error) {
	return u.programRepo.FindAll()
}

func (u *programUsecase) DeleteProgram(actorID, programID string) error {
	template, err := u.GetProgram(programID)
	if err != nil {
		return err
	}
	if template.Builtin {
		return errors.New("builtin programs cannot be deleted")
	}
	if template.CreatedBy != actorID {
		return errors.New("unauthorized")
	}
	return u.programRepo.Delete(programID)
}

func (u *programUsecase) Apply(actorID, programID string, req *ApplyProgramRequest) ([]*taskdomain.Task, error) {
	ownerID := req.UserID
	if ownerID == "" {
		ownerID = actorID
	}
	ok, err := u.access.CanAccessStudent(actorID, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("unauthorized")
	}

	start, err := taskdomain.ParseDate(req.StartDate)
	if err != nil {
		return nil, errors.New("invalid start date")
	}

	template, err := u.GetProgram(programID)
	if err != nil {
		return nil, err
	}

	tasks := template.Expand(ownerID, start)
	if actorID != ownerID {
		for _, t := range tasks {
			t.AssignedBy = actorID
		}
	}

	// Append each task below the existing tasks of its date column.
	counts := make(map[string]int)
	for _, t := range tasks {
		key := t.DateKey()
		if _, seen := counts[key]; !seen {
			existing, err := u.taskRepo.FindByDate(ownerID, t.DueDate)
			if err != nil {
				return nil, err
			}
			counts[key] = len(existing)
		}
		t.SortOrder = counts[key]
		counts[key]++
	}

	if err := u.taskRepo.CreateBatch(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Seed installs the builtin program catalog on first boot.
func Seed(programRepo repository.ProgramRepository, logger *zap.Logger) error {
	count, err := programRepo.CountBuiltins()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	logger.Info("seeding builtin program templates")
	morning := "07:00"
	evening := "20:00"
	builtins := []*domain.ProgramTemplate{
		{
			Module:       domain.ModuleExam,
			Name:         "Exam Countdown Week",
			Description:  "A focused final week before a big exam",
			DurationDays: 7,
			Builtin:      true,
			Blueprints: domain.TaskBlueprints{
				{Day: 1, Title: "Full practice exam", Type: taskdomain.TypeExam, DurationMin: 180},
				{Day: 2, Title: "Review mistakes", Type: taskdomain.TypeTodo, DurationMin: 90},
				{Day: 3, Title: "Weak topic drill", Type: taskdomain.TypeVideo, DurationMin: 60},
				{Day: 4, Title: "Full practice exam", Type: taskdomain.TypeExam, DurationMin: 180},
				{Day: 5, Title: "Review mistakes", Type: taskdomain.TypeTodo, DurationMin: 90},
				{Day: 6, Title: "Light revision", Type: taskdomain.TypeTodo, DurationMin: 45},
				{Day: 7, Title: "Rest and early night", Type: taskdomain.TypeOther, DueTime: &evening},
			},
		},
		{
			Module:       domain.ModuleGeneral,
			Name:         "Daily Routine Starter",
			Description:  "Two weeks of morning structure",
			DurationDays: 14,
			Builtin:      true,
			Blueprints: func() domain.TaskBlueprints {
				var bs domain.TaskBlueprints
				for day := 1; day <= 14; day++ {
					bs = append(bs, domain.TaskBlueprint{
						Day: day, Title: "Morning planning", Type: taskdomain.TypeTodo,
						DueTime: &morning, DurationMin: 15,
					})
				}
				return bs
			}(),
		},
	}

	for _, b := range builtins {
		if err := programRepo.Create(b); err != nil {
			return err
		}
	}
	return nil
}
