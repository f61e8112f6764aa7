package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"coachly-backend/internal/program/domain"
	"coachly-backend/internal/program/repository"
	taskdomain "coachly-backend/internal/task/domain"
	taskrepo "coachly-backend/internal/task/repository"
)

type fakeProgramRepo struct {
	repository.ProgramRepository
	templates map[string]*domain.ProgramTemplate
}

func (r *fakeProgramRepo) Create(template *domain.ProgramTemplate) error {
	if template.ID == "" {
		template.ID = "program-1"
	}
	r.templates[template.ID] = template
	return nil
}

func (r *fakeProgramRepo) FindByID(id string) (*domain.ProgramTemplate, error) {
	return r.templates[id], nil
}

func (r *fakeProgramRepo) Delete(id string) error {
	delete(r.templates, id)
	return nil
}

// fakeTaskStore implements only the slice of TaskRepository that Apply
// touches; anything else panics via the embedded nil interface.
type fakeTaskStore struct {
	taskrepo.TaskRepository
	existing map[string][]*taskdomain.Task
	created  []*taskdomain.Task
}

func (r *fakeTaskStore) FindByDate(userID string, date time.Time) ([]*taskdomain.Task, error) {
	return r.existing[date.Format("2006-01-02")], nil
}

func (r *fakeTaskStore) CreateBatch(tasks []*taskdomain.Task) error {
	r.created = append(r.created, tasks...)
	return nil
}

type accessFunc func(actorID, studentID string) (bool, error)

func (f accessFunc) CanAccessStudent(actorID, studentID string) (bool, error) {
	return f(actorID, studentID)
}

var allowAll = accessFunc(func(string, string) (bool, error) { return true, nil })

func newTestUsecase(t *testing.T, access AccessChecker) (ProgramUsecase, *fakeProgramRepo, *fakeTaskStore) {
	t.Helper()
	programs := &fakeProgramRepo{templates: map[string]*domain.ProgramTemplate{}}
	tasks := &fakeTaskStore{existing: map[string][]*taskdomain.Task{}}
	return NewProgramUsecase(programs, tasks, access), programs, tasks
}

func seedTemplate(repo *fakeProgramRepo) *domain.ProgramTemplate {
	template := &domain.ProgramTemplate{
		ID:           "program-1",
		CreatedBy:    "coach-1",
		Module:       domain.ModuleExam,
		Name:         "Exam week",
		DurationDays: 2,
		Blueprints: domain.TaskBlueprints{
			{Day: 1, Title: "Practice exam", Type: taskdomain.TypeExam},
			{Day: 1, Title: "Review notes", Type: taskdomain.TypeTodo},
			{Day: 2, Title: "Rest", Type: taskdomain.TypeOther},
		},
	}
	repo.templates[template.ID] = template
	return template
}

func TestApplyAppendsBelowExistingColumn(t *testing.T) {
	t.Parallel()

	uc, programs, tasks := newTestUsecase(t, allowAll)
	seedTemplate(programs)
	tasks.existing["2024-05-01"] = []*taskdomain.Task{{ID: "t1"}, {ID: "t2"}}

	created, err := uc.Apply("student-1", "program-1", &ApplyProgramRequest{StartDate: "2024-05-01"})
	assert.NoError(t, err)
	assert.Len(t, created, 3)

	// Day 1 tasks land after the two that were already on that date.
	assert.Equal(t, 2, created[0].SortOrder)
	assert.Equal(t, 3, created[1].SortOrder)
	// Day 2 opens an empty column.
	assert.Equal(t, "2024-05-02", created[2].DateKey())
	assert.Equal(t, 0, created[2].SortOrder)
	assert.Len(t, tasks.created, 3)
}

func TestApplyByCoachMarksAssignment(t *testing.T) {
	t.Parallel()

	uc, programs, _ := newTestUsecase(t, allowAll)
	seedTemplate(programs)

	created, err := uc.Apply("coach-1", "program-1", &ApplyProgramRequest{
		UserID:    "student-1",
		StartDate: "2024-05-01",
	})
	assert.NoError(t, err)
	for _, task := range created {
		assert.Equal(t, "student-1", task.UserID)
		assert.Equal(t, "coach-1", task.AssignedBy)
	}
}

func TestApplyUnauthorized(t *testing.T) {
	t.Parallel()

	deny := accessFunc(func(string, string) (bool, error) { return false, nil })
	uc, programs, tasks := newTestUsecase(t, deny)
	seedTemplate(programs)

	_, err := uc.Apply("stranger", "program-1", &ApplyProgramRequest{
		UserID:    "student-1",
		StartDate: "2024-05-01",
	})
	assert.EqualError(t, err, "unauthorized")
	assert.Empty(t, tasks.created)
}

func TestCreateProgramDerivesDuration(t *testing.T) {
	t.Parallel()

	uc, _, _ := newTestUsecase(t, allowAll)

	template, err := uc.CreateProgram("coach-1", &CreateProgramRequest{
		Name: "Stretch plan",
		Blueprints: domain.TaskBlueprints{
			{Day: 3, Title: "Long session", Type: taskdomain.TypeTodo},
			{Day: 9, Title: "Final check", Type: taskdomain.TypeTodo},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, 9, template.DurationDays)
	assert.Equal(t, domain.ModuleGeneral, template.Module)
}

func TestCreateProgramRejectsBadModule(t *testing.T) {
	t.Parallel()

	uc, _, _ := newTestUsecase(t, allowAll)

	_, err := uc.CreateProgram("coach-1", &CreateProgramRequest{
		Name:   "Broken",
		Module: "yoga",
		Blueprints: domain.TaskBlueprints{
			{Day: 1, Title: "Anything", Type: taskdomain.TypeTodo},
		},
	})
	assert.EqualError(t, err, "invalid program module")
}

func TestDeleteBuiltinRejected(t *testing.T) {
	t.Parallel()

	uc, programs, _ := newTestUsecase(t, allowAll)
	programs.templates["builtin-1"] = &domain.ProgramTemplate{ID: "builtin-1", Builtin: true}

	err := uc.DeleteProgram("coach-1", "builtin-1")
	assert.EqualError(t, err, "builtin programs cannot be deleted")
}
