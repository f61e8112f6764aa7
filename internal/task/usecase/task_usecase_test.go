package usecase

import (
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachly-backend/internal/board"
	"coachly-backend/internal/task/domain"
	"coachly-backend/internal/task/dto"
)

// fakeTaskRepo is an in-memory TaskRepository for usecase tests.
type fakeTaskRepo struct {
	tasks map[string]*domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *fakeTaskRepo) Create(task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) CreateBatch(tasks []*domain.Task) error {
	for _, t := range tasks {
		if err := r.Create(t); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeTaskRepo) FindByID(id string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) query(match func(*domain.Task) bool) []*domain.Task {
	var out []*domain.Task
	for _, t := range r.tasks {
		if match(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

func (r *fakeTaskRepo) FindByDate(userID string, date time.Time) ([]*domain.Task, error) {
	day := domain.NormalizeDate(date)
	return r.query(func(t *domain.Task) bool {
		return t.UserID == userID && t.ParentID == nil && t.DueDate.Equal(day)
	}), nil
}

func (r *fakeTaskRepo) FindRange(userID string, from, to time.Time) ([]*domain.Task, error) {
	return r.query(func(t *domain.Task) bool {
		return t.UserID == userID && !t.DueDate.Before(domain.NormalizeDate(from)) &&
			!t.DueDate.After(domain.NormalizeDate(to))
	}), nil
}

func (r *fakeTaskRepo) FindByParent(parentID string) ([]*domain.Task, error) {
	return r.query(func(t *domain.Task) bool {
		return t.ParentID != nil && *t.ParentID == parentID
	}), nil
}

func (r *fakeTaskRepo) FindChildren(parentIDs []string) ([]*domain.Task, error) {
	set := make(map[string]bool, len(parentIDs))
	for _, id := range parentIDs {
		set[id] = true
	}
	return r.query(func(t *domain.Task) bool {
		return t.ParentID != nil && set[*t.ParentID]
	}), nil
}

func (r *fakeTaskRepo) FindProjectRoots(projectID string) ([]*domain.Task, error) {
	return r.query(func(t *domain.Task) bool {
		return t.ProjectID != nil && *t.ProjectID == projectID && t.ParentID == nil
	}), nil
}

func (r *fakeTaskRepo) FindByProject(projectID string) ([]*domain.Task, error) {
	return r.query(func(t *domain.Task) bool {
		return t.ProjectID != nil && *t.ProjectID == projectID
	}), nil
}

func (r *fakeTaskRepo) FindByUser(userID string) ([]*domain.Task, error) {
	return r.query(func(t *domain.Task) bool { return t.UserID == userID }), nil
}

func (r *fakeTaskRepo) Update(task *domain.Task) error {
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) UpdateOrders(orders map[string]int) error {
	for id, order := range orders {
		if t, ok := r.tasks[id]; ok {
			t.SortOrder = order
		}
	}
	return nil
}

func (r *fakeTaskRepo) ApplyMove(task *domain.Task, orders map[string]int) error {
	if err := r.Update(task); err != nil {
		return err
	}
	return r.UpdateOrders(orders)
}

func (r *fakeTaskRepo) UpdateDates(ids []string, date time.Time, orders map[string]int) error {
	for _, id := range ids {
		if t, ok := r.tasks[id]; ok {
			t.DueDate = domain.NormalizeDate(date)
		}
	}
	return r.UpdateOrders(orders)
}

func (r *fakeTaskRepo) DeleteMany(ids []string) error {
	for _, id := range ids {
		delete(r.tasks, id)
	}
	return nil
}

func (r *fakeTaskRepo) FindPendingReminders(now time.Time) ([]*domain.Task, error) {
	return r.query(func(t *domain.Task) bool {
		return t.ReminderAt != nil && !t.ReminderAt.After(now) && !t.ReminderSent && !t.Completed
	}), nil
}

func (r *fakeTaskRepo) MarkReminderSent(id string) error {
	if t, ok := r.tasks[id]; ok {
		t.ReminderSent = true
	}
	return nil
}

// allowSelf only lets users touch their own data.
type allowSelf struct{}

func (allowSelf) CanAccessStudent(actorID, studentID string) (bool, error) {
	return actorID == studentID, nil
}

func seedTask(t *testing.T, repo *fakeTaskRepo, id, userID string, parentID *string, date string, order int) *domain.Task {
	t.Helper()
	day, err := domain.ParseDate(date)
	require.NoError(t, err)
	task := &domain.Task{
		ID:        id,
		UserID:    userID,
		ParentID:  parentID,
		Title:     "task " + id,
		Type:      domain.TypeTodo,
		DueDate:   day,
		SortOrder: order,
	}
	require.NoError(t, repo.Create(task))
	return task
}

func ptr(s string) *string { return &s }

func orderOf(t *testing.T, repo *fakeTaskRepo, id string) int {
	t.Helper()
	task, err := repo.FindByID(id)
	require.NoError(t, err)
	require.NotNil(t, task)
	return task.SortOrder
}

func TestCreateTaskAppendsAtEnd(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "a", "u1", nil, "2024-03-01", 0)
	seedTask(t, repo, "b", "u1", nil, "2024-03-01", 1)

	task, err := uc.CreateTask("u1", &dto.CreateTaskRequest{
		Title:   "new",
		Type:    domain.TypeTodo,
		DueDate: "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, task.SortOrder)
}

func TestCreateTaskRejectsDeepNesting(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "root", "u1", nil, "2024-03-01", 0)
	seedTask(t, repo, "child", "u1", ptr("root"), "2024-03-01", 0)

	_, err := uc.CreateTask("u1", &dto.CreateTaskRequest{
		Title:    "grandchild",
		Type:     domain.TypeTodo,
		DueDate:  "2024-03-01",
		ParentID: ptr("child"),
	})
	assert.EqualError(t, err, "subtasks cannot be nested further")
}

func TestCreateSubtaskInheritsParentDate(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "root", "u1", nil, "2024-03-05", 0)

	task, err := uc.CreateTask("u1", &dto.CreateTaskRequest{
		Title:    "sub",
		Type:     domain.TypeTodo,
		DueDate:  "2024-03-01",
		ParentID: ptr("root"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", task.DateKey())
}

func TestGetTaskUnauthorized(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "a", "u1", nil, "2024-03-01", 0)

	_, err := uc.GetTask("u2", "a")
	assert.EqualError(t, err, "unauthorized")
}

func TestReorderKeepsOrdersDense(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "a", "u1", nil, "2024-03-01", 0)
	seedTask(t, repo, "b", "u1", nil, "2024-03-01", 1)
	seedTask(t, repo, "c", "u1", nil, "2024-03-01", 2)

	require.NoError(t, uc.Reorder("u1", "a", "c", true))

	assert.Equal(t, 0, orderOf(t, repo, "b"))
	assert.Equal(t, 1, orderOf(t, repo, "c"))
	assert.Equal(t, 2, orderOf(t, repo, "a"))
}

func TestReorderSamePositionIsNoOp(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "a", "u1", nil, "2024-03-01", 0)
	seedTask(t, repo, "b", "u1", nil, "2024-03-01", 1)

	require.NoError(t, uc.Reorder("u1", "b", "a", true))

	assert.Equal(t, 0, orderOf(t, repo, "a"))
	assert.Equal(t, 1, orderOf(t, repo, "b"))
}

func TestReparentRenumbersBothScopes(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "A", "u1", nil, "2024-03-01", 0)
	seedTask(t, repo, "B", "u1", nil, "2024-03-01", 1)
	seedTask(t, repo, "X", "u1", ptr("A"), "2024-03-01", 0)
	seedTask(t, repo, "P", "u1", ptr("A"), "2024-03-01", 1)
	seedTask(t, repo, "Q", "u1", ptr("A"), "2024-03-01", 2)
	seedTask(t, repo, "R", "u1", ptr("B"), "2024-03-01", 0)
	seedTask(t, repo, "S", "u1", ptr("B"), "2024-03-01", 1)

	require.NoError(t, uc.Reparent("u1", "X", ptr("B"), 1))

	moved, err := repo.FindByID("X")
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, "B", *moved.ParentID)

	assert.Equal(t, 0, orderOf(t, repo, "P"))
	assert.Equal(t, 1, orderOf(t, repo, "Q"))
	assert.Equal(t, 0, orderOf(t, repo, "R"))
	assert.Equal(t, 1, orderOf(t, repo, "X"))
	assert.Equal(t, 2, orderOf(t, repo, "S"))
}

func TestReparentRejectsTaskWithSubtasks(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "A", "u1", nil, "2024-03-01", 0)
	seedTask(t, repo, "B", "u1", nil, "2024-03-01", 1)
	seedTask(t, repo, "X", "u1", ptr("A"), "2024-03-01", 0)

	err := uc.Reparent("u1", "A", ptr("B"), 0)
	assert.EqualError(t, err, "a task with subtasks cannot become a subtask")
}

func TestReparentToTopLevel(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "A", "u1", nil, "2024-03-01", 0)
	seedTask(t, repo, "B", "u1", nil, "2024-03-01", 1)
	seedTask(t, repo, "X", "u1", ptr("A"), "2024-03-01", 0)

	require.NoError(t, uc.Reparent("u1", "X", nil, 1))

	moved, err := repo.FindByID("X")
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, 0, orderOf(t, repo, "A"))
	assert.Equal(t, 1, orderOf(t, repo, "X"))
	assert.Equal(t, 2, orderOf(t, repo, "B"))
}

func TestDeleteTaskCascades(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "A", "u1", nil, "2024-03-01", 0)
	seedTask(t, repo, "B", "u1", nil, "2024-03-01", 1)
	seedTask(t, repo, "C", "u1", nil, "2024-03-01", 2)
	seedTask(t, repo, "X", "u1", ptr("A"), "2024-03-01", 0)
	seedTask(t, repo, "Y", "u1", ptr("A"), "2024-03-01", 1)

	deleted, err := uc.DeleteTask("u1", "A")
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	gone, err := repo.FindByID("X")
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Survivors closed the gap.
	assert.Equal(t, 0, orderOf(t, repo, "B"))
	assert.Equal(t, 1, orderOf(t, repo, "C"))
}

func TestSetCompletedIsIdempotent(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "a", "u1", nil, "2024-03-01", 0)

	first, err := uc.SetCompleted("u1", "a", true)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	second, err := uc.SetCompleted("u1", "a", true)
	require.NoError(t, err)
	assert.Equal(t, first.CompletedAt, second.CompletedAt)

	cleared, err := uc.SetCompleted("u1", "a", false)
	require.NoError(t, err)
	assert.Nil(t, cleared.CompletedAt)
}

func TestUpdateDueDateMovesSubtree(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "A", "u1", nil, "2024-03-01", 0)
	seedTask(t, repo, "B", "u1", nil, "2024-03-01", 1)
	seedTask(t, repo, "X", "u1", ptr("A"), "2024-03-01", 0)
	seedTask(t, repo, "D", "u1", nil, "2024-03-02", 0)

	day := "2024-03-02"
	updated, err := uc.UpdateTask("u1", "A", &dto.UpdateTaskRequest{DueDate: &day})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", updated.DateKey())
	assert.Equal(t, 1, updated.SortOrder)

	child, err := repo.FindByID("X")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", child.DateKey())

	// Source column closed up.
	assert.Equal(t, 0, orderOf(t, repo, "B"))
}

func TestApplyMovePlanReorder(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "a", "u1", nil, "2024-03-01", 0)
	seedTask(t, repo, "b", "u1", nil, "2024-03-01", 1)
	seedTask(t, repo, "c", "u1", nil, "2024-03-01", 2)

	err := uc.ApplyMovePlan("u1", &board.MovePlan{
		Kind:     board.PlanReorder,
		ItemID:   "a",
		From:     board.Scope{Date: "2024-03-01"},
		To:       board.Scope{Date: "2024-03-01"},
		TargetID: "c",
		Edge:     board.EdgeAfter,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, orderOf(t, repo, "b"))
	assert.Equal(t, 1, orderOf(t, repo, "c"))
	assert.Equal(t, 2, orderOf(t, repo, "a"))
}

func TestApplyMovePlanCrossColumn(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "a", "u1", nil, "2024-03-01", 0)
	seedTask(t, repo, "b", "u1", nil, "2024-03-01", 1)
	seedTask(t, repo, "d", "u1", nil, "2024-03-02", 0)
	seedTask(t, repo, "e", "u1", nil, "2024-03-02", 1)

	err := uc.ApplyMovePlan("u1", &board.MovePlan{
		Kind:     board.PlanReparent,
		ItemID:   "a",
		From:     board.Scope{Date: "2024-03-01"},
		To:       board.Scope{Date: "2024-03-02"},
		TargetID: "d",
		Edge:     board.EdgeBefore,
	})
	require.NoError(t, err)

	moved, err := repo.FindByID("a")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", moved.DateKey())
	assert.Equal(t, 0, moved.SortOrder)
	assert.Equal(t, 1, orderOf(t, repo, "d"))
	assert.Equal(t, 2, orderOf(t, repo, "e"))
	assert.Equal(t, 0, orderOf(t, repo, "b"))
}

func TestApplyMovePlanGroupMove(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	seedTask(t, repo, "n1", "u1", nil, "2024-03-01", 0)
	seedTask(t, repo, "n2", "u1", nil, "2024-03-01", 1)
	seedTask(t, repo, "x", "u1", nil, "2024-03-01", 2)
	seedTask(t, repo, "y", "u1", nil, "2024-03-02", 0)

	err := uc.ApplyMovePlan("u1", &board.MovePlan{
		Kind:     board.PlanGroupMove,
		GroupIDs: []string{"n1", "n2"},
		From:     board.Scope{Date: "2024-03-01"},
		To:       board.Scope{Date: "2024-03-02"},
	})
	require.NoError(t, err)

	for _, id := range []string{"n1", "n2"} {
		moved, err := repo.FindByID(id)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-02", moved.DateKey())
	}
	assert.Equal(t, 0, orderOf(t, repo, "x"))
	assert.Equal(t, 0, orderOf(t, repo, "y"))
	assert.Equal(t, 1, orderOf(t, repo, "n1"))
	assert.Equal(t, 2, orderOf(t, repo, "n2"))
}

func TestSearchMatchesFuzzy(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := NewTaskUsecase(repo, allowSelf{})

	a := seedTask(t, repo, "a", "u1", nil, "2024-03-01", 0)
	a.Title = "Morning run"
	require.NoError(t, repo.Update(a))
	b := seedTask(t, repo, "b", "u1", nil, "2024-03-01", 1)
	b.Title = "Math homework"
	require.NoError(t, repo.Update(b))

	found, err := uc.Search("u1", "u1", "mrun")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "a", found[0].ID)
}
