package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/sahilm/fuzzy"

	"coachly-backend/internal/board"
	"coachly-backend/internal/task/domain"
	"coachly-backend/internal/task/dto"
	"coachly-backend/internal/task/repository"
	"coachly-backend/pkg/hierarchy"
)

// AccessChecker answers whether an actor may touch a student's data. The
// auth usecase satisfies it.
type AccessChecker interface {
	CanAccessStudent(actorID, studentID string) (bool, error)
}

// TaskUsecase defines the interface for task business logic
type TaskUsecase interface {
	CreateTask(actorID string, req *dto.CreateTaskRequest) (*domain.Task, error)
	GetTask(actorID, taskID string) (*domain.Task, error)
	ListByDate(actorID, userID, date string) ([]*dto.TaskNode, error)
	ListRange(actorID, userID, from, to string) ([]*domain.Task, error)
	ListByProject(actorID, projectID string) ([]*dto.TaskNode, error)
	UpdateTask(actorID, taskID string, req *dto.UpdateTaskRequest) (*domain.Task, error)
	SetCompleted(actorID, taskID string, completed bool) (*domain.Task, error)
	DeleteTask(actorID, taskID string) (int, error)
	Reorder(actorID, taskID, targetID string, after bool) error
	Reparent(actorID, taskID string, parentID *string, position int) error
	Search(actorID, userID, query string) ([]*domain.Task, error)
	ApplyMovePlan(userID string, plan *board.MovePlan) error
}

type taskUsecase struct {
	taskRepo repository.TaskRepository
	access   AccessChecker
}

// NewTaskUsecase creates a new instance of TaskUsecase
func NewTaskUsecase(taskRepo repository.TaskRepository, access AccessChecker) TaskUsecase {
	return &taskUsecase{taskRepo: taskRepo, access: access}
}

func (u *taskUsecase) authorize(actorID, ownerID string) error {
	ok, err := u.access.CanAccessStudent(actorID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("unauthorized")
	}
	return nil
}

func (u *taskUsecase) CreateTask(actorID string, req *dto.CreateTaskRequest) (*domain.Task, error) {
	ownerID := req.UserID
	if ownerID == "" {
		ownerID = actorID
	}
	if err := u.authorize(actorID, ownerID); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("unknown task type: %s", req.Type)
	}
	dueDate, err := domain.ParseDate(req.DueDate)
	if err != nil {
		return nil, errors.New("invalid due date")
	}
	if req.Settings != nil {
		if err := req.Settings.Validate(req.Type); err != nil {
			return nil, err
		}
	}

	task := &domain.Task{
		UserID:      ownerID,
		ProjectID:   req.ProjectID,
		ParentID:    req.ParentID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		DueDate:     dueDate,
		DueTime:     req.DueTime,
		DurationMin: req.DurationMin,
		Metadata:    req.Metadata,
	}
	if req.Settings != nil {
		task.Settings = *req.Settings
	}
	if actorID != ownerID {
		task.AssignedBy = actorID
	}
	if req.ReminderAt != nil {
		at, err := time.Parse(time.RFC3339, *req.ReminderAt)
		if err != nil {
			return nil, errors.New("invalid reminder time")
		}
		task.ReminderAt = &at
	}

	if req.ParentID != nil {
		parent, err := u.taskRepo.FindByID(*req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, errors.New("parent task not found")
		}
		if parent.UserID != ownerID {
			return nil, errors.New("parent belongs to another user")
		}
		if parent.ParentID != nil {
			return nil, errors.New("subtasks cannot be nested further")
		}
		// Subtasks live on the parent's date and project.
		task.DueDate = parent.DueDate
		task.ProjectID = parent.ProjectID
	}

	siblings, err := u.siblings(task.UserID, task.ParentID, task.ProjectID, task.DueDate)
	if err != nil {
		return nil, err
	}
	task.SortOrder = len(siblings)

	if err := u.taskRepo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUsecase) GetTask(actorID, taskID string) (*domain.Task, error) {
	task, err := u.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errors.New("task not found")
	}
	if err := u.authorize(actorID, task.UserID); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUsecase) ListByDate(actorID, userID, date string) ([]*dto.TaskNode, error) {
	if err := u.authorize(actorID, userID); err != nil {
		return nil, err
	}
	day, err := domain.ParseDate(date)
	if err != nil {
		return nil, errors.New("invalid date")
	}
	roots, err := u.taskRepo.FindByDate(userID, day)
	if err != nil {
		return nil, err
	}
	return u.withChildren(roots)
}

func (u *taskUsecase) ListRange(actorID, userID, from, to string) ([]*domain.Task, error) {
	if err := u.authorize(actorID, userID); err != nil {
		return nil, err
	}
	start, err := domain.ParseDate(from)
	if err != nil {
		return nil, errors.New("invalid date")
	}
	end, err := domain.ParseDate(to)
	if err != nil {
		return nil, errors.New("invalid date")
	}
	if end.Before(start) {
		return nil, errors.New("invalid date range")
	}
	return u.taskRepo.FindRange(userID, start, end)
}

func (u *taskUsecase) ListByProject(actorID, projectID string) ([]*dto.TaskNode, error) {
	roots, err := u.taskRepo.FindProjectRoots(projectID)
	if err != nil {
		return nil, err
	}
	if len(roots) > 0 {
		if err := u.authorize(actorID, roots[0].UserID); err != nil {
			return nil, err
		}
	}
	return u.withChildren(roots)
}

// withChildren attaches the one allowed level of subtasks under each root.
func (u *taskUsecase) withChildren(roots []*domain.Task) ([]*dto.TaskNode, error) {
	ids := make([]string, len(roots))
	for i, t := range roots {
		ids[i] = t.ID
	}
	children, err := u.taskRepo.FindChildren(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Task, len(roots)+len(children))
	nodes := make([]hierarchy.Node, 0, len(roots)+len(children))
	for _, t := range roots {
		byID[t.ID] = t
		nodes = append(nodes, hierarchy.Node{ID: t.ID, SortOrder: t.SortOrder})
	}
	for _, t := range children {
		byID[t.ID] = t
		nodes = append(nodes, hierarchy.Node{ID: t.ID, ParentID: *t.ParentID, SortOrder: t.SortOrder})
	}

	tree := hierarchy.Build(nodes)
	out := make([]*dto.TaskNode, 0, len(tree))
	for _, root := range tree {
		node := &dto.TaskNode{Task: byID[root.ID], Children: []*dto.TaskNode{}}
		for _, child := range root.Children {
			node.Children = append(node.Children, &dto.TaskNode{Task: byID[child.ID], Children: []*dto.TaskNode{}})
		}
		out = append(out, node)
	}
	return out, nil
}

func (u *taskUsecase) UpdateTask(actorID, taskID string, req *dto.UpdateTaskRequest) (*domain.Task, error) {
	task, err := u.GetTask(actorID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.DueTime != nil {
		task.DueTime = req.DueTime
	}
	if req.DurationMin != nil {
		task.DurationMin = *req.DurationMin
	}
	if req.Metadata != nil {
		task.Metadata = req.Metadata
	}
	if req.Settings != nil {
		if err := req.Settings.Validate(task.Type); err != nil {
			return nil, err
		}
		task.Settings = *req.Settings
	}
	if req.ReminderAt != nil {
		at, err := time.Parse(time.RFC3339, *req.ReminderAt)
		if err != nil {
			return nil, errors.New("invalid reminder time")
		}
		task.ReminderAt = &at
		task.ReminderSent = false
	}
	if req.DueDate != nil {
		day, err := domain.ParseDate(*req.DueDate)
		if err != nil {
			return nil, errors.New("invalid due date")
		}
		if !day.Equal(task.DueDate) {
			return u.moveToDate(task, day)
		}
	}

	if err := u.taskRepo.Update(task); err != nil {
		return nil, err
	}
	return task, nil
}

// moveToDate relocates a top-level task (and its subtasks) to another date
// column, appending it at the bottom and renumbering both columns.
func (u *taskUsecase) moveToDate(task *domain.Task, day time.Time) (*domain.Task, error) {
	if task.ParentID != nil {
		return nil, errors.New("subtasks follow their parent's date")
	}
	source, err := u.siblings(task.UserID, nil, task.ProjectID, task.DueDate)
	if err != nil {
		return nil, err
	}
	dest, err := u.siblings(task.UserID, nil, task.ProjectID, day)
	if err != nil {
		return nil, err
	}

	orders := hierarchy.Renumber(hierarchy.Remove(idsOf(source), task.ID))
	destIDs := append(idsOf(dest), task.ID)
	for id, order := range hierarchy.Renumber(destIDs) {
		orders[id] = order
	}

	task.DueDate = domain.NormalizeDate(day)
	task.SortOrder = len(dest)
	if err := u.taskRepo.ApplyMove(task, orders); err != nil {
		return nil, err
	}

	children, err := u.taskRepo.FindByParent(task.ID)
	if err != nil {
		return nil, err
	}
	if len(children) > 0 {
		childIDs := idsOf(children)
		if err := u.taskRepo.UpdateDates(childIDs, day, nil); err != nil {
			return nil, err
		}
	}
	return task, nil
}

func (u *taskUsecase) SetCompleted(actorID, taskID string, completed bool) (*domain.Task, error) {
	task, err := u.GetTask(actorID, taskID)
	if err != nil {
		return nil, err
	}
	if task.Completed == completed {
		return task, nil
	}
	task.Completed = completed
	if completed {
		now := time.Now()
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}
	if err := u.taskRepo.Update(task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task and its entire subtree, then renumbers the
// surviving siblings. Returns how many tasks were deleted.
func (u *taskUsecase) DeleteTask(actorID, taskID string) (int, error) {
	task, err := u.GetTask(actorID, taskID)
	if err != nil {
		return 0, err
	}

	doomed := []string{task.ID}
	frontier := []string{task.ID}
	for len(frontier) > 0 {
		children, err := u.taskRepo.FindChildren(frontier)
		if err != nil {
			return 0, err
		}
		frontier = frontier[:0]
		for _, c := range children {
			doomed = append(doomed, c.ID)
			frontier = append(frontier, c.ID)
		}
	}

	if err := u.taskRepo.DeleteMany(doomed); err != nil {
		return 0, err
	}

	siblings, err := u.siblings(task.UserID, task.ParentID, task.ProjectID, task.DueDate)
	if err != nil {
		return len(doomed), err
	}
	orders := hierarchy.Renumber(idsOf(siblings))
	if len(orders) > 0 {
		if err := u.taskRepo.UpdateOrders(orders); err != nil {
			return len(doomed), err
		}
	}
	return len(doomed), nil
}

func (u *taskUsecase) Reorder(actorID, taskID, targetID string, after bool) error {
	task, err := u.GetTask(actorID, taskID)
	if err != nil {
		return err
	}
	siblings, err := u.siblings(task.UserID, task.ParentID, task.ProjectID, task.DueDate)
	if err != nil {
		return err
	}
	reordered, err := hierarchy.Reorder(idsOf(siblings), taskID, targetID, after)
	if err != nil {
		if errors.Is(err, hierarchy.ErrNoChange) {
			return nil
		}
		return err
	}
	return u.taskRepo.UpdateOrders(hierarchy.Renumber(reordered))
}

func (u *taskUsecase) Reparent(actorID, taskID string, parentID *string, position int) error {
	task, err := u.GetTask(actorID, taskID)
	if err != nil {
		return err
	}

	var newParent *domain.Task
	if parentID != nil {
		if *parentID == taskID {
			return errors.New("task cannot be its own parent")
		}
		newParent, err = u.taskRepo.FindByID(*parentID)
		if err != nil {
			return err
		}
		if newParent == nil {
			return errors.New("parent task not found")
		}
		if newParent.UserID != task.UserID {
			return errors.New("parent belongs to another user")
		}
		if newParent.ParentID != nil {
			return errors.New("subtasks cannot be nested further")
		}
		children, err := u.taskRepo.FindByParent(taskID)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return errors.New("a task with subtasks cannot become a subtask")
		}
	}

	source, err := u.siblings(task.UserID, task.ParentID, task.ProjectID, task.DueDate)
	if err != nil {
		return err
	}

	task.ParentID = parentID
	if newParent != nil {
		task.DueDate = newParent.DueDate
		task.ProjectID = newParent.ProjectID
	}

	dest, err := u.siblings(task.UserID, task.ParentID, task.ProjectID, task.DueDate)
	if err != nil {
		return err
	}

	orders := hierarchy.Renumber(hierarchy.Remove(idsOf(source), taskID))
	destIDs := hierarchy.InsertAt(hierarchy.Remove(idsOf(dest), taskID), taskID, position)
	for id, order := range hierarchy.Renumber(destIDs) {
		orders[id] = order
	}
	task.SortOrder = orders[taskID]

	return u.taskRepo.ApplyMove(task, orders)
}

func (u *taskUsecase) Search(actorID, userID, query string) ([]*domain.Task, error) {
	if err := u.authorize(actorID, userID); err != nil {
		return nil, err
	}
	tasks, err := u.taskRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(tasks))
	for i, t := range tasks {
		titles[i] = t.Title
	}
	matches := fuzzy.Find(query, titles)
	out := make([]*domain.Task, 0, len(matches))
	for _, m := range matches {
		out = append(out, tasks[m.Index])
	}
	return out, nil
}

// ApplyMovePlan persists the outcome of a resolved drag session.
func (u *taskUsecase) ApplyMovePlan(userID string, plan *board.MovePlan) error {
	switch plan.Kind {
	case board.PlanReorder:
		return u.Reorder(userID, plan.ItemID, plan.TargetID, plan.Edge == board.EdgeAfter)

	case board.PlanReparent:
		return u.applyReparentPlan(userID, plan)

	case board.PlanGroupMove:
		return u.applyGroupMovePlan(userID, plan)
	}
	return fmt.Errorf("unknown move plan: %s", plan.Kind)
}

func (u *taskUsecase) applyReparentPlan(userID string, plan *board.MovePlan) error {
	task, err := u.GetTask(userID, plan.ItemID)
	if err != nil {
		return err
	}

	var parentID *string
	if plan.To.ParentID != "" {
		pid := plan.To.ParentID
		parentID = &pid
	}

	// A cross-column move with no new parent is a date move with an
	// explicit position, not a reparent.
	if parentID == nil && plan.To.Date != "" {
		day, err := domain.ParseDate(plan.To.Date)
		if err != nil {
			return errors.New("invalid date")
		}
		return u.moveToColumn(task, day, plan.TargetID, plan.Edge)
	}

	position, err := u.planPosition(task, parentID, plan)
	if err != nil {
		return err
	}
	return u.Reparent(userID, plan.ItemID, parentID, position)
}

// planPosition translates a target-id/edge pair into an insertion index in
// the destination sibling set.
func (u *taskUsecase) planPosition(task *domain.Task, parentID *string, plan *board.MovePlan) (int, error) {
	var dest []*domain.Task
	var err error
	if parentID != nil {
		dest, err = u.taskRepo.FindByParent(*parentID)
	} else {
		day, perr := domain.ParseDate(plan.To.Date)
		if perr != nil {
			return 0, errors.New("invalid date")
		}
		dest, err = u.siblings(task.UserID, nil, projectIDOf(plan.To), day)
	}
	if err != nil {
		return 0, err
	}
	if plan.TargetID == "" {
		return len(dest), nil
	}
	for i, s := range dest {
		if s.ID == plan.TargetID {
			if plan.Edge == board.EdgeAfter {
				return i + 1, nil
			}
			return i, nil
		}
	}
	return len(dest), nil
}

// moveToColumn is moveToDate with a positioned drop instead of append.
func (u *taskUsecase) moveToColumn(task *domain.Task, day time.Time, targetID string, edge board.Edge) error {
	if task.ParentID != nil {
		return errors.New("subtasks follow their parent's date")
	}
	source, err := u.siblings(task.UserID, nil, task.ProjectID, task.DueDate)
	if err != nil {
		return err
	}
	dest, err := u.siblings(task.UserID, nil, task.ProjectID, day)
	if err != nil {
		return err
	}

	position := len(dest)
	if targetID != "" {
		for i, s := range dest {
			if s.ID == targetID {
				position = i
				if edge == board.EdgeAfter {
					position = i + 1
				}
				break
			}
		}
	}

	orders := hierarchy.Renumber(hierarchy.Remove(idsOf(source), task.ID))
	destIDs := hierarchy.InsertAt(hierarchy.Remove(idsOf(dest), task.ID), task.ID, position)
	for id, order := range hierarchy.Renumber(destIDs) {
		orders[id] = order
	}

	task.DueDate = domain.NormalizeDate(day)
	task.SortOrder = orders[task.ID]
	if err := u.taskRepo.ApplyMove(task, orders); err != nil {
		return err
	}

	children, err := u.taskRepo.FindByParent(task.ID)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return u.taskRepo.UpdateDates(idsOf(children), day, nil)
	}
	return nil
}

func (u *taskUsecase) applyGroupMovePlan(userID string, plan *board.MovePlan) error {
	if len(plan.GroupIDs) == 0 {
		return nil
	}
	day, err := domain.ParseDate(plan.To.Date)
	if err != nil {
		return errors.New("invalid date")
	}

	first, err := u.GetTask(userID, plan.GroupIDs[0])
	if err != nil {
		return err
	}
	moving := make(map[string]bool, len(plan.GroupIDs))
	for _, id := range plan.GroupIDs {
		moving[id] = true
	}

	source, err := u.siblings(first.UserID, nil, first.ProjectID, first.DueDate)
	if err != nil {
		return err
	}
	dest, err := u.siblings(first.UserID, nil, first.ProjectID, day)
	if err != nil {
		return err
	}

	sourceIDs := idsOf(source)
	for _, id := range plan.GroupIDs {
		sourceIDs = hierarchy.Remove(sourceIDs, id)
	}
	orders := hierarchy.Renumber(sourceIDs)

	destIDs := idsOf(dest)
	for _, id := range plan.GroupIDs {
		destIDs = hierarchy.Remove(destIDs, id)
	}
	destIDs = append(destIDs, plan.GroupIDs...)
	for id, order := range hierarchy.Renumber(destIDs) {
		orders[id] = order
	}

	return u.taskRepo.UpdateDates(plan.GroupIDs, day, orders)
}

// siblings resolves one sibling scope: a parent's children, a project's
// top-level tasks, or a user's date column.
func (u *taskUsecase) siblings(userID string, parentID *string, projectID *string, date time.Time) ([]*domain.Task, error) {
	if parentID != nil {
		return u.taskRepo.FindByParent(*parentID)
	}
	if projectID != nil {
		return u.taskRepo.FindProjectRoots(*projectID)
	}
	return u.taskRepo.FindByDate(userID, date)
}

func idsOf(tasks []*domain.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func projectIDOf(s board.Scope) *string {
	if s.ProjectID == "" {
		return nil
	}
	pid := s.ProjectID
	return &pid
}
