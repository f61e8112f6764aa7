package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coachly-backend/internal/habit/domain"
	"coachly-backend/internal/habit/repository"
	syncpkg "coachly-backend/internal/sync"
	"coachly-backend/pkg/cache"
	"coachly-backend/pkg/hierarchy"
	"coachly-backend/pkg/localstore"
)

const (
	dayKeyLayout  = "2006-01-02"
	statsCacheTTL = 5 * time.Minute
)

// AccessChecker answers whether an actor may touch a student's data.
type AccessChecker interface {
	CanAccessStudent(actorID, studentID string) (bool, error)
}

// Enqueuer hands local mutations to the sync outbox.
type Enqueuer interface {
	Enqueue(intent *syncpkg.Intent) error
}

type CreateHabitRequest struct {
	UserID      string            `json:"user_id"`
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Frequency   domain.Frequency  `json:"frequency"`
	TargetType  domain.TargetType `json:"target_type"`
	TargetValue float64           `json:"target_value"`
	Unit        string            `json:"unit"`
	Color       string            `json:"color"`
	Icon        string            `json:"icon"`
}

type UpdateHabitRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	TargetValue *float64 `json:"target_value"`
	Unit        *string  `json:"unit"`
	Color       *string  `json:"color"`
	Icon        *string  `json:"icon"`
	Archived    *bool    `json:"archived"`
}

// HabitStats is the per-habit summary returned by Stats.
type HabitStats struct {
	HabitID        string  `json:"habit_id"`
	Name           string  `json:"name"`
	Total          int     `json:"total"`
	Last30DaysRate float64 `json:"last_30_days_rate"`
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
}

// HabitUsecase defines the interface for habit business logic. Writes land
// in the local mirror first and reach the remote store through the outbox.
type HabitUsecase interface {
	Hydrate(userID string) error
	CreateHabit(actorID string, req *CreateHabitRequest) (*domain.Habit, error)
	GetHabit(actorID, habitID string) (*domain.Habit, error)
	ListHabits(actorID, userID string, includeArchived bool) ([]*domain.Habit, error)
	UpdateHabit(actorID, habitID string, req *UpdateHabitRequest) (*domain.Habit, error)
	DeleteHabit(actorID, habitID string) error
	Reorder(actorID, habitID, targetID string, after bool) error
	Complete(actorID, habitID, date string, value float64, note string) (*domain.Habit, error)
	Uncomplete(actorID, habitID, date string) (*domain.Habit, error)
	Completions(actorID, habitID, from, to string) ([]*domain.HabitCompletion, error)
	Stats(actorID, userID string) ([]*HabitStats, error)
}

type habitUsecase struct {
	store     *localstore.Store
	habitRepo repository.HabitRepository
	outbox    Enqueuer
	cache     *cache.Client
	access    AccessChecker
	logger    *zap.Logger
	now       func() time.Time
}

// NewHabitUsecase creates a new instance of HabitUsecase
func NewHabitUsecase(
	store *localstore.Store,
	habitRepo repository.HabitRepository,
	outbox Enqueuer,
	cacheClient *cache.Client,
	access AccessChecker,
	logger *zap.Logger,
) HabitUsecase {
	return &habitUsecase{
		store:     store,
		habitRepo: habitRepo,
		outbox:    outbox,
		cache:     cacheClient,
		access:    access,
		logger:    logger,
		now:       time.Now,
	}
}

func (u *habitUsecase) authorize(actorID, ownerID string) error {
	ok, err := u.access.CanAccessStudent(actorID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("unauthorized")
	}
	return nil
}

// Hydrate pulls the remote truth for a user into the mirror. Rows with an
// unconfirmed local write are left alone so the local version wins.
func (u *habitUsecase) Hydrate(userID string) error {
	habits, err := u.habitRepo.FindByUser(userID, true)
	if err != nil {
		return err
	}
	for _, habit := range habits {
		row, err := u.store.Get(syncpkg.TableHabits, habit.ID)
		if err != nil {
			return err
		}
		if row != nil && row.Dirty {
			continue
		}
		if err := u.putHabit(habit, false); err != nil {
			return err
		}

		completions, err := u.habitRepo.FindCompletions(habit.ID, "0000-01-01", "9999-12-31")
		if err != nil {
			return err
		}
		for _, c := range completions {
			key := completionKey(c.HabitID, c.Date)
			crow, err := u.store.Get(syncpkg.TableCompletions, key)
			if err != nil {
				return err
			}
			if crow != nil && crow.Dirty {
				continue
			}
			data, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if err := u.store.Put(syncpkg.TableCompletions, key, data, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func (u *habitUsecase) CreateHabit(actorID string, req *CreateHabitRequest) (*domain.Habit, error) {
	ownerID := req.UserID
	if ownerID == "" {
		ownerID = actorID
	}
	if err := u.authorize(actorID, ownerID); err != nil {
		return nil, err
	}

	habit := &domain.Habit{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Name:        req.Name,
		Description: req.Description,
		Frequency:   domain.FrequencyDaily,
		TargetType:  domain.TargetBoolean,
		TargetValue: req.TargetValue,
		Unit:        req.Unit,
		Color:       req.Color,
		Icon:        req.Icon,
		CreatedAt:   u.now(),
		UpdatedAt:   u.now(),
	}
	if req.Frequency != "" {
		if !req.Frequency.Valid() {
			return nil, errors.New("invalid frequency")
		}
		habit.Frequency = req.Frequency
	}
	if req.TargetType != "" {
		if !req.TargetType.Valid() {
			return nil, errors.New("invalid target type")
		}
		habit.TargetType = req.TargetType
	}

	existing, err := u.listLocal(ownerID, true)
	if err != nil {
		return nil, err
	}
	habit.SortOrder = len(existing)

	if err := u.writeHabit(habit); err != nil {
		return nil, err
	}
	u.invalidateStats(ownerID)
	return habit, nil
}

func (u *habitUsecase) GetHabit(actorID, habitID string) (*domain.Habit, error) {
	habit, err := u.getLocal(habitID)
	if err != nil {
		return nil, err
	}
	if habit == nil {
		return nil, errors.New("habit not found")
	}
	if err := u.authorize(actorID, habit.UserID); err != nil {
		return nil, err
	}
	return habit, nil
}

func (u *habitUsecase) ListHabits(actorID, userID string, includeArchived bool) ([]*domain.Habit, error) {
	if err := u.authorize(actorID, userID); err != nil {
		return nil, err
	}
	return u.listLocal(userID, includeArchived)
}

func (u *habitUsecase) UpdateHabit(actorID, habitID string, req *UpdateHabitRequest) (*domain.Habit, error) {
	habit, err := u.GetHabit(actorID, habitID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		habit.Name = *req.Name
	}
	if req.Description != nil {
		habit.Description = *req.Description
	}
	if req.TargetValue != nil {
		habit.TargetValue = *req.TargetValue
	}
	if req.Unit != nil {
		habit.Unit = *req.Unit
	}
	if req.Color != nil {
		habit.Color = *req.Color
	}
	if req.Icon != nil {
		habit.Icon = *req.Icon
	}
	if req.Archived != nil {
		habit.Archived = *req.Archived
	}
	habit.UpdatedAt = u.now()

	if err := u.writeHabit(habit); err != nil {
		return nil, err
	}
	u.invalidateStats(habit.UserID)
	return habit, nil
}

func (u *habitUsecase) DeleteHabit(actorID, habitID string) error {
	habit, err := u.GetHabit(actorID, habitID)
	if err != nil {
		return err
	}

	rows, err := u.store.Query(syncpkg.TableCompletions)
	if err != nil {
		return err
	}
	for _, row := range rows {
		var c domain.HabitCompletion
		if err := json.Unmarshal(row.Data, &c); err != nil {
			continue
		}
		if c.HabitID == habitID {
			if err := u.store.Delete(syncpkg.TableCompletions, row.ID); err != nil {
				return err
			}
		}
	}
	if err := u.store.Delete(syncpkg.TableHabits, habitID); err != nil {
		return err
	}

	u.invalidateStats(habit.UserID)
	return u.outbox.Enqueue(&syncpkg.Intent{
		UserID:   habit.UserID,
		Op:       syncpkg.OpHabitDelete,
		EntityID: habitID,
	})
}

func (u *habitUsecase) Reorder(actorID, habitID, targetID string, after bool) error {
	habit, err := u.GetHabit(actorID, habitID)
	if err != nil {
		return err
	}
	habits, err := u.listLocal(habit.UserID, true)
	if err != nil {
		return err
	}

	ids := make([]string, len(habits))
	byID := make(map[string]*domain.Habit, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
		byID[h.ID] = h
	}

	reordered, err := hierarchy.Reorder(ids, habitID, targetID, after)
	if err != nil {
		if errors.Is(err, hierarchy.ErrNoChange) {
			return nil
		}
		return err
	}

	orders := hierarchy.Renumber(reordered)
	for id, order := range orders {
		h := byID[id]
		if h.SortOrder == order {
			continue
		}
		h.SortOrder = order
		h.UpdatedAt = u.now()
		if err := u.putHabit(h, true); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(orders)
	if err != nil {
		return err
	}
	return u.outbox.Enqueue(&syncpkg.Intent{
		UserID:   habit.UserID,
		Op:       syncpkg.OpHabitReorder,
		Table:    syncpkg.TableHabits,
		EntityID: habitID,
		Payload:  payload,
	})
}

// Complete records the habit done on a date. Completing an already
// completed date is a no-op, so retried or replayed requests are safe.
func (u *habitUsecase) Complete(actorID, habitID, date string, value float64, note string) (*domain.Habit, error) {
	habit, err := u.GetHabit(actorID, habitID)
	if err != nil {
		return nil, err
	}
	if _, err := time.Parse(dayKeyLayout, date); err != nil {
		return nil, errors.New("invalid date")
	}

	key := completionKey(habitID, date)
	row, err := u.store.Get(syncpkg.TableCompletions, key)
	if err != nil {
		return nil, err
	}
	if row != nil {
		return habit, nil
	}

	completion := &domain.HabitCompletion{
		ID:        uuid.New().String(),
		HabitID:   habitID,
		Date:      date,
		Value:     value,
		Note:      note,
		CreatedAt: u.now(),
	}
	data, err := json.Marshal(completion)
	if err != nil {
		return nil, err
	}
	if err := u.store.Put(syncpkg.TableCompletions, key, data, true); err != nil {
		return nil, err
	}

	if err := u.refreshLocalStreaks(habit); err != nil {
		return nil, err
	}
	u.invalidateStats(habit.UserID)

	err = u.outbox.Enqueue(&syncpkg.Intent{
		UserID:   habit.UserID,
		Op:       syncpkg.OpCompletionAdd,
		Table:    syncpkg.TableCompletions,
		EntityID: key,
		Payload:  data,
	})
	if err != nil {
		return nil, err
	}
	return habit, nil
}

// Uncomplete removes a completion. Removing an absent completion is a no-op.
func (u *habitUsecase) Uncomplete(actorID, habitID, date string) (*domain.Habit, error) {
	habit, err := u.GetHabit(actorID, habitID)
	if err != nil {
		return nil, err
	}

	key := completionKey(habitID, date)
	row, err := u.store.Get(syncpkg.TableCompletions, key)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return habit, nil
	}
	if err := u.store.Delete(syncpkg.TableCompletions, key); err != nil {
		return nil, err
	}

	if err := u.refreshLocalStreaks(habit); err != nil {
		return nil, err
	}
	u.invalidateStats(habit.UserID)

	payload, err := json.Marshal(&domain.HabitCompletion{HabitID: habitID, Date: date})
	if err != nil {
		return nil, err
	}
	err = u.outbox.Enqueue(&syncpkg.Intent{
		UserID:   habit.UserID,
		Op:       syncpkg.OpCompletionRemove,
		Table:    syncpkg.TableCompletions,
		EntityID: key,
		Payload:  payload,
	})
	if err != nil {
		return nil, err
	}
	return habit, nil
}

func (u *habitUsecase) Completions(actorID, habitID, from, to string) ([]*domain.HabitCompletion, error) {
	if _, err := u.GetHabit(actorID, habitID); err != nil {
		return nil, err
	}
	completions, err := u.completionsLocal(habitID)
	if err != nil {
		return nil, err
	}
	var out []*domain.HabitCompletion
	for _, c := range completions {
		if c.Date >= from && c.Date <= to {
			out = append(out, c)
		}
	}
	return out, nil
}

// Stats summarizes every habit of a user, computed concurrently and cached.
func (u *habitUsecase) Stats(actorID, userID string) ([]*HabitStats, error) {
	if err := u.authorize(actorID, userID); err != nil {
		return nil, err
	}

	cacheKey := "habit_stats:" + userID
	var cached []*HabitStats
	if err := u.cache.Get(cacheKey, &cached); err == nil {
		return cached, nil
	}

	habits, err := u.listLocal(userID, false)
	if err != nil {
		return nil, err
	}

	stats := make([]*HabitStats, len(habits))
	errs := make([]error, len(habits))
	var wg gosync.WaitGroup
	for i, habit := range habits {
		wg.Add(1)
		go func(i int, habit *domain.Habit) {
			defer wg.Done()
			stats[i], errs[i] = u.statsForHabit(habit)
		}(i, habit)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	if err := u.cache.Set(cacheKey, stats, statsCacheTTL); err != nil {
		u.logger.Warn("caching habit stats", zap.Error(err))
	}
	return stats, nil
}

func (u *habitUsecase) statsForHabit(habit *domain.Habit) (*HabitStats, error) {
	completions, err := u.completionsLocal(habit.ID)
	if err != nil {
		return nil, err
	}

	today := u.now()
	cutoff := today.AddDate(0, 0, -30).Format(dayKeyLayout)
	recent := 0
	dates := make([]string, 0, len(completions))
	for _, c := range completions {
		dates = append(dates, c.Date)
		if c.Date > cutoff {
			recent++
		}
	}

	current, longest := domain.Streaks(dates, habit.Frequency, today)
	return &HabitStats{
		HabitID:        habit.ID,
		Name:           habit.Name,
		Total:          len(completions),
		Last30DaysRate: float64(recent) / 30.0,
		CurrentStreak:  current,
		LongestStreak:  longest,
	}, nil
}

// refreshLocalStreaks recomputes the streak counters from the mirror so the
// caller sees updated numbers before the remote write is confirmed.
func (u *habitUsecase) refreshLocalStreaks(habit *domain.Habit) error {
	completions, err := u.completionsLocal(habit.ID)
	if err != nil {
		return err
	}
	dates := make([]string, len(completions))
	for i, c := range completions {
		dates[i] = c.Date
	}
	habit.CurrentStreak, habit.LongestStreak = domain.Streaks(dates, habit.Frequency, u.now())
	habit.UpdatedAt = u.now()
	// Streaks are derived values; the remote writer recomputes them on ack.
	return u.putHabit(habit, false)
}

func (u *habitUsecase) writeHabit(habit *domain.Habit) error {
	if err := u.putHabit(habit, true); err != nil {
		return err
	}
	payload, err := json.Marshal(habit)
	if err != nil {
		return err
	}
	return u.outbox.Enqueue(&syncpkg.Intent{
		UserID:   habit.UserID,
		Op:       syncpkg.OpHabitUpsert,
		Table:    syncpkg.TableHabits,
		EntityID: habit.ID,
		Payload:  payload,
	})
}

func (u *habitUsecase) putHabit(habit *domain.Habit, dirty bool) error {
	data, err := json.Marshal(habit)
	if err != nil {
		return err
	}
	return u.store.Put(syncpkg.TableHabits, habit.ID, data, dirty)
}

func (u *habitUsecase) getLocal(habitID string) (*domain.Habit, error) {
	row, err := u.store.Get(syncpkg.TableHabits, habitID)
	if err != nil || row == nil {
		return nil, err
	}
	var habit domain.Habit
	if err := json.Unmarshal(row.Data, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

func (u *habitUsecase) listLocal(userID string, includeArchived bool) ([]*domain.Habit, error) {
	rows, err := u.store.Query(syncpkg.TableHabits)
	if err != nil {
		return nil, err
	}
	var habits []*domain.Habit
	for _, row := range rows {
		var habit domain.Habit
		if err := json.Unmarshal(row.Data, &habit); err != nil {
			u.logger.Warn("skipping unreadable mirror row", zap.String("id", row.ID), zap.Error(err))
			continue
		}
		if habit.UserID != userID {
			continue
		}
		if habit.Archived && !includeArchived {
			continue
		}
		habits = append(habits, &habit)
	}
	sort.Slice(habits, func(i, j int) bool { return habits[i].SortOrder < habits[j].SortOrder })
	return habits, nil
}

func (u *habitUsecase) completionsLocal(habitID string) ([]*domain.HabitCompletion, error) {
	rows, err := u.store.Query(syncpkg.TableCompletions)
	if err != nil {
		return nil, err
	}
	var out []*domain.HabitCompletion
	for _, row := range rows {
		var c domain.HabitCompletion
		if err := json.Unmarshal(row.Data, &c); err != nil {
			continue
		}
		if c.HabitID == habitID {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (u *habitUsecase) invalidateStats(userID string) {
	if err := u.cache.Delete("habit_stats:" + userID); err != nil {
		u.logger.Warn("invalidating habit stats cache", zap.Error(err))
	}
}

func completionKey(habitID, date string) string {
	return fmt.Sprintf("%s/%s", habitID, date)
}
