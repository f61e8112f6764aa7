package usecase

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coachly-backend/internal/habit/domain"
	syncpkg "coachly-backend/internal/sync"
	"coachly-backend/pkg/localstore"
)

// captureOutbox records enqueued intents instead of delivering them.
type captureOutbox struct {
	intents []*syncpkg.Intent
}

func (o *captureOutbox) Enqueue(intent *syncpkg.Intent) error {
	o.intents = append(o.intents, intent)
	return nil
}

type allowSelf struct{}

func (allowSelf) CanAccessStudent(actorID, studentID string) (bool, error) {
	return actorID == studentID, nil
}

func newTestUsecase(t *testing.T) (*habitUsecase, *captureOutbox) {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	outbox := &captureOutbox{}
	uc := NewHabitUsecase(store, nil, outbox, nil, allowSelf{}, zap.NewNop()).(*habitUsecase)
	uc.now = func() time.Time {
		return time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)
	}
	return uc, outbox
}

func createHabit(t *testing.T, uc *habitUsecase, userID, name string) *domain.Habit {
	t.Helper()
	habit, err := uc.CreateHabit(userID, &CreateHabitRequest{UserID: userID, Name: name})
	require.NoError(t, err)
	return habit
}

func TestCreateHabitEnqueuesUpsert(t *testing.T) {
	uc, outbox := newTestUsecase(t)

	habit := createHabit(t, uc, "u1", "Stretch")

	require.Len(t, outbox.intents, 1)
	assert.Equal(t, syncpkg.OpHabitUpsert, outbox.intents[0].Op)
	assert.Equal(t, habit.ID, outbox.intents[0].EntityID)

	got, err := uc.GetHabit("u1", habit.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stretch", got.Name)
	assert.Equal(t, domain.FrequencyDaily, got.Frequency)
}

func TestCreateHabitAppendsSortOrder(t *testing.T) {
	uc, _ := newTestUsecase(t)

	first := createHabit(t, uc, "u1", "A")
	second := createHabit(t, uc, "u1", "B")

	assert.Equal(t, 0, first.SortOrder)
	assert.Equal(t, 1, second.SortOrder)
}

func TestCompleteIsIdempotent(t *testing.T) {
	uc, outbox := newTestUsecase(t)
	habit := createHabit(t, uc, "u1", "Run")

	_, err := uc.Complete("u1", habit.ID, "2024-03-03", 0, "")
	require.NoError(t, err)
	_, err = uc.Complete("u1", habit.ID, "2024-03-03", 0, "")
	require.NoError(t, err)

	completions, err := uc.Completions("u1", habit.ID, "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Len(t, completions, 1)

	adds := 0
	for _, intent := range outbox.intents {
		if intent.Op == syncpkg.OpCompletionAdd {
			adds++
		}
	}
	assert.Equal(t, 1, adds)
}

func TestUncompleteAbsentIsNoOp(t *testing.T) {
	uc, outbox := newTestUsecase(t)
	habit := createHabit(t, uc, "u1", "Run")

	_, err := uc.Uncomplete("u1", habit.ID, "2024-03-03")
	require.NoError(t, err)

	for _, intent := range outbox.intents {
		assert.NotEqual(t, syncpkg.OpCompletionRemove, intent.Op)
	}
}

func TestCompleteUpdatesStreaks(t *testing.T) {
	uc, _ := newTestUsecase(t)
	habit := createHabit(t, uc, "u1", "Run")

	for _, date := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		_, err := uc.Complete("u1", habit.ID, date, 0, "")
		require.NoError(t, err)
	}

	got, err := uc.GetHabit("u1", habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentStreak)
	assert.Equal(t, 3, got.LongestStreak)

	_, err = uc.Uncomplete("u1", habit.ID, "2024-03-02")
	require.NoError(t, err)

	got, err = uc.GetHabit("u1", habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 1, got.LongestStreak)
}

func TestCompleteRejectsBadDate(t *testing.T) {
	uc, _ := newTestUsecase(t)
	habit := createHabit(t, uc, "u1", "Run")

	_, err := uc.Complete("u1", habit.ID, "03/01/2024", 0, "")
	assert.EqualError(t, err, "invalid date")
}

func TestReorderHabits(t *testing.T) {
	uc, outbox := newTestUsecase(t)
	a := createHabit(t, uc, "u1", "A")
	createHabit(t, uc, "u1", "B")
	c := createHabit(t, uc, "u1", "C")

	require.NoError(t, uc.Reorder("u1", a.ID, c.ID, true))

	habits, err := uc.ListHabits("u1", "u1", true)
	require.NoError(t, err)
	require.Len(t, habits, 3)
	assert.Equal(t, "B", habits[0].Name)
	assert.Equal(t, "C", habits[1].Name)
	assert.Equal(t, "A", habits[2].Name)

	last := outbox.intents[len(outbox.intents)-1]
	assert.Equal(t, syncpkg.OpHabitReorder, last.Op)
}

func TestReorderSamePositionEnqueuesNothing(t *testing.T) {
	uc, outbox := newTestUsecase(t)
	a := createHabit(t, uc, "u1", "A")
	b := createHabit(t, uc, "u1", "B")

	before := len(outbox.intents)
	require.NoError(t, uc.Reorder("u1", b.ID, a.ID, true))
	assert.Equal(t, before, len(outbox.intents))
}

func TestDeleteHabitRemovesCompletions(t *testing.T) {
	uc, outbox := newTestUsecase(t)
	habit := createHabit(t, uc, "u1", "Run")

	_, err := uc.Complete("u1", habit.ID, "2024-03-03", 0, "")
	require.NoError(t, err)
	require.NoError(t, uc.DeleteHabit("u1", habit.ID))

	_, err = uc.GetHabit("u1", habit.ID)
	assert.EqualError(t, err, "habit not found")

	last := outbox.intents[len(outbox.intents)-1]
	assert.Equal(t, syncpkg.OpHabitDelete, last.Op)
}

func TestListHabitsHidesArchived(t *testing.T) {
	uc, _ := newTestUsecase(t)
	createHabit(t, uc, "u1", "A")
	b := createHabit(t, uc, "u1", "B")

	archived := true
	_, err := uc.UpdateHabit("u1", b.ID, &UpdateHabitRequest{Archived: &archived})
	require.NoError(t, err)

	visible, err := uc.ListHabits("u1", "u1", false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "A", visible[0].Name)

	all, err := uc.ListHabits("u1", "u1", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestHabitAccessDenied(t *testing.T) {
	uc, _ := newTestUsecase(t)
	habit := createHabit(t, uc, "u1", "Run")

	_, err := uc.GetHabit("u2", habit.ID)
	assert.EqualError(t, err, "unauthorized")
}
