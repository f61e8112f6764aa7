package sync

import (
	"encoding/json"
	"fmt"

	"coachly-backend/internal/habit/domain"
	"coachly-backend/internal/habit/repository"
)

// Mirror tables the habit module keeps in the local store.
const (
	TableHabits      = "habits"
	TableCompletions = "habit_completions"
)

// HabitWriter applies habit intents to the remote store.
type HabitWriter struct {
	habitRepo repository.HabitRepository
}

func NewHabitWriter(habitRepo repository.HabitRepository) *HabitWriter {
	return &HabitWriter{habitRepo: habitRepo}
}

func (w *HabitWriter) Apply(intent *Intent) error {
	switch intent.Op {
	case OpHabitUpsert:
		var habit domain.Habit
		if err := json.Unmarshal(intent.Payload, &habit); err != nil {
			return err
		}
		existing, err := w.habitRepo.FindByID(habit.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return w.habitRepo.Create(&habit)
		}
		return w.habitRepo.Update(&habit)

	case OpHabitDelete:
		return w.habitRepo.Delete(intent.EntityID)

	case OpHabitReorder:
		var orders map[string]int
		if err := json.Unmarshal(intent.Payload, &orders); err != nil {
			return err
		}
		return w.habitRepo.UpdateOrders(orders)

	case OpCompletionAdd:
		var completion domain.HabitCompletion
		if err := json.Unmarshal(intent.Payload, &completion); err != nil {
			return err
		}
		if err := w.habitRepo.SaveCompletion(&completion); err != nil {
			return err
		}
		return w.refreshStreaks(completion.HabitID)

	case OpCompletionRemove:
		var completion domain.HabitCompletion
		if err := json.Unmarshal(intent.Payload, &completion); err != nil {
			return err
		}
		if err := w.habitRepo.DeleteCompletion(completion.HabitID, completion.Date); err != nil {
			return err
		}
		return w.refreshStreaks(completion.HabitID)
	}
	return fmt.Errorf("unknown sync op: %s", intent.Op)
}

// refreshStreaks recomputes the remote streak counters after a completion
// change so every device sees the same numbers.
func (w *HabitWriter) refreshStreaks(habitID string) error {
	habit, err := w.habitRepo.FindByID(habitID)
	if err != nil || habit == nil {
		return err
	}
	dates, err := w.habitRepo.FindCompletionDates(habitID)
	if err != nil {
		return err
	}
	habit.CurrentStreak, habit.LongestStreak = domain.Streaks(dates, habit.Frequency, timeNow())
	return w.habitRepo.Update(habit)
}
