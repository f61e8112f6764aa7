package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStreaksDailyConsecutive(t *testing.T) {
	t.Parallel()

	current, longest := Streaks(
		[]string{"2024-03-01", "2024-03-02", "2024-03-03"},
		FrequencyDaily,
		day("2024-03-03"),
	)
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestStreaksDailyGapResetsCurrent(t *testing.T) {
	t.Parallel()

	current, longest := Streaks(
		[]string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-06"},
		FrequencyDaily,
		day("2024-03-06"),
	)
	assert.Equal(t, 1, current)
	assert.Equal(t, 3, longest)
}

func TestStreaksDailySurvivesTodayNotDoneYet(t *testing.T) {
	t.Parallel()

	current, _ := Streaks(
		[]string{"2024-03-01", "2024-03-02"},
		FrequencyDaily,
		day("2024-03-03"),
	)
	assert.Equal(t, 2, current)
}

func TestStreaksDailyStaleRunIsZero(t *testing.T) {
	t.Parallel()

	current, longest := Streaks(
		[]string{"2024-03-01", "2024-03-02"},
		FrequencyDaily,
		day("2024-03-10"),
	)
	assert.Equal(t, 0, current)
	assert.Equal(t, 2, longest)
}

func TestStreaksWeekly(t *testing.T) {
	t.Parallel()

	// Three consecutive ISO weeks, several completions in one of them.
	current, longest := Streaks(
		[]string{"2024-03-04", "2024-03-06", "2024-03-12", "2024-03-20"},
		FrequencyWeekly,
		day("2024-03-21"),
	)
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestStreaksWeeklyGap(t *testing.T) {
	t.Parallel()

	current, longest := Streaks(
		[]string{"2024-03-04", "2024-03-25"},
		FrequencyWeekly,
		day("2024-03-26"),
	)
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, longest)
}

func TestStreaksMonthly(t *testing.T) {
	t.Parallel()

	// January through March, with February crossing a year boundary safely.
	current, longest := Streaks(
		[]string{"2024-01-15", "2024-02-01", "2024-02-28", "2024-03-10"},
		FrequencyMonthly,
		day("2024-03-30"),
	)
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestStreaksMonthlyYearBoundary(t *testing.T) {
	t.Parallel()

	current, longest := Streaks(
		[]string{"2023-12-20", "2024-01-05"},
		FrequencyMonthly,
		day("2024-01-10"),
	)
	assert.Equal(t, 2, current)
	assert.Equal(t, 2, longest)
}

func TestStreaksEmpty(t *testing.T) {
	t.Parallel()

	current, longest := Streaks(nil, FrequencyDaily, day("2024-03-01"))
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)
}

func TestStreaksDuplicateDatesCountOnce(t *testing.T) {
	t.Parallel()

	current, longest := Streaks(
		[]string{"2024-03-01", "2024-03-01", "2024-03-02"},
		FrequencyDaily,
		day("2024-03-02"),
	)
	assert.Equal(t, 2, current)
	assert.Equal(t, 2, longest)
}
