package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taskdomain "coachly-backend/internal/task/domain"
)

func TestExpandResolvesDayOffsets(t *testing.T) {
	t.Parallel()

	seven := "19:00"
	template := &ProgramTemplate{
		Name:         "Week",
		DurationDays: 7,
		Blueprints: TaskBlueprints{
			{Day: 1, Title: "Kickoff", Type: taskdomain.TypeTodo, DurationMin: 30},
			{Day: 7, Title: "Wrap up", Type: taskdomain.TypeOther, DueTime: &seven},
		},
	}

	start, err := time.Parse("2006-01-02", "2024-01-01")
	require.NoError(t, err)
	tasks := template.Expand("u1", start)

	require.Len(t, tasks, 2)
	assert.Equal(t, "2024-01-01", tasks[0].DateKey())
	assert.Equal(t, "2024-01-07", tasks[1].DateKey())

	// Blueprint fields copy over verbatim.
	assert.Equal(t, "Kickoff", tasks[0].Title)
	assert.Equal(t, 30, tasks[0].DurationMin)
	assert.Equal(t, "u1", tasks[0].UserID)
	require.NotNil(t, tasks[1].DueTime)
	assert.Equal(t, "19:00", *tasks[1].DueTime)
}

func TestExpandSkipsInvalidDays(t *testing.T) {
	t.Parallel()

	template := &ProgramTemplate{
		Blueprints: TaskBlueprints{
			{Day: 0, Title: "Bad", Type: taskdomain.TypeTodo},
			{Day: 2, Title: "Good", Type: taskdomain.TypeTodo},
		},
	}

	start, _ := time.Parse("2006-01-02", "2024-01-01")
	tasks := template.Expand("u1", start)

	require.Len(t, tasks, 1)
	assert.Equal(t, "2024-01-02", tasks[0].DateKey())
}
