package board_test

import (
	"testing"
	"time"

	"coachly-backend/internal/board"

	"github.com/stretchr/testify/assert"
)

// twoColumnLayout builds two date columns: monday holds a, b, c stacked
// vertically, tuesday holds d, e. Each row is 100x40.
func twoColumnLayout() board.Layout {
	row := func(col, idx int) board.Rect {
		return board.Rect{X: float64(col * 120), Y: float64(idx * 50), W: 100, H: 40}
	}

	return board.Layout{
		Containers: []board.Container{
			{ID: "mon", Scope: board.Scope{Date: "2024-01-01"}, Rect: board.Rect{X: 0, Y: 0, W: 110, H: 400}},
			{ID: "tue", Scope: board.Scope{Date: "2024-01-02"}, Rect: board.Rect{X: 120, Y: 0, W: 110, H: 400}},
		},
		Items: []board.Item{
			{ID: "a", ContainerID: "mon", Rect: row(0, 0)},
			{ID: "b", ContainerID: "mon", Rect: row(0, 1)},
			{ID: "c", ContainerID: "mon", Rect: row(0, 2)},
			{ID: "d", ContainerID: "tue", Rect: row(1, 0)},
			{ID: "e", ContainerID: "tue", Rect: row(1, 1)},
		},
	}
}

func startDrag(assert *assert.Assertions, itemID string, origin board.Point) *board.Session {
	s, err := board.NewSession("user-1", itemID, origin, twoColumnLayout(), false, time.Now())
	assert.Nil(err)
	assert.Equal(board.StatePending, s.State())
	return s
}

func TestSessionUnknownItem(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	_, err := board.NewSession("user-1", "nope", board.Point{}, twoColumnLayout(), false, time.Now())
	assert.ErrorIs(err, board.ErrUnknownItem)
}

func TestActivationThreshold(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := startDrag(assert, "a", board.Point{X: 50, Y: 20})

	// small jitter stays Pending
	s.Move(board.Point{X: 53, Y: 21}, time.Now())
	assert.Equal(board.StatePending, s.State())

	// crossing the threshold activates
	s.Move(board.Point{X: 50, Y: 40}, time.Now())
	assert.Equal(board.StateDragging, s.State())
}

func TestLongPressActivation(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	start := time.Now()
	s, err := board.NewSession("user-1", "a", board.Point{X: 50, Y: 20}, twoColumnLayout(), true, start)
	assert.Nil(err)

	// no movement, timer not yet elapsed
	s.Move(board.Point{X: 50, Y: 20}, start.Add(50*time.Millisecond))
	assert.Equal(board.StatePending, s.State())

	s.Move(board.Point{X: 50, Y: 20}, start.Add(board.LongPressDelay))
	assert.Equal(board.StateDragging, s.State())
}

func TestHoverContainmentAndEdge(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := startDrag(assert, "a", board.Point{X: 50, Y: 20})
	s.Move(board.Point{X: 50, Y: 40}, time.Now())

	// top half of b -> before
	hover := s.Move(board.Point{X: 50, Y: 55}, time.Now())
	assert.NotNil(hover)
	assert.Equal("mon", hover.ContainerID)
	assert.Equal("b", hover.TargetID)
	assert.Equal(board.EdgeBefore, hover.Edge)

	// bottom half of b -> after
	hover = s.Move(board.Point{X: 50, Y: 85}, time.Now())
	assert.Equal("b", hover.TargetID)
	assert.Equal(board.EdgeAfter, hover.Edge)
}

func TestHoverIsIdempotent(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := startDrag(assert, "a", board.Point{X: 50, Y: 20})
	s.Move(board.Point{X: 50, Y: 40}, time.Now())

	first := s.Move(board.Point{X: 50, Y: 55}, time.Now())
	second := s.Move(board.Point{X: 50, Y: 55}, time.Now())
	assert.Equal(first, second)
}

func TestHoverSkipsDraggedItemSlot(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := startDrag(assert, "a", board.Point{X: 50, Y: 20})
	s.Move(board.Point{X: 50, Y: 40}, time.Now())

	// pointer inside a's own rect must not target a; tier 1 skips it and
	// the container claims the hit
	hover := s.Move(board.Point{X: 50, Y: 10}, time.Now())
	assert.NotNil(hover)
	assert.NotEqual("a", hover.TargetID)
}

func TestHoverNearestCenterFallback(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := startDrag(assert, "a", board.Point{X: 50, Y: 20})
	s.Move(board.Point{X: 50, Y: 40}, time.Now())

	// far below every rect: nothing contains the pointer, nearest center wins
	hover := s.Move(board.Point{X: 50, Y: 900}, time.Now())
	assert.NotNil(hover)
	assert.Equal("mon", hover.ContainerID)
	assert.Equal("c", hover.TargetID)
}

func TestDropSameScopeIsReorderPlan(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := startDrag(assert, "a", board.Point{X: 50, Y: 20})
	s.Move(board.Point{X: 50, Y: 40}, time.Now())

	plan := s.Drop(board.Point{X: 50, Y: 130}, time.Now())
	assert.NotNil(plan)
	assert.Equal(board.PlanReorder, plan.Kind)
	assert.Equal("a", plan.ItemID)
	assert.Equal("c", plan.TargetID)
	assert.Equal(board.EdgeAfter, plan.Edge)
	assert.True(plan.From.Equal(plan.To))
	assert.Equal(board.StateIdle, s.State())
}

func TestDropOtherScopeIsReparentPlan(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := startDrag(assert, "a", board.Point{X: 50, Y: 20})
	s.Move(board.Point{X: 50, Y: 40}, time.Now())

	// drop onto top half of d in the tuesday column
	plan := s.Drop(board.Point{X: 170, Y: 5}, time.Now())
	assert.NotNil(plan)
	assert.Equal(board.PlanReparent, plan.Kind)
	assert.Equal("2024-01-01", plan.From.Date)
	assert.Equal("2024-01-02", plan.To.Date)
	assert.Equal("d", plan.TargetID)
	assert.Equal(board.EdgeBefore, plan.Edge)
}

func TestDropBeforeActivationIsNoop(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := startDrag(assert, "a", board.Point{X: 50, Y: 20})

	plan := s.Drop(board.Point{X: 51, Y: 21}, time.Now())
	assert.Nil(plan)
	assert.Equal(board.StateIdle, s.State())
}

func TestCancelRevertsWithoutPlan(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := startDrag(assert, "a", board.Point{X: 50, Y: 20})
	s.Move(board.Point{X: 50, Y: 40}, time.Now())
	assert.Equal(board.StateDragging, s.State())

	s.Cancel()
	assert.Equal(board.StateIdle, s.State())
	assert.Nil(s.Hover())
}

func TestGroupDragMovesWholeBlock(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	layout := twoColumnLayout()
	// a and b render as one collapsed nutrition block
	layout.Items[0].GroupKey = "nutrition:2024-01-01"
	layout.Items[1].GroupKey = "nutrition:2024-01-01"

	s, err := board.NewSession("user-1", "a", board.Point{X: 50, Y: 20}, layout, false, time.Now())
	assert.Nil(err)

	s.Move(board.Point{X: 50, Y: 40}, time.Now())

	// drop into the tuesday column
	plan := s.Drop(board.Point{X: 170, Y: 60}, time.Now())
	assert.NotNil(plan)
	assert.Equal(board.PlanGroupMove, plan.Kind)
	assert.ElementsMatch([]string{"a", "b"}, plan.GroupIDs)
	assert.Equal("2024-01-02", plan.To.Date)

	// dropping the group back onto its own column is a no-op
	s2, err := board.NewSession("user-1", "a", board.Point{X: 50, Y: 20}, layout, false, time.Now())
	assert.Nil(err)
	s2.Move(board.Point{X: 50, Y: 40}, time.Now())
	assert.Nil(s2.Drop(board.Point{X: 50, Y: 130}, time.Now()))
}

func TestManagerSingleSessionPerUser(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	m := board.NewManager()

	_, err := m.Begin("user-1", "a", board.Point{X: 50, Y: 20}, twoColumnLayout(), false)
	assert.Nil(err)

	// a second Begin replaces the dangling session
	_, err = m.Begin("user-1", "b", board.Point{X: 50, Y: 70}, twoColumnLayout(), false)
	assert.Nil(err)

	_, _, err = m.Move("user-2", board.Point{})
	assert.ErrorIs(err, board.ErrNotDragging)

	m.Cancel("user-1")
	_, err = m.Drop("user-1", board.Point{})
	assert.ErrorIs(err, board.ErrNotDragging)
}
