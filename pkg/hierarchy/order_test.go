package hierarchy_test

import (
	"testing"

	"coachly-backend/pkg/hierarchy"

	"github.com/stretchr/testify/assert"
)

func TestReorderBefore(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	siblings := []string{"a", "b", "c", "d"}

	result, err := hierarchy.Reorder(siblings, "d", "b", false)
	assert.Nil(err)
	assert.Equal([]string{"a", "d", "b", "c"}, result)

	// input untouched
	assert.Equal([]string{"a", "b", "c", "d"}, siblings)
}

func TestReorderAfter(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	result, err := hierarchy.Reorder([]string{"a", "b", "c", "d"}, "a", "c", true)
	assert.Nil(err)
	assert.Equal([]string{"b", "c", "a", "d"}, result)
}

func TestReorderOntoSelfIsNoChange(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	result, err := hierarchy.Reorder([]string{"a", "b", "c"}, "b", "b", false)
	assert.Nil(result)
	assert.ErrorIs(err, hierarchy.ErrNoChange)
}

func TestReorderSamePositionIsNoChange(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	// inserting "b" before "c" leaves the order unchanged
	result, err := hierarchy.Reorder([]string{"a", "b", "c"}, "b", "c", false)
	assert.Nil(result)
	assert.ErrorIs(err, hierarchy.ErrNoChange)

	// as does inserting "b" after "a"
	result, err = hierarchy.Reorder([]string{"a", "b", "c"}, "b", "a", true)
	assert.Nil(result)
	assert.ErrorIs(err, hierarchy.ErrNoChange)
}

func TestReorderTargetNotSibling(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	_, err := hierarchy.Reorder([]string{"a", "b"}, "a", "z", false)
	assert.ErrorIs(err, hierarchy.ErrNotSibling)

	_, err = hierarchy.Reorder([]string{"a", "b"}, "z", "a", false)
	assert.ErrorIs(err, hierarchy.ErrNotSibling)
}

func TestRenumberIsDense(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	siblings := []string{"a", "b", "c", "d", "e"}

	// any sequence of moves keeps orders at exactly {0..n-1}
	moves := []struct {
		moved, target string
		after         bool
	}{
		{"e", "a", false},
		{"a", "c", true},
		{"b", "e", false},
		{"d", "e", true},
	}

	for _, m := range moves {
		next, err := hierarchy.Reorder(siblings, m.moved, m.target, m.after)
		assert.Nil(err)

		orders := hierarchy.Renumber(next)
		assert.Equal(len(siblings), len(orders))
		seen := make(map[int]bool)
		for _, o := range orders {
			assert.GreaterOrEqual(o, 0)
			assert.Less(o, len(siblings))
			assert.False(seen[o])
			seen[o] = true
		}
		siblings = next
	}
}

func TestInsertAtClamps(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Equal([]string{"x", "a", "b"}, hierarchy.InsertAt([]string{"a", "b"}, "x", -4))
	assert.Equal([]string{"a", "x", "b"}, hierarchy.InsertAt([]string{"a", "b"}, "x", 1))
	assert.Equal([]string{"a", "b", "x"}, hierarchy.InsertAt([]string{"a", "b"}, "x", 99))
}

func TestRemoveClosesGap(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	remaining := hierarchy.Remove([]string{"x", "p", "q"}, "x")
	assert.Equal([]string{"p", "q"}, remaining)

	orders := hierarchy.Renumber(remaining)
	assert.Equal(0, orders["p"])
	assert.Equal(1, orders["q"])
}
