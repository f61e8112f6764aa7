package hierarchy_test

import (
	"testing"

	"coachly-backend/pkg/hierarchy"

	"github.com/stretchr/testify/assert"
)

func TestBuildGroupsAndSorts(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	nodes := []hierarchy.Node{
		{ID: "root2", SortOrder: 1},
		{ID: "root1", SortOrder: 0},
		{ID: "c2", ParentID: "root1", SortOrder: 1},
		{ID: "c1", ParentID: "root1", SortOrder: 0},
	}

	roots := hierarchy.Build(nodes)
	assert.Len(roots, 2)
	assert.Equal("root1", roots[0].ID)
	assert.Equal("root2", roots[1].ID)

	assert.Len(roots[0].Children, 2)
	assert.Equal("c1", roots[0].Children[0].ID)
	assert.Equal("c2", roots[0].Children[1].ID)
	assert.Empty(roots[1].Children)
}

func TestBuildOrphanBecomesRoot(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	nodes := []hierarchy.Node{
		{ID: "a", SortOrder: 0},
		{ID: "orphan", ParentID: "missing", SortOrder: 1},
	}

	roots := hierarchy.Build(nodes)
	assert.Len(roots, 2)
	assert.Equal("a", roots[0].ID)
	assert.Equal("orphan", roots[1].ID)
}

func TestFlattenPreOrder(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	nodes := []hierarchy.Node{
		{ID: "r1", SortOrder: 0},
		{ID: "r1c1", ParentID: "r1", SortOrder: 0},
		{ID: "r1c2", ParentID: "r1", SortOrder: 1},
		{ID: "r2", SortOrder: 1},
		{ID: "r2c1", ParentID: "r2", SortOrder: 0},
	}

	flat := hierarchy.Flatten(hierarchy.Build(nodes))

	ids := make([]string, len(flat))
	for i, n := range flat {
		ids[i] = n.ID
	}
	assert.Equal([]string{"r1", "r1c1", "r1c2", "r2", "r2c1"}, ids)
}

func TestBuildFlattenRoundTrip(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	nodes := []hierarchy.Node{
		{ID: "b", SortOrder: 1},
		{ID: "a", SortOrder: 0},
		{ID: "a1", ParentID: "a", SortOrder: 0},
		{ID: "a2", ParentID: "a", SortOrder: 1},
		{ID: "a2x", ParentID: "a2", SortOrder: 0},
		{ID: "b1", ParentID: "b", SortOrder: 0},
	}

	flat := hierarchy.Flatten(hierarchy.Build(nodes))

	// permutation of input
	assert.Len(flat, len(nodes))
	seen := make(map[string]bool)
	for _, n := range flat {
		seen[n.ID] = true
	}
	for _, n := range nodes {
		assert.True(seen[n.ID])
	}

	// every parent precedes all of its descendants
	position := make(map[string]int)
	for i, n := range flat {
		position[n.ID] = i
	}
	for _, n := range flat {
		if n.ParentID != "" {
			assert.Less(position[n.ParentID], position[n.ID])
		}
	}
}

func TestDescendants(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	nodes := []hierarchy.Node{
		{ID: "root", SortOrder: 0},
		{ID: "c1", ParentID: "root", SortOrder: 0},
		{ID: "c2", ParentID: "root", SortOrder: 1},
		{ID: "g1", ParentID: "c1", SortOrder: 0},
	}

	roots := hierarchy.Build(nodes)
	assert.Len(roots, 1)
	assert.Equal([]string{"c1", "g1", "c2"}, hierarchy.Descendants(roots[0]))
}
