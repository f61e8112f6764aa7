package hierarchy

import "sort"

// Node is the flat persisted representation of one tree entry.
type Node struct {
	ID        string
	ParentID  string // empty for roots
	SortOrder int
}

// TreeNode is one rendered tree entry with its ordered children.
type TreeNode struct {
	Node
	Children []*TreeNode
}

// Build converts flat records into a nested tree. Children are grouped by
// parent id and sorted by sort order; records whose parent id is absent from
// the set are treated as roots. Depth is not bounded here.
func Build(nodes []Node) []*TreeNode {
	byID := make(map[string]*TreeNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = &TreeNode{Node: n}
	}

	var roots []*TreeNode
	for _, n := range nodes {
		tn := byID[n.ID]
		if n.ParentID == "" {
			roots = append(roots, tn)
			continue
		}
		parent, ok := byID[n.ParentID]
		if !ok {
			roots = append(roots, tn)
			continue
		}
		parent.Children = append(parent.Children, tn)
	}

	sortLevel(roots)
	for _, tn := range byID {
		sortLevel(tn.Children)
	}
	return roots
}

// Flatten performs a pre-order traversal: each parent immediately followed
// by all of its descendants. The drag insertion math operates on this linear
// sequence of visually adjacent items.
func Flatten(roots []*TreeNode) []Node {
	var out []Node
	var walk func(nodes []*TreeNode)
	walk = func(nodes []*TreeNode) {
		for _, n := range nodes {
			out = append(out, n.Node)
			walk(n.Children)
		}
	}
	walk(roots)
	return out
}

// Descendants returns the ids of every node below root, pre-order. Used to
// compute cascade-delete sets.
func Descendants(root *TreeNode) []string {
	var ids []string
	var walk func(nodes []*TreeNode)
	walk = func(nodes []*TreeNode) {
		for _, n := range nodes {
			ids = append(ids, n.ID)
			walk(n.Children)
		}
	}
	walk(root.Children)
	return ids
}

func sortLevel(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].SortOrder < nodes[j].SortOrder
	})
}
