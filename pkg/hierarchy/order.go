package hierarchy

import "errors"

var (
	// ErrNoChange signals a drop onto the item's own current position.
	// Callers must not issue any write for it.
	ErrNoChange = errors.New("reorder: no change")

	// ErrNotSibling signals that the drop target is not in the sibling set;
	// the caller must treat the gesture as a reparent instead.
	ErrNotSibling = errors.New("reorder: target is not a sibling")
)

// Reorder returns the sibling id list after moving `moved` next to `target`.
// after=false inserts before the target, after=true inserts after it.
// The input slice is not modified.
func Reorder(siblings []string, moved, target string, after bool) ([]string, error) {
	if moved == target {
		return nil, ErrNoChange
	}

	movedIdx, targetIdx := -1, -1
	for i, id := range siblings {
		switch id {
		case moved:
			movedIdx = i
		case target:
			targetIdx = i
		}
	}
	if movedIdx == -1 || targetIdx == -1 {
		return nil, ErrNotSibling
	}

	without := make([]string, 0, len(siblings)-1)
	for _, id := range siblings {
		if id != moved {
			without = append(without, id)
		}
	}

	// Recompute the target's index in the reduced list.
	insertAt := 0
	for i, id := range without {
		if id == target {
			insertAt = i
			break
		}
	}
	if after {
		insertAt++
	}

	result := make([]string, 0, len(siblings))
	result = append(result, without[:insertAt]...)
	result = append(result, moved)
	result = append(result, without[insertAt:]...)

	if equalOrder(result, siblings) {
		return nil, ErrNoChange
	}
	return result, nil
}

// InsertAt returns siblings with id inserted at position, clamped to the
// valid range. Used when reparenting drops an item into a new sibling set.
func InsertAt(siblings []string, id string, position int) []string {
	if position < 0 {
		position = 0
	}
	if position > len(siblings) {
		position = len(siblings)
	}
	result := make([]string, 0, len(siblings)+1)
	result = append(result, siblings[:position]...)
	result = append(result, id)
	result = append(result, siblings[position:]...)
	return result
}

// Remove returns siblings without id; the remaining entries keep their
// relative order so renumbering closes the gap.
func Remove(siblings []string, id string) []string {
	result := make([]string, 0, len(siblings))
	for _, s := range siblings {
		if s != id {
			result = append(result, s)
		}
	}
	return result
}

// Renumber maps ids to dense sort orders 0..n-1 in slice order. Every entry
// is present so callers persist the full sibling set, not just the moved row.
func Renumber(ids []string) map[string]int {
	orders := make(map[string]int, len(ids))
	for i, id := range ids {
		orders[id] = i
	}
	return orders
}

func equalOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
