package board

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle phase of one drag gesture.
type State int

const (
	StateIdle State = iota
	// StatePending: pointer is down but the drag has not activated yet
	// (below the movement threshold, long-press timer still running).
	StatePending
	StateDragging
	StateResolving
)

// Edge is the insertion side relative to the hovered item.
type Edge string

const (
	EdgeBefore Edge = "before"
	EdgeAfter  Edge = "after"
)

// Hover is the current drop indicator: which container the pointer is over,
// which sibling it is nearest to, and on which side the item would land.
// TargetID is empty when hovering an empty region of a container (append).
type Hover struct {
	ContainerID string `json:"container_id"`
	TargetID    string `json:"target_id,omitempty"`
	Edge        Edge   `json:"edge"`
}

// PlanKind classifies what a drop resolves to.
type PlanKind string

const (
	PlanReorder   PlanKind = "reorder"    // same scope, sibling re-sequencing only
	PlanReparent  PlanKind = "reparent"   // parent and/or date rewrite + both scopes renumbered
	PlanGroupMove PlanKind = "group_move" // every task of a grouped block gets the target date
)

// MovePlan is the resolved outcome of a drop, handed to the task layer for
// persistence. No persistence happens before a session reaches Resolving.
type MovePlan struct {
	Kind     PlanKind `json:"kind"`
	ItemID   string   `json:"item_id,omitempty"`
	GroupIDs []string `json:"group_ids,omitempty"`
	From     Scope    `json:"from"`
	To       Scope    `json:"to"`
	// TargetID/Edge position the item within the destination sibling set;
	// empty TargetID means append.
	TargetID string `json:"target_id,omitempty"`
	Edge     Edge   `json:"edge,omitempty"`
}

const (
	// ActivationDistance is how far the pointer must travel before a
	// pointer-down becomes a drag.
	ActivationDistance = 8.0
	// LongPressDelay activates a drag on touch input without movement.
	LongPressDelay = 200 * time.Millisecond
)

var (
	ErrUnknownItem = errors.New("drag: item not in layout")
	ErrNotDragging = errors.New("drag: no active drag")
)

// Session owns one drag gesture from pointer-down to drop. All methods are
// driven by a single caller; Manager provides the locking.
type Session struct {
	ID     string
	UserID string

	itemID   string
	groupIDs []string
	layout   Layout
	origin   Point
	touch    bool
	started  time.Time

	state State
	hover *Hover
}

// NewSession starts a gesture in Pending on the given item. For grouped
// blocks the caller passes any member id; the whole group drags together.
func NewSession(userID, itemID string, origin Point, layout Layout, touch bool, now time.Time) (*Session, error) {
	item := layout.item(itemID)
	if item == nil {
		return nil, ErrUnknownItem
	}

	return &Session{
		ID:       uuid.New().String(),
		UserID:   userID,
		itemID:   itemID,
		groupIDs: layout.groupMembers(item.GroupKey),
		layout:   layout,
		origin:   origin,
		touch:    touch,
		started:  now,
		state:    StatePending,
	}, nil
}

func (s *Session) State() State { return s.state }
func (s *Session) Hover() *Hover {
	return s.hover
}

// Move feeds one pointer movement. In Pending it checks activation; in
// Dragging it recomputes the hover state. Recomputing the same position is
// idempotent: the returned hover depends only on the pointer and layout.
func (s *Session) Move(p Point, now time.Time) *Hover {
	switch s.state {
	case StatePending:
		if s.origin.DistanceTo(p) >= ActivationDistance || (s.touch && now.Sub(s.started) >= LongPressDelay) {
			s.state = StateDragging
			s.hover = s.hitTest(p)
		}
	case StateDragging:
		s.hover = s.hitTest(p)
	}
	return s.hover
}

// Drop resolves the gesture. A drop before activation, outside any droppable
// region, or onto the item's own position yields a nil plan and no
// persistence. The session always ends Idle.
func (s *Session) Drop(p Point, now time.Time) *MovePlan {
	if s.state == StatePending {
		s.state = StateIdle
		return nil
	}
	if s.state != StateDragging {
		return nil
	}

	s.hover = s.hitTest(p)
	s.state = StateResolving
	plan := s.resolve()
	s.state = StateIdle
	return plan
}

// Cancel aborts the gesture with no mutation; the visual state reverts
// without a network round trip.
func (s *Session) Cancel() {
	s.state = StateIdle
	s.hover = nil
}

// hitTest implements the two-tier targeting policy. Tier 1 is exact pointer
// containment over an item or container; the dragged item (and its group) is
// skipped so its shrunk original slot cannot steal hits near list
// boundaries. Tier 2 falls back to nearest rect center, because strict
// containment alone misses drops in the gaps while nearest-center alone lets
// long items claim far-away drops.
func (s *Session) hitTest(p Point) *Hover {
	// Tier 1: containment over items.
	for _, it := range s.layout.Items {
		if s.isDragged(it.ID) {
			continue
		}
		if it.Rect.Contains(p) {
			return s.hoverForItem(&it, p)
		}
	}

	// Tier 1: containment over containers (empty regions).
	for _, ct := range s.layout.Containers {
		if ct.Rect.Contains(p) {
			return &Hover{ContainerID: ct.ID, Edge: EdgeAfter}
		}
	}

	// Tier 2: nearest center among candidate items. Containers are only
	// considered when no items remain, so an empty column can still receive
	// drops but a tall column never outcompetes the row next to the pointer.
	var bestItem *Item
	bestItemDist := math.MaxFloat64
	for i := range s.layout.Items {
		it := &s.layout.Items[i]
		if s.isDragged(it.ID) {
			continue
		}
		if d := it.Rect.Center().DistanceTo(p); d < bestItemDist {
			bestItemDist = d
			bestItem = it
		}
	}
	if bestItem != nil {
		return s.hoverForItem(bestItem, p)
	}

	var bestContainer *Container
	bestContainerDist := math.MaxFloat64
	for i := range s.layout.Containers {
		ct := &s.layout.Containers[i]
		if d := ct.Rect.Center().DistanceTo(p); d < bestContainerDist {
			bestContainerDist = d
			bestContainer = ct
		}
	}
	if bestContainer != nil {
		return &Hover{ContainerID: bestContainer.ID, Edge: EdgeAfter}
	}
	return nil
}

func (s *Session) hoverForItem(it *Item, p Point) *Hover {
	edge := EdgeAfter
	if p.Y < it.Rect.Center().Y {
		edge = EdgeBefore
	}
	return &Hover{ContainerID: it.ContainerID, TargetID: it.ID, Edge: edge}
}

func (s *Session) isDragged(id string) bool {
	if id == s.itemID {
		return true
	}
	for _, g := range s.groupIDs {
		if g == id {
			return true
		}
	}
	return false
}

// resolve turns the final hover into a MovePlan, or nil for no-op drops.
func (s *Session) resolve() *MovePlan {
	if s.hover == nil {
		return nil
	}

	item := s.layout.item(s.itemID)
	from := s.layout.container(item.ContainerID)
	to := s.layout.container(s.hover.ContainerID)
	if from == nil || to == nil {
		return nil
	}

	// Grouped blocks only move between date columns; a drop back into the
	// same column changes nothing.
	if len(s.groupIDs) > 0 {
		if from.Scope.Equal(to.Scope) {
			return nil
		}
		return &MovePlan{
			Kind:     PlanGroupMove,
			GroupIDs: s.groupIDs,
			From:     from.Scope,
			To:       to.Scope,
		}
	}

	if from.Scope.Equal(to.Scope) {
		if s.hover.TargetID == "" || s.hover.TargetID == s.itemID {
			return nil
		}
		return &MovePlan{
			Kind:     PlanReorder,
			ItemID:   s.itemID,
			From:     from.Scope,
			To:       to.Scope,
			TargetID: s.hover.TargetID,
			Edge:     s.hover.Edge,
		}
	}

	return &MovePlan{
		Kind:     PlanReparent,
		ItemID:   s.itemID,
		From:     from.Scope,
		To:       to.Scope,
		TargetID: s.hover.TargetID,
		Edge:     s.hover.Edge,
	}
}
