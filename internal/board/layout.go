package board

// Scope identifies one sibling set: either the children of a parent task, or
// the top-level tasks of a date column (optionally within a project board).
type Scope struct {
	ParentID  string `json:"parent_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	Date      string `json:"date,omitempty"` // YYYY-MM-DD for date columns
}

func (s Scope) Equal(o Scope) bool {
	return s.ParentID == o.ParentID && s.ProjectID == o.ProjectID && s.Date == o.Date
}

// Container is one droppable region (a date column or a parent task's child
// list) with its sibling scope and screen rect.
type Container struct {
	ID    string `json:"id"`
	Scope Scope  `json:"scope"`
	Rect  Rect   `json:"rect"`
}

// Item is one draggable row. GroupKey is set when several tasks render as a
// single collapsed summary block (e.g. all of a day's nutrition tasks) and
// must be dragged as one unit.
type Item struct {
	ID          string `json:"id"`
	ContainerID string `json:"container_id"`
	Rect        Rect   `json:"rect"`
	GroupKey    string `json:"group_key,omitempty"`
}

// Layout is the client-reported geometry snapshot a drag session operates
// on. Items appear in visual order within their container.
type Layout struct {
	Containers []Container `json:"containers"`
	Items      []Item      `json:"items"`
}

func (l *Layout) item(id string) *Item {
	for i := range l.Items {
		if l.Items[i].ID == id {
			return &l.Items[i]
		}
	}
	return nil
}

func (l *Layout) container(id string) *Container {
	for i := range l.Containers {
		if l.Containers[i].ID == id {
			return &l.Containers[i]
		}
	}
	return nil
}

// groupMembers returns the ids of every item sharing the key, in visual order.
func (l *Layout) groupMembers(key string) []string {
	if key == "" {
		return nil
	}
	var ids []string
	for _, it := range l.Items {
		if it.GroupKey == key {
			ids = append(ids, it.ID)
		}
	}
	return ids
}
