// Package state holds the per-level menu state of the UI: items, filter,
// cursor, viewport and multi-selection.
package state

import (
	"strings"

	"github.com/atomicstack/bimview/internal/menu"
)

// Level encapsulates menu level state such as cursor position, filter, and viewport.
type Level struct {
	ID             string
	Title          string
	Items          []menu.Item
	Full           []menu.Item
	Filter         string
	FilterCursor   int
	Cursor         int
	MultiSelect    bool
	Hover          bool
	Selected       map[string]struct{}
	LastCursor     int
	Node           *menu.Node
	ViewportOffset int
}

// NewLevel constructs a Level using the provided items and menu node.
func NewLevel(id, title string, items []menu.Item, node *menu.Node) *Level {
	l := &Level{
		ID:         id,
		Title:      title,
		Cursor:     0,
		LastCursor: -1,
		Selected:   make(map[string]struct{}),
		Node:       node,
	}
	if node != nil {
		l.MultiSelect = node.MultiSelect
		l.Hover = node.Hover
	}
	l.UpdateItems(items)
	return l
}

// IndexOf returns the index of the visible item with id. A registry id such
// as "open:recent" also matches its last segment.
func (l *Level) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	suffix := id
	if idx := strings.LastIndex(id, ":"); idx >= 0 {
		suffix = id[idx+1:]
	}
	fallback := -1
	for i, item := range l.Items {
		if item.ID == id {
			return i
		}
		if fallback < 0 && item.ID == suffix {
			fallback = i
		}
	}
	return fallback
}

// CurrentItem returns the item under the cursor.
func (l *Level) CurrentItem() (menu.Item, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return menu.Item{}, false
	}
	return l.Items[l.Cursor], true
}

// UpdateItems replaces the items, keeping the filter, the selections that
// still exist and, when possible, the cursor on the same item id.
func (l *Level) UpdateItems(items []menu.Item) {
	keep := ""
	if item, ok := l.CurrentItem(); ok {
		keep = item.ID
	}
	l.Full = CloneItems(items)
	l.pruneSelections()
	l.applyFilter()
	if keep != "" {
		for i, item := range l.Items {
			if item.ID == keep {
				l.Cursor = i
				break
			}
		}
	}
	if l.ViewportOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
	}
}

// CloneItems produces a shallow copy of the provided menu items.
func CloneItems(items []menu.Item) []menu.Item {
	dup := make([]menu.Item, len(items))
	copy(dup, items)
	return dup
}

func (l *Level) pruneSelections() {
	if len(l.Selected) == 0 {
		return
	}
	valid := make(map[string]struct{}, len(l.Full))
	for _, item := range l.Full {
		valid[item.ID] = struct{}{}
	}
	for id := range l.Selected {
		if _, ok := valid[id]; !ok {
			delete(l.Selected, id)
		}
	}
}

// IsSelected reports whether the given id is selected.
func (l *Level) IsSelected(id string) bool {
	_, ok := l.Selected[id]
	return ok
}

// ToggleCurrentSelection toggles the selection state at the current cursor.
func (l *Level) ToggleCurrentSelection() bool {
	item, ok := l.CurrentItem()
	if !l.MultiSelect || !ok {
		return false
	}
	if l.Selected == nil {
		l.Selected = make(map[string]struct{})
	}
	if _, on := l.Selected[item.ID]; on {
		delete(l.Selected, item.ID)
	} else {
		l.Selected[item.ID] = struct{}{}
	}
	return true
}

// ClearSelection clears all selected items.
func (l *Level) ClearSelection() {
	clear(l.Selected)
}

// SelectedItems returns the selected items in list order, including any
// hidden by the filter.
func (l *Level) SelectedItems() []menu.Item {
	if len(l.Selected) == 0 {
		return nil
	}
	selected := make([]menu.Item, 0, len(l.Selected))
	for _, item := range l.Full {
		if l.IsSelected(item.ID) {
			selected = append(selected, item)
		}
	}
	return selected
}
