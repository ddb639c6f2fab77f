package menu

import (
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/bimview/internal/checks"
	"github.com/atomicstack/bimview/internal/session"
)

// Item represents a selectable menu entry.
type Item struct {
	ID    string
	Label string
}

// Level describes a breadcrumb component for display purposes.
type Level struct {
	ID    string
	Title string
	Items []Item
}

// Context carries runtime data needed by loader and action functions.
type Context struct {
	Session  *session.Session
	Snapshot session.Snapshot
	Elements []ElementEntry
	Recent   []RecentEntry
	Checks   []checks.Check
}

// ElementEntry is one element row of the current model.
type ElementEntry struct {
	ID   int
	Type string
	Name string
}

// RecentEntry is one recently opened project.
type RecentEntry struct {
	Path      string
	Name      string
	Schema    string
	Elements  int
	OpenCount int
	OpenedAt  time.Time
}

// PlanEntry pairs a floor plan id with its display name.
type PlanEntry struct {
	ID      string
	Name    string
	Current bool
}

// Loader populates submenu entries on demand.
type Loader func(Context) ([]Item, error)

type Action func(Context, Item) tea.Cmd

// ActionResult communicates the outcome of executing a menu action.
type ActionResult struct {
	Info string
	Err  error
}

// OpenPrompt requests a path for the open form.
type OpenPrompt struct {
	Context Context
	Initial string
}

// PropertiesResult carries the properties of the selected element.
type PropertiesResult struct {
	Title string
	Body  string
	Err   error
}

// RootItems returns the top-level menu entries.
func RootItems() []Item {
	return menuItemsFromIDs([]string{
		"open",
		"view",
		"plans",
		"elements",
		"checks",
	})
}

// CategoryLoaders lists submenu loaders keyed by root item ID.
func CategoryLoaders() map[string]Loader {
	return map[string]Loader{
		"open":     loadOpenMenu,
		"view":     loadViewMenu,
		"plans":    loadPlansMenu,
		"elements": loadElementsMenu,
		"checks":   loadChecksMenu,
	}
}

// ActionHandlers maps submenu identifiers to their execution logic.
func ActionHandlers() map[string]Action {
	return map[string]Action{
		"open:file":     OpenFileAction,
		"open:recent":   OpenRecentAction,
		"open:reload":   ReloadAction,
		"view:full":     ShowFullModelAction,
		"view:spaces":   ShowSpacesAction,
		"view:nav-mesh": ShowNavMeshAction,
		"plans":         GoToPlanAction,
		"elements":      PickAction,
		"checks":        RunCheckAction,
	}
}

// ActionLoaders enumerates loaders for nested submenu actions.
func ActionLoaders() map[string]Loader {
	return map[string]Loader{
		"open:recent": loadRecentMenu,
	}
}

func menuItemsFromIDs(ids []string) []Item {
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, Item{ID: id, Label: prettyLabel(id)})
	}
	return items
}

func prettyLabel(id string) string {
	if id == "" {
		return id
	}
	parts := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
