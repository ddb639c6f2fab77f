package menu

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"

	"github.com/atomicstack/bimview/internal/format/table"
	"github.com/atomicstack/bimview/internal/viewer"
)

func loadElementsMenu(ctx Context) ([]Item, error) {
	return ElementItems(ctx.Elements), nil
}

// ElementEntriesFromViewer converts viewer rows into menu entries.
func ElementEntriesFromViewer(elements []viewer.Element) []ElementEntry {
	entries := make([]ElementEntry, 0, len(elements))
	for _, el := range elements {
		entries = append(entries, ElementEntry{ID: el.ID, Type: el.Type, Name: el.Name})
	}
	return entries
}

// ElementItems formats elements as id, type and name columns.
func ElementItems(entries []ElementEntry) []Item {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]string, 0, len(entries))
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, strconv.Itoa(e.ID))
		rows = append(rows, []string{"#" + strconv.Itoa(e.ID), strings.TrimPrefix(e.Type, "IFC"), e.Name})
	}
	return tableItems(ids, rows, []table.Alignment{table.AlignRight, table.AlignLeft, table.AlignLeft})
}

// ElementID parses the element id of an elements menu item.
func ElementID(item Item) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(item.ID))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// PickAction picks the element under the pointer. With several elements
// marked it highlights all of them instead.
func PickAction(ctx Context, item Item) tea.Cmd {
	if strings.Contains(item.ID, "\n") {
		return highlightCommand(ctx, item)
	}
	return func() tea.Msg {
		if ctx.Session == nil {
			return errorResult(errNoSession)
		}
		ref, ok, err := ctx.Session.Pick(context.Background())
		if err != nil {
			return errorResult(err)
		}
		if !ok {
			return ActionResult{Info: "Nothing to pick under the pointer"}
		}
		return ActionResult{Info: fmt.Sprintf("Selected #%d", ref.ElementID)}
	}
}

// ClearPicksAction drops every highlight and the current selection.
func ClearPicksAction(ctx Context, item Item) tea.Cmd {
	return func() tea.Msg {
		if ctx.Session == nil {
			return errorResult(errNoSession)
		}
		ctx.Session.ClearPicks()
		return ActionResult{Info: "Cleared selection"}
	}
}

func highlightCommand(ctx Context, item Item) tea.Cmd {
	ids, err := parseElementIDs(item.ID)
	if err != nil {
		return func() tea.Msg { return errorResult(err) }
	}
	return func() tea.Msg {
		if ctx.Session == nil {
			return errorResult(errNoSession)
		}
		if err := ctx.Session.Highlight(context.Background(), ids); err != nil {
			return errorResult(err)
		}
		return ActionResult{Info: fmt.Sprintf("Highlighted %d elements", len(ids))}
	}
}

// PropertiesCommand reads the properties of the selected element and
// renders them as indented JSON.
func PropertiesCommand(ctx Context) tea.Cmd {
	return func() tea.Msg {
		if ctx.Session == nil {
			return PropertiesResult{Err: errNoSession}
		}
		props, err := ctx.Session.Properties(context.Background())
		if err != nil {
			return PropertiesResult{Err: err}
		}
		if props == nil {
			return PropertiesResult{Title: "Properties", Body: "Nothing selected."}
		}
		body, err := RenderProperties(props)
		if err != nil {
			return PropertiesResult{Err: err}
		}
		title := fmt.Sprintf("#%d %s", props.ExpressID, props.Type)
		return PropertiesResult{Title: title, Body: body}
	}
}

// RenderProperties formats props as indented JSON.
func RenderProperties(props *viewer.Properties) (string, error) {
	data, err := json.MarshalIndent(props, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render properties: %w", err)
	}
	return string(data), nil
}
