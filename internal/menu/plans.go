package menu

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/bimview/internal/format/table"
	"github.com/atomicstack/bimview/internal/session"
)

func loadPlansMenu(ctx Context) ([]Item, error) {
	return PlanItems(PlanEntriesFromSnapshot(ctx.Snapshot)), nil
}

// PlanEntriesFromSnapshot lists the floor plans of a snapshot. Before any
// model is loaded the catalog holds only its placeholder, which is not a
// plan.
func PlanEntriesFromSnapshot(snap session.Snapshot) []PlanEntry {
	if !snap.PlansLoaded {
		return nil
	}
	entries := make([]PlanEntry, 0, len(snap.Plans))
	for i, id := range snap.Plans {
		name := id
		if i < len(snap.PlanNames) && snap.PlanNames[i] != "" {
			name = snap.PlanNames[i]
		}
		entries = append(entries, PlanEntry{ID: id, Name: name, Current: id == snap.CurrentPlan})
	}
	return entries
}

// PlanItems formats plans as name, id and a current marker.
func PlanItems(entries []PlanEntry) []Item {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]string, 0, len(entries))
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		current := ""
		if e.Current {
			current = "current"
		}
		ids = append(ids, e.ID)
		rows = append(rows, []string{e.Name, "#" + e.ID, current})
	}
	return tableItems(ids, rows, []table.Alignment{table.AlignLeft, table.AlignRight, table.AlignLeft})
}

// GoToPlanAction moves the view to the chosen floor plan.
func GoToPlanAction(ctx Context, item Item) tea.Cmd {
	id := strings.TrimSpace(item.ID)
	if id == "" {
		return func() tea.Msg { return errorResult(fmt.Errorf("invalid plan")) }
	}
	label := strings.TrimSpace(item.Label)
	for _, e := range PlanEntriesFromSnapshot(ctx.Snapshot) {
		if e.ID == id {
			label = e.Name
			break
		}
	}
	return func() tea.Msg {
		if ctx.Session == nil {
			return errorResult(errNoSession)
		}
		if err := ctx.Session.GoToPlan(context.Background(), id); err != nil {
			return errorResult(err)
		}
		return ActionResult{Info: fmt.Sprintf("Plan %s", label)}
	}
}
