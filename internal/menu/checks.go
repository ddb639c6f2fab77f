package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/bimview/internal/checks"
	"github.com/atomicstack/bimview/internal/format/table"
	"github.com/atomicstack/bimview/internal/session"
)

func loadChecksMenu(ctx Context) ([]Item, error) {
	return CheckItems(ctx.Checks), nil
}

// CheckItems formats checks as label, element and plan columns.
func CheckItems(list []checks.Check) []Item {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list))
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		label := c.Label
		if label == "" {
			label = prettyLabel(c.Name)
		}
		ids = append(ids, c.Name)
		rows = append(rows, []string{label, fmt.Sprintf("#%d", c.Element), "plan " + c.Plan})
	}
	return tableItems(ids, rows, []table.Alignment{table.AlignLeft, table.AlignRight, table.AlignLeft})
}

// RunCheckAction runs the chosen check.
func RunCheckAction(ctx Context, item Item) tea.Cmd {
	name := strings.TrimSpace(item.ID)
	if name == "" {
		return func() tea.Msg { return errorResult(fmt.Errorf("invalid check")) }
	}
	return func() tea.Msg {
		if ctx.Session == nil {
			return errorResult(errNoSession)
		}
		ref, err := ctx.Session.RunCheck(context.Background(), name)
		if err != nil {
			if errors.Is(err, session.ErrExternal) && ref.ElementID > 0 {
				return errorResult(fmt.Errorf("%s selected #%d but: %w", name, ref.ElementID, err))
			}
			return errorResult(err)
		}
		return ActionResult{Info: fmt.Sprintf("%s: selected #%d", name, ref.ElementID)}
	}
}
