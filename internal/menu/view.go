package menu

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

var errNoSession = errors.New("no viewer session")

func loadViewMenu(Context) ([]Item, error) {
	return []Item{
		{ID: "full", Label: "Full model"},
		{ID: "spaces", Label: "Spaces"},
		{ID: "nav-mesh", Label: "Nav-mesh items"},
	}, nil
}

func ShowFullModelAction(ctx Context, item Item) tea.Cmd {
	return viewCommand(ctx, "Showing full model", func(c context.Context) error {
		return ctx.Session.ShowFullModel(c)
	})
}

func ShowSpacesAction(ctx Context, item Item) tea.Cmd {
	return viewCommand(ctx, "Showing spaces", func(c context.Context) error {
		return ctx.Session.ShowSpaces(c)
	})
}

func ShowNavMeshAction(ctx Context, item Item) tea.Cmd {
	return viewCommand(ctx, "Showing nav-mesh items", func(c context.Context) error {
		return ctx.Session.ShowNavMeshItems(c)
	})
}

func viewCommand(ctx Context, info string, run func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if ctx.Session == nil {
			return errorResult(errNoSession)
		}
		if err := run(context.Background()); err != nil {
			return errorResult(err)
		}
		return ActionResult{Info: info}
	}
}
