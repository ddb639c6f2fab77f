package command

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/bimview/internal/logging/events"
	"github.com/atomicstack/bimview/internal/menu"
)

// Request encapsulates an action invocation.
type Request struct {
	ID      string
	Label   string
	Handler menu.Action
	Item    menu.Item
}

// Bus coordinates the execution of menu actions.
type Bus struct{}

// New initialises a command bus instance.
func New() *Bus {
	return &Bus{}
}

// Execute wraps a menu action into a Bubble Tea command while emitting trace logs.
func (b *Bus) Execute(ctx menu.Context, req Request) tea.Cmd {
	events.Command.Queue(req.ID, req.Label)
	return func() tea.Msg {
		if req.Handler == nil {
			events.Command.Skip(req.ID, req.Label)
			return nil
		}
		cmd := req.Handler(ctx, req.Item)
		if cmd == nil {
			events.Command.NoOp(req.ID, req.Label)
			return nil
		}
		msg := cmd()
		events.Command.Result(req.ID, req.Label, fmt.Sprintf("%T", msg))
		return msg
	}
}

// Run wraps a ready-made command that did not come from a menu node, such
// as the properties lookup or loading the files named on the command line.
func (b *Bus) Run(id, label string, cmd tea.Cmd) tea.Cmd {
	events.Command.Queue(id, label)
	if cmd == nil {
		events.Command.Skip(id, label)
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		events.Command.Result(id, label, fmt.Sprintf("%T", msg))
		return msg
	}
}
