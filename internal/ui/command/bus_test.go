package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/bimview/internal/menu"
)

func TestExecuteRunsHandler(t *testing.T) {
	bus := New()
	var got menu.Item
	handler := func(_ menu.Context, item menu.Item) tea.Cmd {
		got = item
		return func() tea.Msg { return menu.ActionResult{Info: "done"} }
	}
	cmd := bus.Execute(menu.Context{}, Request{ID: "plans", Label: "Level 1", Handler: handler, Item: menu.Item{ID: "42"}})
	msg := cmd()
	res, ok := msg.(menu.ActionResult)
	if !ok || res.Info != "done" {
		t.Fatalf("unexpected message %#v", msg)
	}
	if got.ID != "42" {
		t.Fatalf("handler saw item %#v", got)
	}
}

func TestExecuteWithoutHandler(t *testing.T) {
	cmd := New().Execute(menu.Context{}, Request{ID: "x"})
	if msg := cmd(); msg != nil {
		t.Fatalf("expected nil message, got %#v", msg)
	}
}

func TestExecuteHandlerReturningNil(t *testing.T) {
	handler := func(menu.Context, menu.Item) tea.Cmd { return nil }
	cmd := New().Execute(menu.Context{}, Request{ID: "x", Handler: handler})
	if msg := cmd(); msg != nil {
		t.Fatalf("expected nil message, got %#v", msg)
	}
}

func TestRunNilCommand(t *testing.T) {
	if cmd := New().Run("x", "x", nil); cmd != nil {
		t.Fatalf("expected nil command")
	}
}
