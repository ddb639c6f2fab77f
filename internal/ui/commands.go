package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/bimview/internal/backend"
	"github.com/atomicstack/bimview/internal/logging"
	"github.com/atomicstack/bimview/internal/logging/events"
	"github.com/atomicstack/bimview/internal/menu"
)

func (m *Model) handleActionResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(menu.ActionResult)
	if !ok {
		return nil
	}
	m.loading = false
	m.pendingID = ""
	m.pendingLabel = ""
	cmd := m.syncFromSession()
	if result.Err != nil {
		m.errMsg = result.Err.Error()
		m.forceClearInfo()
		events.Action.Error(result.Err)
		return cmd
	}
	m.errMsg = ""
	if result.Info != "" {
		m.setInfo(result.Info)
	} else {
		m.forceClearInfo()
	}
	events.Action.Success(result.Info)
	return cmd
}

// syncFromSession feeds the current session state through the dispatcher so
// the menus reflect an action without waiting for the watcher.
func (m *Model) syncFromSession() tea.Cmd {
	if m.session == nil {
		return nil
	}
	snap := m.session.Snapshot()
	cmd := m.applyBackendEvent(backend.Event{Kind: backend.KindSnapshot, Data: snap})
	modelID := -1
	if snap.Model != nil {
		modelID = snap.Model.ID
	}
	if modelID != m.elements.ModelID() {
		update := backend.ElementsUpdate{ModelID: modelID}
		if modelID >= 0 {
			update.Elements = m.session.Elements()
		}
		if next := m.applyBackendEvent(backend.Event{Kind: backend.KindElements, Data: update}); next != nil {
			cmd = tea.Batch(cmd, next)
		}
	}
	return cmd
}

func (m *Model) loadMenuCmd(id, title string, loader menu.Loader) tea.Cmd {
	ctx := m.menuContext()
	return func() tea.Msg {
		items, err := loader(ctx)
		if err != nil {
			logging.Error(err)
		}
		return categoryLoadedMsg{id: id, title: title, items: items, err: err}
	}
}

// categoryLoadedMsg mirrors the async loader response.
type categoryLoadedMsg struct {
	id    string
	title string
	items []menu.Item
	err   error
}

func (m *Model) menuContext() menu.Context {
	ctx := menu.Context{
		Session:  m.session,
		Snapshot: m.model.Snapshot(),
		Elements: m.elements.Entries(),
		Recent:   m.recent.Entries(),
	}
	if m.session != nil {
		ctx.Checks = m.session.Checks()
	}
	return ctx
}
