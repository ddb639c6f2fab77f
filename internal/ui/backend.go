package ui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/bimview/internal/backend"
	"github.com/atomicstack/bimview/internal/logging"
	"github.com/atomicstack/bimview/internal/menu"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	cmd := m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		waitCmd := waitForBackendEvent(m.backend)
		if cmd != nil {
			return tea.Batch(cmd, waitCmd)
		}
		return waitCmd
	}
	return cmd
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) tea.Cmd {
	if m.backendState == nil {
		m.backendState = make(map[backend.Kind]error)
	}
	m.backendState[evt.Kind] = evt.Err
	if evt.Err != nil {
		m.backendLastErr = evt.Err.Error()
		return nil
	}

	res := m.dispatcher.Handle(evt)
	var cmds []tea.Cmd

	if res.SessionUpdated {
		m.reloadLevels("open", "plans", "checks")
		if cmd := m.refreshPanel(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if res.ElementsUpdated {
		m.reloadLevels("elements")
	}
	if res.RecentUpdated {
		m.reloadLevels("open:recent")
	}
	if res.Changed != "" {
		if cmd := m.reloadChangedModel(res.Changed); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if warn, _ := m.hasBackendIssue(); !warn {
		m.backendLastErr = ""
	}
	return tea.Batch(cmds...)
}

// reloadLevels runs the loaders of the open levels with the given ids
// against the current stores.
func (m *Model) reloadLevels(ids ...string) {
	ctx := m.menuContext()
	for _, id := range ids {
		lvl := m.findLevelByID(id)
		if lvl == nil || lvl.Node == nil || lvl.Node.Loader == nil {
			continue
		}
		items, err := lvl.Node.Loader(ctx)
		if err != nil {
			logging.Error(err)
			continue
		}
		lvl.UpdateItems(items)
		m.syncViewport(lvl)
	}
}

func (m *Model) reloadChangedModel(path string) tea.Cmd {
	snap := m.model.Snapshot()
	if snap.Model == nil || filepath.Clean(snap.Model.Path) != filepath.Clean(path) {
		return nil
	}
	label := filepath.Base(path)
	m.setInfo("Model changed on disk, reloading " + label)
	return m.bus.Run("open:reload", label, menu.ReloadAction(m.menuContext(), menu.Item{ID: "reload", Label: label}))
}

func (m *Model) hasBackendIssue() (bool, string) {
	for _, err := range m.backendState {
		if err != nil {
			msg := m.backendLastErr
			if msg == "" {
				msg = err.Error()
			}
			return true, msg
		}
	}
	return false, ""
}
