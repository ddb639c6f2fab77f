package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/bimview/internal/menu"
)

func (m *Model) handleOpenForm(msg tea.Msg) (bool, tea.Cmd) {
	if m.openForm == nil {
		return false, nil
	}
	if _, ok := msg.(tea.KeyMsg); !ok {
		// Results and backend events still reach their handlers.
		if m.handlerFor(msg) != nil {
			return false, nil
		}
	}
	cmd, done, cancel := m.openForm.Update(msg)
	if cancel {
		m.openForm = nil
		m.mode = ModeMenu
		return true, cmd
	}
	if done {
		actionID := m.openForm.ActionID()
		pendingLabel := m.openForm.PendingLabel()
		if cmd == nil {
			cmd = menu.OpenCommand(m.openForm.Context(), m.openForm.Value())
		}
		m.openForm = nil
		m.mode = ModeMenu
		m.loading = true
		m.pendingID = actionID
		m.pendingLabel = pendingLabel
		return true, m.bus.Run(actionID, pendingLabel, cmd)
	}
	if cmd != nil {
		return true, cmd
	}
	return true, nil
}

func (m *Model) startOpenForm(prompt menu.OpenPrompt) tea.Cmd {
	m.openForm = menu.NewOpenForm(prompt)
	m.mode = ModeOpenForm
	return m.openForm.SetCursorMode(m.cursorMode)
}

func (m *Model) viewOpenFormWithHeader(header string) string {
	lines := []string{}
	if header != "" {
		lines = append(lines, header)
	}
	lines = append(lines, m.openForm.Title(), "", m.openForm.InputView())
	if err := m.openForm.Error(); err != "" {
		lines = append(lines, "", styles.Error.Render(err))
	}
	lines = append(lines, "", m.openForm.Help())
	return strings.Join(lines, "\n")
}
