package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/bimview/internal/menu"
)

type promptResult struct {
	Cmd  tea.Cmd
	Info string
	Err  error
}

// withPrompt centralises the common prompt flow: reset the pending state and
// execute the provided action. The action can return a promptResult to
// control follow-up behaviour (command to run, informational message, or
// error).
func (m *Model) withPrompt(action func() promptResult) tea.Cmd {
	m.loading = false
	m.pendingID = ""
	m.pendingLabel = ""
	m.forceClearInfo()
	m.errMsg = ""
	if action == nil {
		return nil
	}
	result := action()
	if result.Err != nil {
		m.errMsg = result.Err.Error()
		return nil
	}
	if result.Info != "" {
		m.setInfo(result.Info)
	}
	return result.Cmd
}

func (m *Model) handleOpenPromptMsg(msg tea.Msg) tea.Cmd {
	prompt, ok := msg.(menu.OpenPrompt)
	if !ok {
		return nil
	}
	return m.withPrompt(func() promptResult {
		return promptResult{Cmd: m.startOpenForm(prompt)}
	})
}
