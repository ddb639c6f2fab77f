package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/bimview/internal/logging/events"
	"github.com/atomicstack/bimview/internal/menu"
)

// panelData holds the properties shown next to the menu.
type panelData struct {
	title        string
	lines        []string
	err          string
	loading      bool
	elementID    int
	scrollOffset int
}

// toggleProperties opens the properties panel for the selected element, or
// closes it when it is already open.
func (m *Model) toggleProperties() tea.Cmd {
	if m.panel != nil {
		m.panel = nil
		m.syncViewport(m.currentLevel())
		return nil
	}
	m.panel = &panelData{title: "Properties", loading: true}
	return m.requestProperties()
}

func (m *Model) requestProperties() tea.Cmd {
	if m.panel == nil {
		return nil
	}
	m.panel.loading = true
	m.panel.elementID = m.selectedElementID()
	return m.bus.Run("properties", m.panel.title, menu.PropertiesCommand(m.menuContext()))
}

// refreshPanel reloads the panel when the selection moved to another element.
func (m *Model) refreshPanel() tea.Cmd {
	if m.panel == nil || m.panel.loading {
		return nil
	}
	if m.panel.elementID == m.selectedElementID() {
		return nil
	}
	return m.requestProperties()
}

func (m *Model) selectedElementID() int {
	snap := m.model.Snapshot()
	if snap.Selection == nil {
		return 0
	}
	return snap.Selection.ElementID
}

func (m *Model) handlePropertiesResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(menu.PropertiesResult)
	if !ok {
		return nil
	}
	if m.panel == nil {
		return nil
	}
	m.panel.loading = false
	m.panel.scrollOffset = 0
	if result.Err != nil {
		m.panel.err = result.Err.Error()
		m.panel.lines = nil
		events.Action.Error(result.Err)
		return nil
	}
	m.panel.err = ""
	if result.Title != "" {
		m.panel.title = result.Title
	}
	m.panel.lines = strings.Split(strings.TrimRight(result.Body, "\n"), "\n")
	events.UI.Panel("properties", m.panel.title)
	m.syncViewport(m.currentLevel())
	return nil
}

// scrollPanel moves the panel content by delta lines within visible rows.
func (m *Model) scrollPanel(delta, visible int) {
	if m.panel == nil || m.panel.loading {
		return
	}
	maxOffset := max(len(m.panel.lines)-max(visible, 1), 0)
	m.panel.scrollOffset = min(max(m.panel.scrollOffset+delta, 0), maxOffset)
}
