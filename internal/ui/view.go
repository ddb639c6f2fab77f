package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/atomicstack/bimview/internal/session"
)

const (
	panelMaxInlineLines = 12  // used by the inline (vertical) panel only
	panelMinWidth       = 40  // minimum cols for the side panel; below this no split
	panelFraction       = 0.5 // fraction of total width given to the side panel
	bottomBarRows       = 2   // status line + filter prompt
)

const footerText = "↑/↓ move  enter select  tab mark  ctrl+p properties  esc back  ctrl+c quit"

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
}

// hasSidePanel reports whether the properties panel is rendered to the right
// of the menu rather than inline below the items.
func (m *Model) hasSidePanel() bool {
	return m.panel != nil && m.sidePanelWidth() > 0
}

// sidePanelWidth returns the width in columns for the right-hand panel, or 0
// when the terminal is too narrow to split.
func (m *Model) sidePanelWidth() int {
	if m.width <= 0 {
		return 0
	}
	w := int(float64(m.width) * panelFraction)
	if w < panelMinWidth {
		return 0
	}
	return w
}

func (m *Model) menuColumnWidth() int {
	return m.width - m.sidePanelWidth()
}

// View implements tea.Model.
func (m *Model) View() string {
	header := m.menuHeader()
	if m.mode == ModeOpenForm && m.openForm != nil {
		return m.viewOpenFormWithHeader(header)
	}
	if m.hasSidePanel() {
		return m.viewSideBySide(header)
	}
	return m.viewVertical(header)
}

// menuLines renders the header, visible items, info and footer for a column
// of the given width.
func (m *Model) menuLines(header string, width int) []styledLine {
	lines := make([]styledLine, 0, 16)
	if header != "" {
		lines = append(lines, styledLine{text: header, style: styles.Header})
	}
	if current := m.currentLevel(); current != nil {
		m.syncViewport(current)
		start := 0
		displayItems := current.Items
		if maxItems := m.maxVisibleItems(); maxItems > 0 && len(displayItems) > maxItems {
			start = min(max(current.ViewportOffset, 0), len(displayItems)-maxItems)
			current.ViewportOffset = start
			displayItems = displayItems[start : start+maxItems]
		}
		if len(current.Items) == 0 {
			msg := "(no entries)"
			if current.Filter != "" {
				msg = fmt.Sprintf("No matches for %q", current.Filter)
			}
			lines = append(lines, styledLine{text: msg, style: styles.Info})
		}
		for i, item := range displayItems {
			lines = append(lines, m.buildItemLine(item.ID, item.Label, start+i, current, width))
		}
	}
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{}, styledLine{text: info, style: styles.Info})
	}
	if m.showFooter {
		lines = append(lines, styledLine{}, styledLine{text: footerText, style: styles.Footer})
	}
	return lines
}

// viewVertical is the single-column layout with the panel, when open, shown
// inline below the menu items.
func (m *Model) viewVertical(header string) string {
	lines := m.menuLines(header, m.width)
	if m.panel != nil {
		lines = append(lines, styledLine{}, styledLine{text: m.panel.title, style: styles.PanelTitle})
		lines = append(lines, m.inlinePanelLines()...)
	}
	lines = limitHeight(lines, m.height-bottomBarRows, m.width)
	lines = applyWidth(lines, m.width)
	lines = append(lines, applyWidth(m.bottomBar(), m.width)...)
	return renderLines(lines)
}

func (m *Model) inlinePanelLines() []styledLine {
	switch {
	case m.panel.err != "":
		return []styledLine{{text: m.panel.err, style: styles.PanelError}}
	case m.panel.loading:
		return []styledLine{{text: "Loading…", style: styles.Loading}}
	}
	body := m.panel.lines
	start := min(m.panel.scrollOffset, max(len(body)-panelMaxInlineLines, 0))
	end := min(start+panelMaxInlineLines, len(body))
	out := make([]styledLine, 0, end-start)
	for _, line := range body[start:end] {
		out = append(out, styledLine{text: line, style: styles.PanelBody})
	}
	return out
}

// viewSideBySide renders the menu on the left and the panel on the right.
func (m *Model) viewSideBySide(header string) string {
	menuW := m.menuColumnWidth()
	panelW := m.sidePanelWidth()

	contentLines := m.menuLines(header, menuW)
	panelH := max(m.height-bottomBarRows, 1)
	if len(contentLines) > panelH {
		contentLines = contentLines[:panelH]
	}
	for len(contentLines) < panelH {
		contentLines = append(contentLines, styledLine{})
	}
	contentLines = applyWidth(contentLines, menuW)
	leftRows := strings.Split(renderLines(contentLines), "\n")
	for i, row := range leftRows {
		w := lipgloss.Width(row)
		if w > menuW {
			leftRows[i] = truncate.StringWithTail(row, uint(menuW-1), "…")
		} else if w < menuW {
			leftRows[i] = row + strings.Repeat(" ", menuW-w)
		}
	}

	rightStr := m.renderPanel(panelW, panelH)
	top := lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(leftRows, "\n"), rightStr)
	return top + "\n" + renderLines(applyWidth(m.bottomBar(), m.width))
}

// bottomBar returns the status line and the filter prompt.
func (m *Model) bottomBar() []styledLine {
	promptText, _ := m.filterPrompt()
	return []styledLine{m.statusLine(), {text: promptText}}
}

func (m *Model) statusLine() styledLine {
	if m.errMsg != "" {
		return styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.Error}
	}
	if m.loading {
		return styledLine{text: fmt.Sprintf("Loading %s…", m.pendingLabel), style: styles.Loading}
	}
	if warn, msg := m.hasBackendIssue(); warn {
		return styledLine{text: fmt.Sprintf("Watcher: %s", msg), style: styles.Error}
	}
	return styledLine{text: m.modelSummary(), style: styles.Status}
}

// modelSummary describes the loaded model, visible layer, plan and
// selection on one line.
func (m *Model) modelSummary() string {
	snap := m.model.Snapshot()
	if snap.Model == nil {
		return "No model loaded"
	}
	name := snap.Model.Name
	if name == "" {
		name = filepath.Base(snap.Model.Path)
	}
	parts := []string{name}
	if snap.ActiveLabel != "" {
		parts = append(parts, snap.ActiveLabel)
	}
	if plan := currentPlanName(snap); plan != "" {
		parts = append(parts, "plan "+plan)
	}
	if snap.Selection != nil {
		parts = append(parts, fmt.Sprintf("#%d selected", snap.Selection.ElementID))
	}
	if m.verbose {
		parts = append(parts, "session "+snap.SessionID)
	}
	return strings.Join(parts, " · ")
}

func currentPlanName(snap session.Snapshot) string {
	if snap.CurrentPlan == "" {
		return ""
	}
	for i, id := range snap.Plans {
		if id == snap.CurrentPlan && i < len(snap.PlanNames) {
			return snap.PlanNames[i]
		}
	}
	return snap.CurrentPlan
}

// buildItemLine constructs a single styledLine for a menu item.
// width is the target column width; when > 0 the text is padded so that
// the selected item's background spans the full container.
func (m *Model) buildItemLine(id, label string, idx int, current *level, width int) styledLine {
	indicator := "▌"
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	selectDisplay := ""
	if current.MultiSelect {
		mark := " "
		if current.IsSelected(id) {
			mark = "✓"
		}
		selectDisplay = fmt.Sprintf("[%s] ", mark)
	}
	if idx == current.Cursor {
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	fullText := indicator + " " + selectDisplay + label
	if width > 0 {
		if pad := width - lipgloss.Width(fullText); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1,
	}
}

// renderPanel builds the bordered properties box with exactly height rows
// and totalWidth columns.
func (m *Model) renderPanel(totalWidth, height int) string {
	const (
		tlc = "╭"
		trc = "╮"
		blc = "╰"
		brc = "╯"
		hz  = "─"
		vt  = "│"
	)

	innerW := max(totalWidth-2, 1)
	innerH := max(height-2, 1)

	titleSeg := " " + m.panel.title + " "
	scrollSeg := ""
	var contentLines []string
	bodyStyle := styles.PanelBody

	switch {
	case m.panel.err != "":
		contentLines = []string{m.panel.err}
		bodyStyle = styles.PanelError
	case m.panel.loading:
		contentLines = []string{"Loading…"}
	default:
		m.scrollPanel(0, innerH)
		end := min(m.panel.scrollOffset+innerH, len(m.panel.lines))
		contentLines = m.panel.lines[m.panel.scrollOffset:end]
		if len(m.panel.lines) > innerH {
			scrollSeg = fmt.Sprintf(" %d/%d ", end, len(m.panel.lines))
		}
	}

	dashes := totalWidth - 4 - lipgloss.Width(titleSeg) - lipgloss.Width(scrollSeg)
	if dashes < 0 {
		scrollSeg = ""
		dashes = totalWidth - 4 - lipgloss.Width(titleSeg)
	}
	if dashes < 0 {
		titleSeg = " … "
		dashes = max(totalWidth-4-lipgloss.Width(titleSeg), 0)
	}
	border := styles.PanelBorder
	rows := make([]string, 0, height)
	rows = append(rows, border.Render(tlc+hz)+
		styles.PanelTitle.Render(titleSeg)+
		border.Render(strings.Repeat(hz, dashes))+
		styles.PanelScroll.Render(scrollSeg)+
		border.Render(hz+trc))
	for i := 0; i < innerH; i++ {
		content := ""
		if i < len(contentLines) {
			content = contentLines[i]
		}
		w := lipgloss.Width(content)
		if w > innerW {
			content = truncate.StringWithTail(content, uint(innerW-1), "…")
			w = lipgloss.Width(content)
		}
		if w < innerW {
			content += strings.Repeat(" ", innerW-w)
		}
		rows = append(rows, border.Render(vt)+bodyStyle.Render(content)+border.Render(vt))
	}
	rows = append(rows, border.Render(blc+strings.Repeat(hz, innerW)+brc))
	return strings.Join(rows, "\n")
}

// panelBodyRows is the number of panel lines visible in the current layout.
func (m *Model) panelBodyRows() int {
	if m.hasSidePanel() {
		return max(m.height-bottomBarRows-2, 1)
	}
	return panelMaxInlineLines
}

// handleMouseMsg scrolls the panel with the mouse wheel.
func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	ev, ok := msg.(tea.MouseMsg)
	if !ok || m.panel == nil {
		return nil
	}
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		m.scrollPanel(-3, m.panelBodyRows())
	case tea.MouseButtonWheelDown:
		m.scrollPanel(3, m.panelBodyRows())
	}
	return nil
}

func (m *Model) menuHeader() string {
	segments := m.headerSegments()
	if len(segments) == 0 {
		return ""
	}
	return strings.Join(segments, menuHeaderSeparator)
}

func (m *Model) headerSegments() []string {
	depth := len(m.stack)
	if depth == 0 {
		return nil
	}
	root := strings.TrimSpace(m.rootTitle)
	if root == "" {
		root = defaultRootTitle
	}
	if depth == 1 {
		return []string{root}
	}
	segments := make([]string, 0, depth)
	if m.rootMenuID != "" {
		segments = append(segments, root)
	}
	for i := 1; i < depth; i++ {
		segment := headerSegmentForLevel(m.stack[i])
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
	}
	if len(segments) == 0 {
		return []string{root}
	}
	return segments
}

func headerSegmentForLevel(l *level) string {
	if l == nil {
		return ""
	}
	candidate := strings.TrimSpace(l.ID)
	if candidate == "" {
		candidate = strings.TrimSpace(l.Title)
	}
	if idx := strings.LastIndex(candidate, ":"); idx >= 0 {
		candidate = candidate[idx+1:]
	}
	candidate = headerSegmentCleaner.Replace(candidate)
	fields := strings.Fields(strings.ToLower(candidate))
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	if current := m.currentLevel(); current != nil {
		m.syncViewport(current)
	}
	return nil
}

func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	used := bottomBarRows
	if header := m.menuHeader(); header != "" {
		used++
	}
	if info := m.currentInfo(); info != "" {
		used += 2
	}
	if m.showFooter {
		used += 2
	}
	if m.panel != nil && !m.hasSidePanel() {
		used += 2 // blank separator + title line
		switch {
		case m.panel.err != "", m.panel.loading:
			used++
		default:
			used += min(len(m.panel.lines), panelMaxInlineLines)
		}
	}
	return max(m.height-used, 1)
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) clearInfo() {
	if m.infoMsg == "" {
		return
	}
	if !m.infoExpire.IsZero() && time.Now().Before(m.infoExpire) {
		return
	}
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		line.text = truncateText(line.text, width)
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

// truncateText cuts text to width terminal cells, marking the cut with "…".
// The filter prompt carries ANSI escapes, so widths are measured with
// lipgloss and cut with reflow.
func truncateText(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	if width == 1 {
		return truncate.String(text, 1)
	}
	return truncate.StringWithTail(text, uint(width), "…")
}
