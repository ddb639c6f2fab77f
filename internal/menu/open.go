package menu

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/bimview/internal/format/table"
	"github.com/atomicstack/bimview/internal/logging/events"
	"github.com/atomicstack/bimview/internal/storage/sqlite"
)

func loadOpenMenu(ctx Context) ([]Item, error) {
	ids := []string{"file", "recent"}
	if ctx.Snapshot.Model != nil {
		ids = append(ids, "reload")
	}
	return menuItemsFromIDs(ids), nil
}

func loadRecentMenu(ctx Context) ([]Item, error) {
	return RecentItems(ctx.Recent), nil
}

// OpenFileAction asks for a path to load.
func OpenFileAction(ctx Context, item Item) tea.Cmd {
	initial := ""
	if ctx.Snapshot.Model != nil && ctx.Snapshot.Model.Path != "" {
		initial = filepath.Dir(ctx.Snapshot.Model.Path) + string(filepath.Separator)
	}
	return func() tea.Msg {
		events.Open.Prompt(initial)
		return OpenPrompt{Context: ctx, Initial: initial}
	}
}

// OpenRecentAction loads a recently opened project.
func OpenRecentAction(ctx Context, item Item) tea.Cmd {
	path := strings.TrimSpace(item.ID)
	if path == "" {
		return func() tea.Msg { return errorResult(fmt.Errorf("invalid project path")) }
	}
	return func() tea.Msg {
		events.Open.Recent(path)
		return loadPaths(ctx, path)
	}
}

// ReloadAction loads the current model file again.
func ReloadAction(ctx Context, item Item) tea.Cmd {
	return func() tea.Msg {
		if ctx.Session == nil {
			return errorResult(errNoSession)
		}
		model, err := ctx.Session.Reload(context.Background())
		if err != nil {
			return errorResult(err)
		}
		if model == nil {
			return ActionResult{Info: "No model to reload"}
		}
		return ActionResult{Info: fmt.Sprintf("Reloaded %s", model.Name)}
	}
}

// OpenCommand loads the given paths into the session.
func OpenCommand(ctx Context, paths ...string) tea.Cmd {
	return func() tea.Msg {
		return loadPaths(ctx, paths...)
	}
}

func loadPaths(ctx Context, paths ...string) ActionResult {
	if ctx.Session == nil {
		return errorResult(errNoSession)
	}
	model, err := ctx.Session.LoadFiles(context.Background(), paths...)
	if err != nil {
		return errorResult(err)
	}
	if model == nil {
		return ActionResult{Info: "Nothing to open"}
	}
	return ActionResult{Info: fmt.Sprintf("Loaded %s (%d elements)", model.Name, len(model.ElementIDs))}
}

// RecentEntriesFromStore converts stored projects into menu entries.
func RecentEntriesFromStore(projects []sqlite.Project) []RecentEntry {
	entries := make([]RecentEntry, 0, len(projects))
	for _, p := range projects {
		entries = append(entries, RecentEntry{
			Path:      p.Path,
			Name:      p.Name,
			Schema:    p.Schema,
			Elements:  p.Elements,
			OpenCount: p.OpenCount,
			OpenedAt:  p.OpenedAt,
		})
	}
	return entries
}

// RecentItems formats recent projects as a table, most recent first.
func RecentItems(entries []RecentEntry) []Item {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]string, 0, len(entries))
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = filepath.Base(e.Path)
		}
		opened := ""
		if !e.OpenedAt.IsZero() {
			opened = e.OpenedAt.Local().Format("2006-01-02 15:04")
		}
		ids = append(ids, e.Path)
		rows = append(rows, []string{name, e.Schema, fmt.Sprintf("%d elements", e.Elements), opened})
	}
	return tableItems(ids, rows, []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignRight, table.AlignLeft})
}

// OpenForm collects a model path.
type OpenForm struct {
	input textinput.Model
	ctx   Context
	err   string
	stat  func(string) (os.FileInfo, error)
}

// NewOpenForm builds the form for prompt.
func NewOpenForm(prompt OpenPrompt) *OpenForm {
	ti := textinput.New()
	ti.Placeholder = "path/to/model.ifc"
	ti.CharLimit = 1024
	ti.Focus()
	if prompt.Initial != "" {
		ti.SetValue(prompt.Initial)
		ti.CursorEnd()
	}
	return &OpenForm{input: ti, ctx: prompt.Context, stat: os.Stat}
}

func (f *OpenForm) Context() Context  { return f.ctx }
func (f *OpenForm) Value() string     { return strings.TrimSpace(f.input.Value()) }
func (f *OpenForm) InputView() string { return f.input.View() }
func (f *OpenForm) Error() string     { return f.err }
func (f *OpenForm) Title() string     { return "Open Model" }
func (f *OpenForm) Help() string      { return "Press Enter to load. Esc to cancel." }
func (f *OpenForm) ActionID() string  { return "open:file" }

// SetCursorMode switches the caret between blinking and static.
func (f *OpenForm) SetCursorMode(mode cursor.Mode) tea.Cmd {
	return f.input.Cursor.SetMode(mode)
}

func (f *OpenForm) PendingLabel() string {
	if v := f.Value(); v != "" {
		return filepath.Base(v)
	}
	return f.ActionID()
}

// Update handles a message. It returns the command to run, whether the
// form was submitted and whether it was cancelled.
func (f *OpenForm) Update(msg tea.Msg) (tea.Cmd, bool, bool) {
	if m, ok := msg.(tea.KeyMsg); ok {
		switch m.String() {
		case "ctrl+u":
			if f.input.Value() != "" {
				f.input.SetValue("")
				f.input.CursorStart()
				f.err = ""
			}
			return nil, false, false
		}
		switch m.Type {
		case tea.KeyEsc:
			events.Open.Cancel(events.OpenReasonEscape)
			return nil, false, true
		case tea.KeyEnter:
			value := f.Value()
			if value == "" {
				events.Open.Cancel(events.OpenReasonEmpty)
				return nil, false, true
			}
			if err := f.validatePath(value); err != "" {
				f.err = err
				return nil, false, false
			}
			f.err = ""
			events.Open.Submit(value)
			return OpenCommand(f.ctx, value), true, false
		}
	}

	updated, cmd := f.input.Update(msg)
	f.input = updated
	f.err = ""
	return cmd, false, false
}

func (f *OpenForm) validatePath(p string) string {
	if strings.Contains(p, "://") {
		return ""
	}
	info, err := f.stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "File not found"
		}
		return err.Error()
	}
	if info.IsDir() {
		return "Path is a directory"
	}
	return ""
}
