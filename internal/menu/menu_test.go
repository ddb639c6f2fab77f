package menu

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/bimview/internal/checks"
	"github.com/atomicstack/bimview/internal/session"
	"github.com/atomicstack/bimview/internal/storage/sqlite"
	"github.com/atomicstack/bimview/internal/subset"
	"github.com/atomicstack/bimview/internal/testutil"
	"github.com/atomicstack/bimview/internal/viewer"
)

var smallIFC = testutil.FixturePath("small.ifc")

func newContext(t *testing.T, load bool) (Context, *viewer.Engine) {
	t.Helper()
	engine := viewer.NewEngine()
	sess, err := session.New(engine)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(sess.Close)
	ctx := Context{Session: sess, Checks: sess.Checks()}
	if load {
		res := runAction(t, OpenCommand(ctx, smallIFC))
		if res.Err != nil {
			t.Fatalf("load: %v", res.Err)
		}
		ctx = refresh(ctx)
	}
	return ctx, engine
}

func refresh(ctx Context) Context {
	ctx.Snapshot = ctx.Session.Snapshot()
	ctx.Elements = ElementEntriesFromViewer(ctx.Session.Elements())
	return ctx
}

func runAction(t *testing.T, cmd tea.Cmd) ActionResult {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected command")
	}
	res, ok := cmd().(ActionResult)
	if !ok {
		t.Fatalf("expected ActionResult")
	}
	return res
}

func TestRootItemsHaveLoaders(t *testing.T) {
	loaders := CategoryLoaders()
	for _, item := range RootItems() {
		if _, ok := loaders[item.ID]; !ok {
			t.Fatalf("root item %q has no loader", item.ID)
		}
	}
}

func TestRegistryWiresNestedNodes(t *testing.T) {
	reg := BuildRegistry()
	recent, ok := reg.Child("open", "recent")
	if !ok {
		t.Fatalf("expected open:recent under open")
	}
	if recent.Loader == nil || recent.Action == nil {
		t.Fatalf("expected open:recent to load and act")
	}
	elements, ok := reg.Find("elements")
	if !ok || !elements.MultiSelect || !elements.Hover {
		t.Fatalf("expected elements to be multi-select and hover")
	}
	if _, ok := reg.Child("root", "plans"); !ok {
		t.Fatalf("expected plans under root")
	}
}

func TestParentKey(t *testing.T) {
	cases := map[string][2]string{
		"":              {"root", ""},
		"plans":         {"root", "plans"},
		"open:recent":   {"open", "recent"},
		"view:nav-mesh": {"view", "nav-mesh"},
	}
	for id, want := range cases {
		parent, key := parentKey(id)
		if parent != want[0] || key != want[1] {
			t.Fatalf("parentKey(%q) = %q, %q", id, parent, key)
		}
	}
}

func TestOpenMenuOffersReloadOnlyWithModel(t *testing.T) {
	ctx, _ := newContext(t, false)
	items, _ := loadOpenMenu(ctx)
	if len(items) != 2 {
		t.Fatalf("expected file and recent, got %v", items)
	}
	ctx, _ = newContext(t, true)
	items, _ = loadOpenMenu(ctx)
	if len(items) != 3 || items[2].ID != "reload" {
		t.Fatalf("expected reload entry, got %v", items)
	}
}

func TestPlansMenuHidesPlaceholder(t *testing.T) {
	ctx, _ := newContext(t, false)
	items, err := loadPlansMenu(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no plans before load, got %v", items)
	}

	ctx, _ = newContext(t, true)
	items, _ = loadPlansMenu(ctx)
	if len(items) != 2 {
		t.Fatalf("expected 2 plans, got %v", items)
	}
	if items[0].ID != "102" || !strings.HasPrefix(items[0].Label, "Ground Floor") {
		t.Fatalf("unexpected first plan %+v", items[0])
	}
}

func TestGoToPlanMarksCurrent(t *testing.T) {
	ctx, engine := newContext(t, true)
	res := runAction(t, GoToPlanAction(ctx, Item{ID: "103"}))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Info != "Plan Level 1" {
		t.Fatalf("unexpected info %q", res.Info)
	}
	if got := engine.CurrentPlan(ctx.Snapshot.Model.ID); got != "103" {
		t.Fatalf("expected engine on plan 103, got %q", got)
	}
	items := PlanItems(PlanEntriesFromSnapshot(ctx.Session.Snapshot()))
	if !strings.HasSuffix(items[1].Label, "current") {
		t.Fatalf("expected current marker on %q", items[1].Label)
	}
}

func TestViewActionsSwitchLayer(t *testing.T) {
	ctx, _ := newContext(t, true)
	if res := runAction(t, ShowSpacesAction(ctx, Item{})); res.Err != nil {
		t.Fatalf("spaces: %v", res.Err)
	}
	if layer := ctx.Session.Snapshot().Layer; layer != subset.LayerSpaces {
		t.Fatalf("expected spaces layer, got %v", layer)
	}
	if res := runAction(t, ShowNavMeshAction(ctx, Item{})); res.Err != nil {
		t.Fatalf("nav-mesh: %v", res.Err)
	}
	if res := runAction(t, ShowFullModelAction(ctx, Item{})); res.Err != nil {
		t.Fatalf("full: %v", res.Err)
	}
	if layer := ctx.Session.Snapshot().Layer; layer != subset.LayerModel {
		t.Fatalf("expected model layer, got %v", layer)
	}
}

func TestViewActionWithoutModelFails(t *testing.T) {
	ctx, _ := newContext(t, false)
	res := runAction(t, ShowSpacesAction(ctx, Item{}))
	if !errors.Is(res.Err, session.ErrNoModel) {
		t.Fatalf("expected ErrNoModel, got %v", res.Err)
	}
}

func TestActionsWithoutSession(t *testing.T) {
	ctx := Context{}
	for name, cmd := range map[string]tea.Cmd{
		"view":   ShowSpacesAction(ctx, Item{}),
		"plan":   GoToPlanAction(ctx, Item{ID: "102"}),
		"pick":   PickAction(ctx, Item{ID: "42"}),
		"check":  RunCheckAction(ctx, Item{ID: checks.Exits}),
		"reload": ReloadAction(ctx, Item{}),
	} {
		if res := runAction(t, cmd); !errors.Is(res.Err, errNoSession) {
			t.Fatalf("%s: expected errNoSession, got %v", name, res.Err)
		}
	}
}

func TestElementItemsFormatColumns(t *testing.T) {
	ctx, _ := newContext(t, true)
	items := ElementItems(ctx.Elements)
	if len(items) == 0 {
		t.Fatalf("expected element items")
	}
	var door *Item
	for i := range items {
		if items[i].ID == "3729" {
			door = &items[i]
		}
	}
	if door == nil {
		t.Fatalf("expected door 3729 in %v", items)
	}
	if !strings.Contains(door.Label, "#3729") || !strings.Contains(door.Label, "DOOR") || !strings.Contains(door.Label, "Exit door") {
		t.Fatalf("unexpected door label %q", door.Label)
	}
	if id, ok := ElementID(*door); !ok || id != 3729 {
		t.Fatalf("unexpected element id %d", id)
	}
	if _, ok := ElementID(Item{ID: "abc"}); ok {
		t.Fatalf("expected invalid id")
	}
}

func TestPickActionUsesPointer(t *testing.T) {
	ctx, _ := newContext(t, true)
	res := runAction(t, PickAction(ctx, Item{ID: "3729"}))
	if res.Err != nil || res.Info != "Nothing to pick under the pointer" {
		t.Fatalf("expected miss without hover, got %+v", res)
	}
	if err := ctx.Session.Hover(3729); err != nil {
		t.Fatalf("hover: %v", err)
	}
	res = runAction(t, PickAction(ctx, Item{ID: "3729"}))
	if res.Err != nil || res.Info != "Selected #3729" {
		t.Fatalf("unexpected result %+v", res)
	}
	if sel := ctx.Session.Snapshot().Selection; sel == nil || sel.ElementID != 3729 {
		t.Fatalf("expected selection 3729, got %v", sel)
	}
}

func TestPickActionHighlightsMultiSelection(t *testing.T) {
	ctx, engine := newContext(t, true)
	res := runAction(t, PickAction(ctx, Item{ID: "300\n301"}))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if got := len(engine.Highlighted()); got != 2 {
		t.Fatalf("expected 2 highlights, got %d", got)
	}
	res = runAction(t, PickAction(ctx, Item{ID: "300\nnope"}))
	if res.Err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRunCheckAction(t *testing.T) {
	ctx, _ := newContext(t, true)
	res := runAction(t, RunCheckAction(ctx, Item{ID: checks.RoomSizes}))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Info != "room-sizes: selected #246" {
		t.Fatalf("unexpected info %q", res.Info)
	}
	res = runAction(t, RunCheckAction(ctx, Item{ID: "nope"}))
	if !errors.Is(res.Err, session.ErrUnknownCheck) {
		t.Fatalf("expected ErrUnknownCheck, got %v", res.Err)
	}
}

func TestCheckItemsFallBackToName(t *testing.T) {
	items := CheckItems([]checks.Check{{Name: "fire-exits", Element: 7, Plan: "102"}})
	if len(items) != 1 || !strings.HasPrefix(items[0].Label, "fire exits") {
		t.Fatalf("unexpected items %v", items)
	}
}

func TestPropertiesCommand(t *testing.T) {
	ctx, _ := newContext(t, true)
	res, ok := PropertiesCommand(ctx)().(PropertiesResult)
	if !ok {
		t.Fatalf("expected PropertiesResult")
	}
	if res.Body != "Nothing selected." {
		t.Fatalf("expected empty selection body, got %q", res.Body)
	}
	runAction(t, RunCheckAction(ctx, Item{ID: checks.RoomSizes}))
	res = PropertiesCommand(ctx)().(PropertiesResult)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Title != "#246 IFCSPACE" {
		t.Fatalf("unexpected title %q", res.Title)
	}
	if !strings.Contains(res.Body, `"name": "Critical Room"`) {
		t.Fatalf("expected name in body %q", res.Body)
	}
}

func TestRecentItems(t *testing.T) {
	opened := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)
	entries := RecentEntriesFromStore([]sqlite.Project{
		{Path: "/models/a.ifc", Schema: "IFC2X3", Elements: 12, OpenedAt: opened},
		{Path: "/models/b.ifc", Name: "Bee", Schema: "IFC4", Elements: 3},
	})
	items := RecentItems(entries)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "/models/a.ifc" || !strings.HasPrefix(items[0].Label, "a.ifc") {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if !strings.Contains(items[0].Label, "2026-03-01 09:30") {
		t.Fatalf("expected open time in %q", items[0].Label)
	}
	if !strings.HasPrefix(items[1].Label, "Bee ") {
		t.Fatalf("unexpected second label %q", items[1].Label)
	}
}

func TestOpenRecentLoadsPath(t *testing.T) {
	ctx, _ := newContext(t, false)
	res := runAction(t, OpenRecentAction(ctx, Item{ID: smallIFC}))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if !strings.HasPrefix(res.Info, "Loaded small.ifc") {
		t.Fatalf("unexpected info %q", res.Info)
	}
	res = runAction(t, OpenRecentAction(ctx, Item{ID: "  "}))
	if res.Err == nil {
		t.Fatalf("expected error for blank path")
	}
}

func TestReloadActionWithoutModel(t *testing.T) {
	ctx, _ := newContext(t, false)
	res := runAction(t, ReloadAction(ctx, Item{}))
	if res.Err != nil || res.Info != "No model to reload" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestOpenFileActionPromptsFromModelDir(t *testing.T) {
	ctx, _ := newContext(t, true)
	msg := OpenFileAction(ctx, Item{})()
	prompt, ok := msg.(OpenPrompt)
	if !ok {
		t.Fatalf("expected OpenPrompt, got %T", msg)
	}
	want := filepath.Dir(filepath.Clean(smallIFC)) + string(filepath.Separator)
	if prompt.Initial != want {
		t.Fatalf("expected initial %q, got %q", want, prompt.Initial)
	}
}

func TestOpenFormValidatesPath(t *testing.T) {
	ctx, _ := newContext(t, false)
	form := NewOpenForm(OpenPrompt{Context: ctx})
	for _, r := range "missing.ifc" {
		form.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	cmd, submitted, cancelled := form.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || submitted || cancelled {
		t.Fatalf("expected form to stay open on missing file")
	}
	if form.Error() != "File not found" {
		t.Fatalf("unexpected error %q", form.Error())
	}

	form.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	if form.Value() != "" {
		t.Fatalf("expected ctrl+u to clear, got %q", form.Value())
	}
	dir := t.TempDir()
	form.input.SetValue(dir)
	form.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if form.Error() != "Path is a directory" {
		t.Fatalf("unexpected error %q", form.Error())
	}

	form.input.SetValue(smallIFC)
	cmd, submitted, _ = form.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !submitted || cmd == nil {
		t.Fatalf("expected submit")
	}
	if form.PendingLabel() != "small.ifc" {
		t.Fatalf("unexpected pending label %q", form.PendingLabel())
	}
	res := runAction(t, cmd)
	if res.Err != nil {
		t.Fatalf("load: %v", res.Err)
	}
}

func TestOpenFormCancel(t *testing.T) {
	form := NewOpenForm(OpenPrompt{})
	if _, _, cancelled := form.Update(tea.KeyMsg{Type: tea.KeyEsc}); !cancelled {
		t.Fatalf("expected esc to cancel")
	}
	if _, _, cancelled := form.Update(tea.KeyMsg{Type: tea.KeyEnter}); !cancelled {
		t.Fatalf("expected empty submit to cancel")
	}
}

func TestOpenFormAcceptsURLs(t *testing.T) {
	form := NewOpenForm(OpenPrompt{})
	form.stat = func(string) (os.FileInfo, error) {
		t.Fatalf("stat should not run for URLs")
		return nil, nil
	}
	if msg := form.validatePath("https://example.com/a.ifc"); msg != "" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestClearPicksAction(t *testing.T) {
	ctx, _ := newContext(t, true)
	if err := ctx.Session.Select(context.Background(), 3729); err != nil {
		t.Fatalf("select: %v", err)
	}
	res := runAction(t, ClearPicksAction(ctx, Item{}))
	if res.Err != nil || res.Info != "Cleared selection" {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, ok := ctx.Session.Selection.Current(); ok {
		t.Fatalf("expected selection cleared")
	}

	res = runAction(t, ClearPicksAction(Context{}, Item{}))
	if !errors.Is(res.Err, errNoSession) {
		t.Fatalf("expected no-session error, got %v", res.Err)
	}
}
