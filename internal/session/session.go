// Package session is the per-viewer context UI handlers talk to. It owns the
// subset registry, the selection tracker and the floor-plan catalog, and
// sequences viewer calls so each operation leaves them consistent.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/atomicstack/bimview/internal/checks"
	"github.com/atomicstack/bimview/internal/floorplan"
	"github.com/atomicstack/bimview/internal/ifc"
	"github.com/atomicstack/bimview/internal/logging"
	"github.com/atomicstack/bimview/internal/logging/events"
	"github.com/atomicstack/bimview/internal/selection"
	"github.com/atomicstack/bimview/internal/storage/sqlite"
	"github.com/atomicstack/bimview/internal/subset"
	"github.com/atomicstack/bimview/internal/viewer"
)

// SpacesLabel is the subset label of the spaces view.
const SpacesLabel = "spaces"

// NavMeshTypes are the element categories merged into the nav-mesh view.
var NavMeshTypes = []string{ifc.TypeSlab, ifc.TypeDoor, ifc.TypeStair, ifc.TypeWall, ifc.TypeWallStandardCase}

var spaceMaterial = viewer.Material{Name: "spaces", Color: 0xfbc02d, Opacity: 0.5, Transparent: true}

// History records opened projects.
type History interface {
	Touch(ctx context.Context, p sqlite.Project) error
}

// Option customises a Session.
type Option func(*Session)

// WithChecks replaces the built-in check definitions.
func WithChecks(set *checks.Set) Option {
	return func(s *Session) {
		if set != nil {
			s.checks = set
		}
	}
}

// WithHistory records every loaded file in h.
func WithHistory(h History) Option {
	return func(s *Session) { s.history = h }
}

// Session is one viewer session.
type Session struct {
	ID        string
	Subsets   *subset.Registry
	Selection *selection.Tracker
	Plans     *floorplan.Catalog

	viewer  viewer.Viewer
	checks  *checks.Set
	history History

	// op serialises operations; a second load waits for the first.
	op sync.Mutex

	mu          sync.RWMutex
	model       *viewer.Model
	currentPlan string
	listeners   []listener
	nextID      int
	unsubscribe []func()
}

type listener struct {
	id int
	fn func(Snapshot)
}

// New builds a session driving v.
func New(v viewer.Viewer, opts ...Option) (*Session, error) {
	if v == nil {
		return nil, ErrNoViewer
	}
	s := &Session{
		ID:        uuid.NewString(),
		Subsets:   subset.New(v, v.Scene()),
		Selection: selection.New(v),
		Plans:     floorplan.New(v),
		viewer:    v,
		checks:    checks.Defaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = append(s.unsubscribe,
		s.Selection.Subscribe(func(selection.ElementRef) { s.publish() }),
		s.Plans.Subscribe(func([]string) { s.publish() }),
	)
	return s, nil
}

// Close detaches the session from its components.
func (s *Session) Close() {
	for _, cancel := range s.unsubscribe {
		cancel()
	}
	s.unsubscribe = nil
}

// Model returns the current model, or nil.
func (s *Session) Model() *viewer.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Checks returns the configured check definitions.
func (s *Session) Checks() []checks.Check {
	return s.checks.All()
}

// LoadFiles loads every path concurrently and makes the last one the current
// model: its original mesh is replaced by a full-model subset and the floor
// plans are recomputed. Earlier files of the batch stay loaded in the engine but
// hidden; the model they replace is unloaded.
// An empty list is a no-op.
func (s *Session) LoadFiles(ctx context.Context, paths ...string) (*viewer.Model, error) {
	paths = cleanPaths(paths)
	if len(paths) == 0 {
		events.Model.Skip(events.ModelReasonNoFiles)
		return nil, nil
	}
	s.op.Lock()
	defer s.op.Unlock()
	return s.loadLocked(ctx, paths)
}

// Reload loads the current model's file again. Without a model it is a no-op.
func (s *Session) Reload(ctx context.Context) (*viewer.Model, error) {
	s.op.Lock()
	defer s.op.Unlock()
	current := s.Model()
	if current == nil || current.Path == "" {
		events.Model.Skip(events.ModelReasonNoFiles)
		return nil, nil
	}
	events.Model.Reload(current.Path, events.ModelReasonChanged)
	return s.loadLocked(ctx, []string{current.Path})
}

func (s *Session) loadLocked(ctx context.Context, paths []string) (*viewer.Model, error) {
	events.Model.Load(paths)
	models := make([]*viewer.Model, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			m, err := s.open(gctx, p)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			models[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, m := range models {
			if m != nil {
				s.Subsets.Hide(m.Mesh)
				s.viewer.Unload(m.ID)
			}
		}
		return nil, external("load", err)
	}

	current := models[len(models)-1]
	for _, m := range models[:len(models)-1] {
		s.Subsets.Hide(m.Mesh)
	}
	full, err := s.Subsets.Create(current, current.ElementIDs, subset.Spec{Layer: subset.LayerModel, Label: current.Name})
	if err != nil {
		s.Subsets.Hide(current.Mesh)
		return nil, external("load", err)
	}
	s.Subsets.Reset(full)
	if err := s.Subsets.Replace(current.Mesh, full); err != nil {
		return nil, err
	}
	s.viewer.ClearPicks()
	s.Selection.Clear()

	s.mu.Lock()
	previous := s.model
	s.model = current
	s.currentPlan = ""
	s.mu.Unlock()
	if previous != nil && previous.ID != current.ID {
		s.viewer.Unload(previous.ID)
	}
	events.Model.Loaded(current.ID, current.Name, len(current.ElementIDs))

	if _, err := s.Plans.Recompute(ctx, current); err != nil {
		s.Plans.Clear(current)
		s.publish()
		return current, external("floor plans", err)
	}
	s.publish()
	s.record(ctx, models)
	return current, nil
}

func (s *Session) open(ctx context.Context, p string) (*viewer.Model, error) {
	if strings.Contains(p, "://") {
		return s.viewer.LoadURL(ctx, p)
	}
	return s.viewer.LoadFile(ctx, p)
}

func (s *Session) record(ctx context.Context, models []*viewer.Model) {
	if s.history == nil {
		return
	}
	for _, m := range models {
		project := sqlite.Project{Path: m.Path, Name: m.Name, Schema: m.Schema, Elements: len(m.ElementIDs)}
		if err := s.history.Touch(ctx, project); err != nil {
			logging.Error(fmt.Errorf("record recent project %s: %w", m.Path, err))
		}
	}
}

// ShowSpaces switches the view from the full model to its spaces.
func (s *Session) ShowSpaces(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()
	model, err := s.requireModel()
	if err != nil {
		return err
	}
	ids, err := s.viewer.ItemsOfType(ctx, model.ID, ifc.TypeSpace)
	if err != nil {
		return external("show spaces", err)
	}
	material := spaceMaterial
	sub, err := s.Subsets.Create(model, ids, subset.Spec{Layer: subset.LayerSpaces, Label: SpacesLabel, Material: &material})
	if err != nil {
		return external("show spaces", err)
	}
	return s.switchTo(sub)
}

// ShowNavMeshItems switches the view to slabs, doors, stairs and walls, all
// merged into one subset. Every category is queried before anything is built.
func (s *Session) ShowNavMeshItems(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()
	model, err := s.requireModel()
	if err != nil {
		return err
	}
	categories := make([][]int, 0, len(NavMeshTypes))
	for _, typ := range NavMeshTypes {
		ids, err := s.viewer.ItemsOfType(ctx, model.ID, typ)
		if err != nil {
			return external("show nav-mesh items", err)
		}
		categories = append(categories, ids)
	}
	var sub *subset.Subset
	for i, ids := range categories {
		sub, err = s.Subsets.Create(model, ids, subset.Spec{
			Layer:      subset.LayerNavMesh,
			Label:      subset.NavMeshLabel,
			Accumulate: i > 0,
		})
		if err != nil {
			return external("show nav-mesh items", err)
		}
	}
	return s.switchTo(sub)
}

// ShowFullModel switches back to the full-model subset.
func (s *Session) ShowFullModel(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()
	model, err := s.requireModel()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	full, ok := s.Subsets.Lookup(model.Name)
	if !ok {
		return fmt.Errorf("%w: %s", subset.ErrNoSubset, model.Name)
	}
	return s.switchTo(full)
}

func (s *Session) switchTo(sub *subset.Subset) error {
	if err := s.Subsets.Switch(sub); err != nil {
		return err
	}
	s.publish()
	return nil
}

// Pick selects the element under the pointer. A miss returns false and keeps
// the current selection.
func (s *Session) Pick(ctx context.Context) (selection.ElementRef, bool, error) {
	s.op.Lock()
	defer s.op.Unlock()
	ref, ok, err := s.Selection.PickAtPointer(ctx)
	if err != nil {
		return ref, ok, external("pick", err)
	}
	return ref, ok, nil
}

// Select records an element by id and highlights it.
func (s *Session) Select(ctx context.Context, elementID int) error {
	s.op.Lock()
	defer s.op.Unlock()
	model, err := s.requireModel()
	if err != nil {
		return err
	}
	return external("select", s.Selection.SelectByID(ctx, model.ID, elementID, true))
}

// Highlight highlights several elements of the current model without
// changing the selection.
func (s *Session) Highlight(ctx context.Context, elementIDs []int) error {
	s.op.Lock()
	defer s.op.Unlock()
	model, err := s.requireModel()
	if err != nil {
		return err
	}
	if len(elementIDs) == 0 {
		return nil
	}
	return external("highlight", s.viewer.PickByIDs(ctx, model.ID, elementIDs))
}

// Hover moves the pointer onto an element of the current model.
func (s *Session) Hover(elementID int) error {
	model, err := s.requireModel()
	if err != nil {
		return err
	}
	events.Selection.Hover(elementID)
	s.viewer.Hover(model.ID, elementID)
	return nil
}

// ClearPicks removes every highlight and drops the selection.
func (s *Session) ClearPicks() {
	s.op.Lock()
	defer s.op.Unlock()
	s.viewer.ClearPicks()
	s.Selection.Clear()
	s.publish()
}

// Properties reads the properties of the selected element. Without a
// selection it returns nil.
func (s *Session) Properties(ctx context.Context) (*viewer.Properties, error) {
	s.op.Lock()
	defer s.op.Unlock()
	ref, ok := s.Selection.Current()
	if !ok {
		return nil, nil
	}
	events.Model.Properties(ref.ModelID, ref.ElementID)
	props, err := s.viewer.GetProperties(ctx, ref.ModelID, ref.ElementID, true, true)
	if err != nil {
		return nil, external("properties", err)
	}
	return props, nil
}

// GoToPlan moves the view to a floor plan. Unknown names are passed through.
func (s *Session) GoToPlan(ctx context.Context, name string) error {
	s.op.Lock()
	defer s.op.Unlock()
	return s.goToLocked(ctx, name)
}

func (s *Session) goToLocked(ctx context.Context, name string) error {
	model, err := s.requireModel()
	if err != nil {
		return err
	}
	if err := s.Plans.GoTo(ctx, model, name); err != nil {
		return err
	}
	s.mu.Lock()
	s.currentPlan = name
	s.mu.Unlock()
	s.publish()
	return nil
}

// Elements lists elements of the current model, optionally limited to the
// given IFC types.
func (s *Session) Elements(types ...string) []viewer.Element {
	model := s.Model()
	if model == nil {
		return nil
	}
	all := s.viewer.Elements(model.ID)
	if len(types) == 0 {
		return all
	}
	want := make(map[string]struct{}, len(types))
	for _, t := range types {
		want[strings.ToUpper(t)] = struct{}{}
	}
	out := all[:0:0]
	for _, el := range all {
		if _, ok := want[el.Type]; ok {
			out = append(out, el)
		}
	}
	return out
}

func (s *Session) requireModel() (*viewer.Model, error) {
	if model := s.Model(); model != nil {
		return model, nil
	}
	return nil, ErrNoModel
}

func cleanPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "://") {
			p = filepath.Clean(p)
		}
		out = append(out, p)
	}
	return out
}
