package viewer

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/atomicstack/bimview/internal/ifc"
	"github.com/atomicstack/bimview/internal/scene"
)

type loadedModel struct {
	model *Model
	file  *ifc.File
	plans []Plan
}

type subsetKey struct {
	modelID int
	label   string
}

// Engine is the in-process viewer. It is safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	scene   *scene.Scene
	models  map[int]*loadedModel
	nextID  int
	subsets map[subsetKey]*scene.Mesh

	pointer     *PickResult
	picked      map[PickResult]struct{}
	preselected *PickResult

	edges       map[string]int
	overlays    map[string]bool
	currentPlan map[int]string

	http *resty.Client
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithHTTPClient replaces the client used by LoadURL.
func WithHTTPClient(client *resty.Client) EngineOption {
	return func(e *Engine) {
		if client != nil {
			e.http = client
		}
	}
}

// NewEngine returns an engine with an empty scene.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		scene:       scene.New(),
		models:      make(map[int]*loadedModel),
		subsets:     make(map[subsetKey]*scene.Mesh),
		picked:      make(map[PickResult]struct{}),
		edges:       make(map[string]int),
		overlays:    make(map[string]bool),
		currentPlan: make(map[int]string),
		http:        resty.New().SetTimeout(60 * time.Second),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scene exposes the render scene.
func (e *Engine) Scene() Scene {
	return e.scene
}

// SceneGraph exposes the concrete scene for inspection.
func (e *Engine) SceneGraph() *scene.Scene {
	return e.scene
}

// LoadFile indexes the IFC file at path and attaches its original mesh.
func (e *Engine) LoadFile(ctx context.Context, p string) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := ifc.ParseFile(p)
	if err != nil {
		return nil, err
	}
	return e.register(file), nil
}

// LoadURL fetches an IFC file over HTTP(S); other schemes fall back to
// LoadFile with the scheme stripped.
func (e *Engine) LoadURL(ctx context.Context, url string) (*Model, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
	case strings.HasPrefix(url, "file://"):
		return e.LoadFile(ctx, strings.TrimPrefix(url, "file://"))
	default:
		return e.LoadFile(ctx, url)
	}
	resp, err := e.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode())
	}
	name := path.Base(strings.SplitN(url, "?", 2)[0])
	file, err := ifc.Parse(bytes.NewReader(resp.Body()), name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	file.Path = url
	return e.register(file), nil
}

func (e *Engine) register(file *ifc.File) *Model {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	ids := file.Elements()
	mesh := scene.NewMesh(file.Name, id, ids, Material{Name: "original", Opacity: 1})
	model := &Model{
		ID:         id,
		Name:       file.Name,
		Path:       file.Path,
		Schema:     file.Schema,
		ElementIDs: ids,
		Mesh:       mesh,
	}
	e.models[id] = &loadedModel{model: model, file: file}
	e.scene.Add(mesh)
	e.scene.Pickable().Add(mesh)
	return model
}

// Unload drops a model, its subsets and any highlight or pointer state that
// refers to it. Unknown ids are ignored.
func (e *Engine) Unload(modelID int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	lm, ok := e.models[modelID]
	if !ok {
		return
	}
	delete(e.models, modelID)
	e.detachLocked(lm.model.Mesh)
	for key, mesh := range e.subsets {
		if key.modelID == modelID {
			e.detachLocked(mesh)
			delete(e.subsets, key)
		}
	}
	for p := range e.picked {
		if p.ModelID == modelID {
			delete(e.picked, p)
		}
	}
	if e.pointer != nil && e.pointer.ModelID == modelID {
		e.pointer = nil
	}
	if e.preselected != nil && e.preselected.ModelID == modelID {
		e.preselected = nil
	}
	for name, owner := range e.edges {
		if owner == modelID {
			delete(e.edges, name)
			delete(e.overlays, name)
		}
	}
	delete(e.currentPlan, modelID)
}

func (e *Engine) detachLocked(mesh *scene.Mesh) {
	e.scene.Remove(mesh)
	e.scene.Pickable().Remove(mesh)
}

// Build creates or extends the subset keyed by (model, label). With
// ReplacePrevious the old mesh is detached and a fresh one returned;
// otherwise ids are appended to an existing mesh of that label.
func (e *Engine) Build(model *Model, ids []int, opts SubsetOptions) (*scene.Mesh, error) {
	if model == nil {
		return nil, ErrUnknownModel
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.models[model.ID]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModel, model.ID)
	}
	material := Material{Name: "default", Opacity: 1}
	if opts.Material != nil {
		material = *opts.Material
	}
	label := opts.Label
	if label == "" {
		label = "material:" + material.Name
	}
	key := subsetKey{modelID: model.ID, label: label}
	if prev, ok := e.subsets[key]; ok {
		if !opts.ReplacePrevious {
			prev.Append(ids)
			return prev, nil
		}
		e.scene.Remove(prev)
		e.scene.Pickable().Remove(prev)
	}
	mesh := scene.NewMesh(label, model.ID, ids, material)
	e.subsets[key] = mesh
	return mesh, nil
}

// Hover moves the pointer onto an element.
func (e *Engine) Hover(modelID, elementID int) {
	e.mu.Lock()
	e.pointer = &PickResult{ModelID: modelID, ElementID: elementID}
	e.preselected = e.hitLocked()
	e.mu.Unlock()
}

// PickAtPointer resolves the element under the pointer against pickable
// meshes. A miss returns nil without error.
func (e *Engine) PickAtPointer(ctx context.Context, highlight bool) (*PickResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	hit := e.hitLocked()
	if hit == nil {
		return nil, nil
	}
	if highlight {
		e.picked = map[PickResult]struct{}{*hit: {}}
	}
	res := *hit
	return &res, nil
}

func (e *Engine) hitLocked() *PickResult {
	if e.pointer == nil {
		return nil
	}
	for _, mesh := range e.scene.Pickable().Members() {
		if mesh.ModelID == e.pointer.ModelID && mesh.Contains(e.pointer.ElementID) {
			hit := *e.pointer
			return &hit
		}
	}
	return nil
}

// PickByIDs highlights exactly ids of the given model.
func (e *Engine) PickByIDs(ctx context.Context, modelID int, ids []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	lm, ok := e.models[modelID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownModel, modelID)
	}
	picked := make(map[PickResult]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := lm.file.Entity(id); !ok {
			return fmt.Errorf("%w: %d in model %d", ErrUnknownElement, id, modelID)
		}
		picked[PickResult{ModelID: modelID, ElementID: id}] = struct{}{}
	}
	e.picked = picked
	return nil
}

// ClearPicks removes every highlight.
func (e *Engine) ClearPicks() {
	e.mu.Lock()
	e.picked = make(map[PickResult]struct{})
	e.mu.Unlock()
}

// Highlighted lists highlighted elements ordered by model then element.
func (e *Engine) Highlighted() []PickResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]PickResult, 0, len(e.picked))
	for p := range e.picked {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModelID != out[j].ModelID {
			return out[i].ModelID < out[j].ModelID
		}
		return out[i].ElementID < out[j].ElementID
	})
	return out
}

// Preselected returns the element the pointer currently rests on, if pickable.
func (e *Engine) Preselected() (PickResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.preselected == nil {
		return PickResult{}, false
	}
	return *e.preselected, true
}

// ComputeAllPlans derives one plan per building storey.
func (e *Engine) ComputeAllPlans(ctx context.Context, modelID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	lm, ok := e.models[modelID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownModel, modelID)
	}
	storeys := lm.file.Storeys()
	plans := make([]Plan, 0, len(storeys))
	for _, s := range storeys {
		name := s.Name
		if name == "" {
			name = strconv.Itoa(s.ID)
		}
		plans = append(plans, Plan{ID: strconv.Itoa(s.ID), Name: name, Elevation: s.Elevation})
	}
	lm.plans = plans
	return nil
}

// CreateEdges prepares the line overlay used by plan views.
func (e *Engine) CreateEdges(ctx context.Context, name string, modelID int, line, base Material) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.models[modelID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownModel, modelID)
	}
	e.edges[name] = modelID
	if _, ok := e.overlays[name]; !ok {
		e.overlays[name] = false
	}
	return nil
}

// ListPlans returns plan identifiers of a model in elevation order.
func (e *Engine) ListPlans(modelID int) []string {
	plans := e.Plans(modelID)
	if plans == nil {
		return nil
	}
	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	return ids
}

// Plans returns computed plans of a model.
func (e *Engine) Plans(modelID int) []Plan {
	e.mu.Lock()
	defer e.mu.Unlock()
	lm, ok := e.models[modelID]
	if !ok || lm.plans == nil {
		return nil
	}
	out := make([]Plan, len(lm.plans))
	copy(out, lm.plans)
	return out
}

// GoToPlan switches the camera to a plan; unknown names are ignored.
func (e *Engine) GoToPlan(modelID int, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	lm, ok := e.models[modelID]
	if !ok {
		return
	}
	for _, p := range lm.plans {
		if p.ID == name {
			e.currentPlan[modelID] = name
			return
		}
	}
}

// CurrentPlan reports the plan the camera shows for a model.
func (e *Engine) CurrentPlan(modelID int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentPlan[modelID]
}

// ToggleOverlay shows or hides a named overlay. Unknown names are ignored.
func (e *Engine) ToggleOverlay(name string, visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.edges[name]; !ok {
		return
	}
	e.overlays[name] = visible
}

// OverlayVisible reports overlay state.
func (e *Engine) OverlayVisible(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.overlays[name]
}

// ItemsOfType lists element ids of an IFC type in a model.
func (e *Engine) ItemsOfType(ctx context.Context, modelID int, typ string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	lm, ok := e.models[modelID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModel, modelID)
	}
	return lm.file.OfType(typ), nil
}

// Elements lists display rows for every element of a model.
func (e *Engine) Elements(modelID int) []Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	lm, ok := e.models[modelID]
	if !ok {
		return nil
	}
	out := make([]Element, 0, len(lm.model.ElementIDs))
	for _, id := range lm.model.ElementIDs {
		ent, _ := lm.file.Entity(id)
		out = append(out, Element{ID: id, Type: ent.Type, Name: ent.Name()})
	}
	return out
}

// GetProperties reads the attributes of one element. recurse expands direct
// references one level deep; includeInverse adds referencing entities.
func (e *Engine) GetProperties(ctx context.Context, modelID, elementID int, recurse, includeInverse bool) (*Properties, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	lm, ok := e.models[modelID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModel, modelID)
	}
	ent, ok := lm.file.Entity(elementID)
	if !ok {
		return nil, fmt.Errorf("%w: %d in model %d", ErrUnknownElement, elementID, modelID)
	}
	props := entityProperties(modelID, ent)
	if recurse {
		for _, ref := range ent.Refs() {
			if child, ok := lm.file.Entity(ref); ok {
				props.Related = append(props.Related, entityProperties(modelID, child))
			}
		}
	}
	if includeInverse {
		for _, ref := range lm.file.InverseRefs(elementID) {
			if parent, ok := lm.file.Entity(ref); ok {
				props.Inverse = append(props.Inverse, entityProperties(modelID, parent))
			}
		}
	}
	return &props, nil
}

func entityProperties(modelID int, ent *ifc.Entity) Properties {
	attrs := make([]string, len(ent.Args))
	copy(attrs, ent.Args)
	return Properties{
		ModelID:    modelID,
		ExpressID:  ent.ID,
		Type:       ent.Type,
		GlobalID:   ent.GlobalID(),
		Name:       ent.Name(),
		Attributes: attrs,
	}
}
