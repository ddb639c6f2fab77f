// Package subset tracks which geometric subset represents each view layer of
// the current model and keeps scene and pickable membership consistent.
package subset

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atomicstack/bimview/internal/logging/events"
	"github.com/atomicstack/bimview/internal/scene"
	"github.com/atomicstack/bimview/internal/viewer"
)

// Layer names a logical view layer. At most one subset per layer is attached.
type Layer string

const (
	LayerModel   Layer = "model"
	LayerSpaces  Layer = "spaces"
	LayerNavMesh Layer = "navmesh"
)

// NavMeshLabel is the label every nav-mesh category accumulates into.
const NavMeshLabel = "navMeshSubset"

var (
	// ErrNoSubset reports a transition to a nil subset.
	ErrNoSubset = errors.New("subset: no subset")
	// ErrStaleSubset reports a subset replaced by a later Create with its label.
	ErrStaleSubset = errors.New("subset: subset was replaced")
)

// Subset is a labelled mesh on one layer.
type Subset struct {
	Label    string
	Layer    Layer
	Handle   *scene.Mesh
	Material viewer.Material
}

// Spec describes a subset to create.
type Spec struct {
	Layer    Layer
	Label    string
	Material *viewer.Material
	// Accumulate appends ids to an existing subset of the same label instead
	// of replacing it.
	Accumulate bool
}

// Registry owns subset bookkeeping for one session.
type Registry struct {
	mu      sync.Mutex
	builder viewer.SubsetBuilder
	scene   viewer.Scene

	byLabel  map[string]*Subset
	byHandle map[*scene.Mesh]*Subset
	attached map[Layer]*Subset
	active   *Subset
}

// New returns an empty registry.
func New(builder viewer.SubsetBuilder, sc viewer.Scene) *Registry {
	return &Registry{
		builder:  builder,
		scene:    sc,
		byLabel:  make(map[string]*Subset),
		byHandle: make(map[*scene.Mesh]*Subset),
		attached: make(map[Layer]*Subset),
	}
}

// Create asks the builder for a subset of exactly ids (duplicates are passed
// through untouched). Without Accumulate, a prior subset with the same label
// is hidden and replaced.
func (r *Registry) Create(model *viewer.Model, ids []int, spec Spec) (*Subset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.byLabel[spec.Label]
	mesh, err := r.builder.Build(model, ids, viewer.SubsetOptions{
		Label:           spec.Label,
		Material:        spec.Material,
		ReplacePrevious: !spec.Accumulate,
	})
	if err != nil {
		return nil, fmt.Errorf("build subset %q: %w", spec.Label, err)
	}
	events.Subset.Create(spec.Label, len(ids))
	if prev != nil && prev.Handle == mesh {
		return prev, nil
	}
	if prev != nil {
		r.hideLocked(prev.Handle)
		delete(r.byHandle, prev.Handle)
		if r.active == prev {
			r.active = nil
		}
	}
	sub := &Subset{Label: spec.Label, Layer: spec.Layer, Handle: mesh}
	if spec.Material != nil {
		sub.Material = *spec.Material
	} else {
		sub.Material = mesh.Material
	}
	r.byLabel[spec.Label] = sub
	r.byHandle[mesh] = sub
	return sub, nil
}

// Show attaches h to the scene and the pickable set. Showing a visible
// handle or a nil handle is a no-op. Other subsets on the same layer are left
// alone; Switch and Replace keep one subset per layer.
func (r *Registry) Show(h *scene.Mesh) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.showLocked(h)
}

// Hide detaches h from the scene and the pickable set. Hiding a hidden or
// nil handle is a no-op.
func (r *Registry) Hide(h *scene.Mesh) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hideLocked(h)
}

func (r *Registry) showLocked(h *scene.Mesh) {
	if h == nil {
		return
	}
	if sub, ok := r.byHandle[h]; ok {
		if _, taken := r.attached[sub.Layer]; !taken {
			r.attached[sub.Layer] = sub
		}
	}
	r.scene.Add(h)
	if r.scene.Pickable().Add(h) {
		events.Subset.Show(h.Label)
	}
}

func (r *Registry) hideLocked(h *scene.Mesh) {
	if h == nil {
		return
	}
	if sub, ok := r.byHandle[h]; ok && r.attached[sub.Layer] == sub {
		delete(r.attached, sub.Layer)
	}
	r.scene.Remove(h)
	if r.scene.Pickable().Remove(h) {
		events.Subset.Hide(h.Label)
	}
}

// attachLocked shows sub as the only subset on its layer.
func (r *Registry) attachLocked(sub *Subset) {
	for h, other := range r.byHandle {
		if other != sub && other.Layer == sub.Layer {
			r.hideLocked(h)
		}
	}
	r.showLocked(sub.Handle)
	r.attached[sub.Layer] = sub
}

// Replace hides the original model mesh and makes sub the active view.
func (r *Registry) Replace(original *scene.Mesh, sub *Subset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.validateLocked(sub); err != nil {
		return err
	}
	r.hideLocked(original)
	r.attachLocked(sub)
	r.active = sub
	return nil
}

// Switch makes to the active view: the current active subset is hidden
// first, then to is shown. The target is validated before anything is
// hidden, so a rejected transition leaves the previous view visible.
func (r *Registry) Switch(to *Subset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.validateLocked(to); err != nil {
		return err
	}
	from := r.active
	if from == to {
		r.attachLocked(to)
		return nil
	}
	fromLabel := ""
	if from != nil {
		fromLabel = from.Label
		r.hideLocked(from.Handle)
	}
	r.attachLocked(to)
	r.active = to
	events.Subset.Switch(fromLabel, to.Label)
	return nil
}

func (r *Registry) validateLocked(sub *Subset) error {
	if sub == nil || sub.Handle == nil {
		return ErrNoSubset
	}
	if current, ok := r.byLabel[sub.Label]; !ok || current != sub {
		return fmt.Errorf("%w: %s", ErrStaleSubset, sub.Label)
	}
	return nil
}

// Active returns the subset currently representing the view.
func (r *Registry) Active() *Subset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Lookup finds the live subset with label.
func (r *Registry) Lookup(label string) (*Subset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.byLabel[label]
	return sub, ok
}

// Attached returns the subset attached on layer, if any.
func (r *Registry) Attached(layer Layer) (*Subset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.attached[layer]
	return sub, ok
}

// Visible reports whether h is in the pickable set.
func (r *Registry) Visible(h *scene.Mesh) bool {
	return r.scene.Pickable().Has(h)
}

// Reset hides every registered subset except keep and forgets them. Used
// when a new model replaces the current one.
func (r *Registry) Reset(keep ...*Subset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := make(map[*scene.Mesh]*Subset, len(keep))
	for _, sub := range keep {
		if sub != nil && r.byHandle[sub.Handle] == sub {
			kept[sub.Handle] = sub
		}
	}
	for h := range r.byHandle {
		if _, ok := kept[h]; !ok {
			r.hideLocked(h)
		}
	}
	r.byLabel = make(map[string]*Subset, len(kept))
	r.byHandle = make(map[*scene.Mesh]*Subset, len(kept))
	r.attached = make(map[Layer]*Subset)
	r.active = nil
	for h, sub := range kept {
		r.byLabel[sub.Label] = sub
		r.byHandle[h] = sub
		if r.scene.Pickable().Has(h) {
			r.attached[sub.Layer] = sub
		}
	}
}
