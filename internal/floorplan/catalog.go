// Package floorplan publishes the floor plans available for the current model.
package floorplan

import (
	"context"
	"fmt"
	"sync"

	"github.com/atomicstack/bimview/internal/logging/events"
	"github.com/atomicstack/bimview/internal/viewer"
)

// NoProjectLoaded is the single entry of the catalog before any model loads.
const NoProjectLoaded = "No project loaded!"

// EdgesOverlay names the line overlay plan views render with.
const EdgesOverlay = "planview"

var (
	lineMaterial = viewer.Material{Name: "plan-lines", Color: 0x000000, Opacity: 1}
	baseMaterial = viewer.Material{Name: "plan-base", Color: 0xffffff, Opacity: 1, Transparent: true, DepthTest: true}
)

type snapshot struct {
	list   []string
	names  map[string]string
	loaded bool
}

type subscriber struct {
	id int
	fn func([]string)
}

// Catalog holds the plan list of one session.
type Catalog struct {
	engine viewer.PlanEngine

	mu      sync.Mutex
	state   *snapshot
	subs    []subscriber
	nextSub int
}

// New returns a catalog in the "nothing loaded" state.
func New(engine viewer.PlanEngine) *Catalog {
	return &Catalog{
		engine: engine,
		state:  &snapshot{list: []string{NoProjectLoaded}},
	}
}

// Recompute computes plans and edges for model, then replaces the stored list
// in one step. On failure the previous list stays in place.
func (c *Catalog) Recompute(ctx context.Context, model *viewer.Model) ([]string, error) {
	if model == nil {
		return nil, viewer.ErrUnknownModel
	}
	if err := c.engine.ComputeAllPlans(ctx, model.ID); err != nil {
		return nil, fmt.Errorf("compute plans: %w", err)
	}
	if err := c.engine.CreateEdges(ctx, EdgesOverlay, model.ID, lineMaterial, baseMaterial); err != nil {
		return nil, fmt.Errorf("create plan edges: %w", err)
	}
	list := append([]string{}, c.engine.ListPlans(model.ID)...)
	names := make(map[string]string, len(list))
	for _, p := range c.engine.Plans(model.ID) {
		names[p.ID] = p.Name
	}
	next := &snapshot{list: list, names: names, loaded: true}

	c.mu.Lock()
	c.state = next
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	events.Plan.Recompute(model.ID, list)
	for _, s := range subs {
		s.fn(clone(list))
	}
	return clone(list), nil
}

// GoTo switches the view to a plan and shows its edge overlay. Membership is
// not checked; the engine ignores names it does not know.
func (c *Catalog) GoTo(ctx context.Context, model *viewer.Model, name string) error {
	if model == nil {
		return viewer.ErrUnknownModel
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	events.Plan.GoTo(model.ID, name)
	c.engine.GoToPlan(model.ID, name)
	c.engine.ToggleOverlay(EdgesOverlay, true)
	return nil
}

// Current returns a copy of the plan list.
func (c *Catalog) Current() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.state.list)
}

// Loaded reports whether a model's plans replaced the initial sentinel.
func (c *Catalog) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.loaded
}

// Contains reports whether name is a plan of the loaded model.
func (c *Catalog) Contains(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.loaded {
		return false
	}
	for _, p := range c.state.list {
		if p == name {
			return true
		}
	}
	return false
}

// DisplayName returns the human readable name of a plan, or the id itself.
func (c *Catalog) DisplayName(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name := c.state.names[id]; name != "" {
		return name
	}
	return id
}

// Clear publishes an empty but loaded list for model, used when its plans
// could not be computed. Subscribers see the empty list.
func (c *Catalog) Clear(model *viewer.Model) {
	if model != nil {
		events.Plan.Recompute(model.ID, nil)
	}
	c.mu.Lock()
	c.state = &snapshot{list: []string{}, names: map[string]string{}, loaded: true}
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()
	for _, s := range subs {
		s.fn([]string{})
	}
}

// Subscribe registers fn for list changes. Delivery is synchronous and each
// subscriber gets its own copy.
func (c *Catalog) Subscribe(fn func([]string)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func clone(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
