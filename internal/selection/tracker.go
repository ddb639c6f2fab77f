// Package selection keeps the single currently selected element and tells
// subscribers whenever a new one is recorded.
package selection

import (
	"context"
	"fmt"
	"sync"

	"github.com/atomicstack/bimview/internal/logging/events"
	"github.com/atomicstack/bimview/internal/viewer"
)

// ElementRef identifies one element within a model.
type ElementRef struct {
	ModelID   int `json:"modelID"`
	ElementID int `json:"elementID"`
}

func (r ElementRef) String() string {
	return fmt.Sprintf("%d:%d", r.ModelID, r.ElementID)
}

type subscriber struct {
	id int
	fn func(ElementRef)
}

// Tracker is a single-slot selection record.
type Tracker struct {
	picker viewer.Picker

	mu      sync.Mutex
	current *ElementRef
	subs    []subscriber
	nextSub int
}

// New returns an empty tracker resolving picks through picker.
func New(picker viewer.Picker) *Tracker {
	return &Tracker{picker: picker}
}

// SelectByID records the element and notifies subscribers. With highlight the
// picker is asked to highlight it too; a highlight failure is returned but the
// selection stays recorded.
func (t *Tracker) SelectByID(ctx context.Context, modelID, elementID int, highlight bool) error {
	ref := ElementRef{ModelID: modelID, ElementID: elementID}
	t.mu.Lock()
	t.current = &ref
	subs := make([]subscriber, len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	events.Selection.Select(modelID, elementID, highlight)
	for _, s := range subs {
		s.fn(ref)
	}
	if !highlight {
		return nil
	}
	if err := t.picker.PickByIDs(ctx, modelID, []int{elementID}); err != nil {
		return fmt.Errorf("highlight %s: %w", ref, err)
	}
	return nil
}

// PickAtPointer resolves the element under the pointer. A miss returns false
// and leaves the current selection alone.
func (t *Tracker) PickAtPointer(ctx context.Context) (ElementRef, bool, error) {
	hit, err := t.picker.PickAtPointer(ctx, false)
	if err != nil {
		return ElementRef{}, false, fmt.Errorf("pick at pointer: %w", err)
	}
	if hit == nil {
		events.Selection.Miss()
		return ElementRef{}, false, nil
	}
	ref := ElementRef{ModelID: hit.ModelID, ElementID: hit.ElementID}
	if err := t.SelectByID(ctx, ref.ModelID, ref.ElementID, false); err != nil {
		return ref, true, err
	}
	return ref, true, nil
}

// Clear drops the selection. Clearing an empty tracker is a no-op.
func (t *Tracker) Clear() {
	t.mu.Lock()
	had := t.current != nil
	t.current = nil
	t.mu.Unlock()
	if had {
		events.Selection.Clear()
	}
}

// Current returns the selected element, if any.
func (t *Tracker) Current() (ElementRef, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return ElementRef{}, false
	}
	return *t.current, true
}

// Subscribe registers fn for every recorded selection. Delivery is synchronous
// and in subscription order. The returned func unsubscribes.
func (t *Tracker) Subscribe(fn func(ElementRef)) (cancel func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs = append(t.subs, subscriber{id: id, fn: fn})
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, s := range t.subs {
				if s.id == id {
					t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
					return
				}
			}
		})
	}
}
