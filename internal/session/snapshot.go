package session

import (
	"github.com/atomicstack/bimview/internal/selection"
	"github.com/atomicstack/bimview/internal/subset"
)

// ModelInfo summarises the current model.
type ModelInfo struct {
	ID       int
	Name     string
	Path     string
	Schema   string
	Elements int
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	SessionID   string
	Model       *ModelInfo
	Layer       subset.Layer
	ActiveLabel string
	Plans       []string
	PlanNames   []string
	PlansLoaded bool
	CurrentPlan string
	Selection   *selection.ElementRef
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:   s.ID,
		Plans:       s.Plans.Current(),
		PlansLoaded: s.Plans.Loaded(),
	}
	snap.PlanNames = make([]string, len(snap.Plans))
	for i, id := range snap.Plans {
		snap.PlanNames[i] = s.Plans.DisplayName(id)
	}
	if active := s.Subsets.Active(); active != nil {
		snap.Layer = active.Layer
		snap.ActiveLabel = active.Label
	}
	if ref, ok := s.Selection.Current(); ok {
		snap.Selection = &ref
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m := s.model; m != nil {
		snap.Model = &ModelInfo{ID: m.ID, Name: m.Name, Path: m.Path, Schema: m.Schema, Elements: len(m.ElementIDs)}
	}
	snap.CurrentPlan = s.currentPlan
	return snap
}

// Subscribe registers fn for state changes. fn runs synchronously on the
// goroutine that changed the state and must not call back into operations
// of the session.
func (s *Session) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) publish() {
	s.mu.RLock()
	listeners := make([]listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()
	if len(listeners) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, l := range listeners {
		l.fn(snap)
	}
}
