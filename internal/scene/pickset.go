package scene

import "sync"

// PickSet is the collection of meshes picking considers, keyed by mesh
// identity. Insertion order is kept so hit-testing is deterministic.
type PickSet struct {
	mu    sync.RWMutex
	index map[*Mesh]int
	order []*Mesh
}

// NewPickSet returns an empty set.
func NewPickSet() *PickSet {
	return &PickSet{index: make(map[*Mesh]int)}
}

// Add inserts mesh and reports whether it was absent.
func (p *PickSet) Add(mesh *Mesh) bool {
	if mesh == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.index[mesh]; ok {
		return false
	}
	p.index[mesh] = len(p.order)
	p.order = append(p.order, mesh)
	return true
}

// Remove deletes mesh and reports whether it was present.
func (p *PickSet) Remove(mesh *Mesh) bool {
	if mesh == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	idx, ok := p.index[mesh]
	if !ok {
		return false
	}
	delete(p.index, mesh)
	p.order = append(p.order[:idx], p.order[idx+1:]...)
	for i := idx; i < len(p.order); i++ {
		p.index[p.order[i]] = i
	}
	return true
}

// Has reports membership.
func (p *PickSet) Has(mesh *Mesh) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.index[mesh]
	return ok
}

// Len returns the member count.
func (p *PickSet) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.order)
}

// Members returns the meshes in insertion order.
func (p *PickSet) Members() []*Mesh {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Mesh, len(p.order))
	copy(out, p.order)
	return out
}
