// Package scene holds the in-memory scene graph the viewer renders from and
// the set of meshes that take part in picking.
package scene

import (
	"sort"
	"sync"
)

// Material is the surface description a mesh is drawn with.
type Material struct {
	Name        string
	Color       uint32
	Opacity     float64
	Transparent bool
	DepthTest   bool
}

// Mesh is a renderable grouping of element ids for one model. Identity is the
// pointer; two meshes with equal fields are still different meshes.
type Mesh struct {
	Label    string
	ModelID  int
	Material Material

	ids []int
}

// NewMesh builds a mesh covering ids in the given order. Duplicates are kept.
func NewMesh(label string, modelID int, ids []int, material Material) *Mesh {
	dup := make([]int, len(ids))
	copy(dup, ids)
	return &Mesh{Label: label, ModelID: modelID, Material: material, ids: dup}
}

// IDs returns a copy of the element ids held by the mesh.
func (m *Mesh) IDs() []int {
	if m == nil || len(m.ids) == 0 {
		return nil
	}
	dup := make([]int, len(m.ids))
	copy(dup, m.ids)
	return dup
}

// Contains reports whether elementID is part of the mesh.
func (m *Mesh) Contains(elementID int) bool {
	if m == nil {
		return false
	}
	for _, id := range m.ids {
		if id == elementID {
			return true
		}
	}
	return false
}

// Append adds ids to the mesh, used when several categories accumulate into
// one subset.
func (m *Mesh) Append(ids []int) {
	m.ids = append(m.ids, ids...)
}

// Scene owns the attached meshes and the pickable set.
type Scene struct {
	mu       sync.RWMutex
	attached map[*Mesh]int
	pickable *PickSet
	seq      int
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{attached: make(map[*Mesh]int), pickable: NewPickSet()}
}

// Add attaches mesh to the scene. Adding an attached mesh is a no-op.
func (s *Scene) Add(mesh *Mesh) {
	if mesh == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attached[mesh]; ok {
		return
	}
	s.seq++
	s.attached[mesh] = s.seq
}

// Remove detaches mesh from the scene. Removing a detached mesh is a no-op.
func (s *Scene) Remove(mesh *Mesh) {
	if mesh == nil {
		return
	}
	s.mu.Lock()
	delete(s.attached, mesh)
	s.mu.Unlock()
}

// Attached reports whether mesh is currently part of the scene.
func (s *Scene) Attached(mesh *Mesh) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.attached[mesh]
	return ok
}

// Meshes lists attached meshes in attach order.
func (s *Scene) Meshes() []*Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Mesh, 0, len(s.attached))
	for mesh := range s.attached {
		out = append(out, mesh)
	}
	sort.Slice(out, func(i, j int) bool { return s.attached[out[i]] < s.attached[out[j]] })
	return out
}

// Pickable exposes the mutable pickable collection.
func (s *Scene) Pickable() *PickSet {
	return s.pickable
}
