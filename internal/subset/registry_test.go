package subset

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/atomicstack/bimview/internal/scene"
	"github.com/atomicstack/bimview/internal/viewer"
)

type fakeBuilder struct {
	meshes map[string]*scene.Mesh
	err    error
	calls  []viewer.SubsetOptions
}

func newFakeBuilder() *fakeBuilder {
	return &fakeBuilder{meshes: make(map[string]*scene.Mesh)}
}

func (f *fakeBuilder) Build(model *viewer.Model, ids []int, opts viewer.SubsetOptions) (*scene.Mesh, error) {
	f.calls = append(f.calls, opts)
	if f.err != nil {
		return nil, f.err
	}
	if prev, ok := f.meshes[opts.Label]; ok && !opts.ReplacePrevious {
		prev.Append(ids)
		return prev, nil
	}
	mesh := scene.NewMesh(opts.Label, model.ID, ids, viewer.Material{Name: opts.Label})
	f.meshes[opts.Label] = mesh
	return mesh, nil
}

func newRegistry() (*Registry, *scene.Scene, *fakeBuilder) {
	sc := scene.New()
	b := newFakeBuilder()
	return New(b, sc), sc, b
}

var modelA = &viewer.Model{ID: 0, Name: "A", ElementIDs: []int{1, 2, 3}}

func TestLoadScenarioShowsFullModelSubset(t *testing.T) {
	r, sc, _ := newRegistry()
	original := scene.NewMesh("A", 0, []int{1, 2, 3}, viewer.Material{})
	sc.Add(original)
	sc.Pickable().Add(original)

	full, err := r.Create(modelA, modelA.ElementIDs, Spec{Layer: LayerModel, Label: "A"})
	require.NoError(t, err)
	require.NoError(t, r.Replace(original, full))

	assert.Equal(t, []int{1, 2, 3}, full.Handle.IDs())
	assert.Equal(t, []*scene.Mesh{full.Handle}, sc.Pickable().Members())
	assert.False(t, sc.Attached(original))
	assert.Same(t, full, r.Active())
}

func TestShowSpacesScenario(t *testing.T) {
	r, sc, _ := newRegistry()
	full, err := r.Create(modelA, modelA.ElementIDs, Spec{Layer: LayerModel, Label: "A"})
	require.NoError(t, err)
	require.NoError(t, r.Replace(nil, full))

	spaces, err := r.Create(modelA, []int{2}, Spec{Layer: LayerSpaces, Label: "spaces"})
	require.NoError(t, err)
	require.NoError(t, r.Switch(spaces))

	assert.False(t, r.Visible(full.Handle))
	assert.True(t, r.Visible(spaces.Handle))
	assert.Equal(t, []int{2}, spaces.Handle.IDs())
	assert.Equal(t, []*scene.Mesh{spaces.Handle}, sc.Pickable().Members())

	require.NoError(t, r.Switch(full))
	assert.Equal(t, []*scene.Mesh{full.Handle}, sc.Pickable().Members())
}

func TestShowHideIdempotent(t *testing.T) {
	r, sc, _ := newRegistry()
	sub, err := r.Create(modelA, []int{1}, Spec{Layer: LayerSpaces, Label: "s"})
	require.NoError(t, err)

	r.Hide(nil)
	r.Show(nil)
	r.Hide(sub.Handle)
	assert.Zero(t, sc.Pickable().Len())

	r.Show(sub.Handle)
	r.Show(sub.Handle)
	assert.Equal(t, 1, sc.Pickable().Len())
	r.Hide(sub.Handle)
	r.Hide(sub.Handle)
	assert.Zero(t, sc.Pickable().Len())
	assert.False(t, sc.Attached(sub.Handle))
}

func TestCreateReplacesSameLabel(t *testing.T) {
	r, sc, b := newRegistry()
	first, err := r.Create(modelA, []int{1}, Spec{Layer: LayerSpaces, Label: "s"})
	require.NoError(t, err)
	r.Show(first.Handle)

	second, err := r.Create(modelA, []int{2, 2}, Spec{Layer: LayerSpaces, Label: "s"})
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.False(t, sc.Pickable().Has(first.Handle))
	assert.Equal(t, []int{2, 2}, second.Handle.IDs(), "duplicates are passed through")
	assert.True(t, b.calls[1].ReplacePrevious)

	err = r.Switch(first)
	assert.ErrorIs(t, err, ErrStaleSubset)
}

func TestAccumulateKeepsOneSubset(t *testing.T) {
	r, _, _ := newRegistry()
	var last *Subset
	for _, ids := range [][]int{{10}, {11, 12}, {13}} {
		sub, err := r.Create(modelA, ids, Spec{Layer: LayerNavMesh, Label: NavMeshLabel, Accumulate: true})
		require.NoError(t, err)
		if last != nil {
			assert.Same(t, last, sub)
		}
		last = sub
	}
	assert.Equal(t, []int{10, 11, 12, 13}, last.Handle.IDs())
}

func TestSwitchRejectsInvalidTargetWithoutHiding(t *testing.T) {
	r, sc, _ := newRegistry()
	full, err := r.Create(modelA, modelA.ElementIDs, Spec{Layer: LayerModel, Label: "A"})
	require.NoError(t, err)
	require.NoError(t, r.Replace(nil, full))

	assert.ErrorIs(t, r.Switch(nil), ErrNoSubset)
	assert.ErrorIs(t, r.Switch(&Subset{Label: "ghost", Handle: scene.NewMesh("ghost", 0, nil, viewer.Material{})}), ErrStaleSubset)
	assert.Equal(t, []*scene.Mesh{full.Handle}, sc.Pickable().Members())
	assert.Same(t, full, r.Active())
}

func TestCreateBuilderFailureKeepsState(t *testing.T) {
	r, sc, b := newRegistry()
	full, err := r.Create(modelA, modelA.ElementIDs, Spec{Layer: LayerModel, Label: "A"})
	require.NoError(t, err)
	require.NoError(t, r.Replace(nil, full))

	b.err = errors.New("wasm exploded")
	_, err = r.Create(modelA, []int{2}, Spec{Layer: LayerSpaces, Label: "spaces"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wasm exploded")
	assert.Equal(t, []*scene.Mesh{full.Handle}, sc.Pickable().Members())
}

func TestSwitchKeepsOneSubsetPerLayer(t *testing.T) {
	r, sc, _ := newRegistry()
	a, err := r.Create(modelA, []int{1}, Spec{Layer: LayerSpaces, Label: "a"})
	require.NoError(t, err)
	b, err := r.Create(modelA, []int{2}, Spec{Layer: LayerSpaces, Label: "b"})
	require.NoError(t, err)
	require.NoError(t, r.Switch(a))
	r.Show(b.Handle)
	require.NoError(t, r.Switch(b))
	attached, ok := r.Attached(LayerSpaces)
	require.True(t, ok)
	assert.Same(t, b, attached)
	assert.Equal(t, []*scene.Mesh{b.Handle}, sc.Pickable().Members())
}

func TestShowLeavesLayerNeighbours(t *testing.T) {
	r, sc, _ := newRegistry()
	a, err := r.Create(modelA, []int{1}, Spec{Layer: LayerSpaces, Label: "a"})
	require.NoError(t, err)
	b, err := r.Create(modelA, []int{2}, Spec{Layer: LayerSpaces, Label: "b"})
	require.NoError(t, err)
	r.Show(a.Handle)
	before := sc.Pickable().Members()

	r.Show(b.Handle)
	r.Hide(b.Handle)

	assert.Equal(t, before, sc.Pickable().Members())
	assert.True(t, r.Visible(a.Handle))
	attached, ok := r.Attached(LayerSpaces)
	require.True(t, ok)
	assert.Same(t, a, attached)
}

func TestResetHidesEverything(t *testing.T) {
	r, sc, _ := newRegistry()
	full, err := r.Create(modelA, modelA.ElementIDs, Spec{Layer: LayerModel, Label: "A"})
	require.NoError(t, err)
	require.NoError(t, r.Replace(nil, full))
	r.Reset()
	assert.Zero(t, sc.Pickable().Len())
	assert.Nil(t, r.Active())
	_, ok := r.Lookup("A")
	assert.False(t, ok)
}

func TestResetKeepsRequestedSubset(t *testing.T) {
	r, sc, _ := newRegistry()
	old, err := r.Create(modelA, modelA.ElementIDs, Spec{Layer: LayerModel, Label: "old.ifc"})
	require.NoError(t, err)
	require.NoError(t, r.Replace(nil, old))

	fresh, err := r.Create(&viewer.Model{ID: 1}, []int{9}, Spec{Layer: LayerModel, Label: "new.ifc"})
	require.NoError(t, err)
	r.Reset(fresh)
	require.NoError(t, r.Replace(nil, fresh))

	assert.Equal(t, []*scene.Mesh{fresh.Handle}, sc.Pickable().Members())
	_, ok := r.Lookup("old.ifc")
	assert.False(t, ok)
	assert.ErrorIs(t, r.Switch(old), ErrStaleSubset)
}

// Any show/hide sequence keeps the pickable set duplicate free, and a handle
// ends up present exactly when its last operation was a show.
func TestShowHideSequencesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r, sc, _ := newRegistry()
		baseline := scene.NewMesh("baseline", 0, []int{1}, viewer.Material{})
		r.Show(baseline)

		n := rapid.IntRange(1, 5).Draw(t, "handles")
		handles := make([]*scene.Mesh, n)
		for i := range handles {
			handles[i] = scene.NewMesh(fmt.Sprintf("h%d", i), 0, []int{i}, viewer.Material{})
		}
		last := make(map[*scene.Mesh]bool)
		ops := rapid.SliceOf(rapid.IntRange(0, 2*n-1)).Draw(t, "ops")
		for _, op := range ops {
			h := handles[op/2]
			if op%2 == 0 {
				r.Show(h)
				last[h] = true
			} else {
				r.Hide(h)
				last[h] = false
			}
			seen := make(map[*scene.Mesh]struct{})
			for _, m := range sc.Pickable().Members() {
				if _, dup := seen[m]; dup {
					t.Fatalf("duplicate handle %s in pickable set", m.Label)
				}
				seen[m] = struct{}{}
			}
		}
		if !sc.Pickable().Has(baseline) {
			t.Fatalf("baseline handle lost")
		}
		for _, h := range handles {
			if sc.Pickable().Has(h) != last[h] {
				t.Fatalf("handle %s membership %v, last op show=%v", h.Label, sc.Pickable().Has(h), last[h])
			}
		}
	})
}

// Matched show/hide pairs per handle restore the original membership,
// whether handles are registered subsets sharing layers or bare meshes.
func TestMatchedPairsRestoreMembershipProperty(t *testing.T) {
	layers := []Layer{LayerModel, LayerSpaces, LayerNavMesh}
	rapid.Check(t, func(t *rapid.T) {
		r, sc, _ := newRegistry()
		baseLayer := rapid.SampledFrom(layers).Draw(t, "baseLayer")
		base, err := r.Create(modelA, []int{1}, Spec{Layer: baseLayer, Label: "baseline"})
		if err != nil {
			t.Fatalf("create baseline: %v", err)
		}
		if err := r.Switch(base); err != nil {
			t.Fatalf("switch baseline: %v", err)
		}
		loose := scene.NewMesh("loose", 0, []int{1}, viewer.Material{})
		r.Show(loose)
		before := sc.Pickable().Members()

		n := rapid.IntRange(1, 4).Draw(t, "handles")
		handles := make([]*scene.Mesh, n)
		remaining := make([]int, n)
		for i := range handles {
			label := fmt.Sprintf("h%d", i)
			if rapid.Bool().Draw(t, fmt.Sprintf("registered%d", i)) {
				layer := rapid.SampledFrom(layers).Draw(t, fmt.Sprintf("layer%d", i))
				sub, err := r.Create(modelA, []int{i}, Spec{Layer: layer, Label: label})
				if err != nil {
					t.Fatalf("create %s: %v", label, err)
				}
				handles[i] = sub.Handle
			} else {
				handles[i] = scene.NewMesh(label, 0, []int{i}, viewer.Material{})
			}
			remaining[i] = 2 * rapid.IntRange(1, 3).Draw(t, fmt.Sprintf("pairs%d", i))
		}
		for {
			var pending []int
			for i, left := range remaining {
				if left > 0 {
					pending = append(pending, i)
				}
			}
			if len(pending) == 0 {
				break
			}
			i := rapid.SampledFrom(pending).Draw(t, "next")
			if remaining[i]%2 == 0 {
				r.Show(handles[i])
			} else {
				r.Hide(handles[i])
			}
			remaining[i]--
		}
		after := sc.Pickable().Members()
		if len(after) != len(before) {
			t.Fatalf("membership changed: before=%d after=%d", len(before), len(after))
		}
		for _, h := range before {
			if !sc.Pickable().Has(h) {
				t.Fatalf("handle %s lost", h.Label)
			}
		}
	})
}
