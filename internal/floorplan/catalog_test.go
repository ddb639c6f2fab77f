package floorplan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/atomicstack/bimview/internal/viewer"
)

type fakeEngine struct {
	plans      []viewer.Plan
	computeErr error
	edgesErr   error
	onCompute  func()
	goTo       []string
	overlays   map[string]bool
}

func newFakeEngine(names ...string) *fakeEngine {
	f := &fakeEngine{overlays: make(map[string]bool)}
	f.setPlans(names...)
	return f
}

func (f *fakeEngine) setPlans(names ...string) {
	f.plans = nil
	for _, n := range names {
		f.plans = append(f.plans, viewer.Plan{ID: n, Name: n})
	}
}

func (f *fakeEngine) ComputeAllPlans(ctx context.Context, modelID int) error {
	if f.onCompute != nil {
		f.onCompute()
	}
	return f.computeErr
}

func (f *fakeEngine) CreateEdges(ctx context.Context, name string, modelID int, line, base viewer.Material) error {
	return f.edgesErr
}

func (f *fakeEngine) ListPlans(modelID int) []string {
	out := make([]string, 0, len(f.plans))
	for _, p := range f.plans {
		out = append(out, p.ID)
	}
	return out
}

func (f *fakeEngine) Plans(modelID int) []viewer.Plan { return f.plans }

func (f *fakeEngine) GoToPlan(modelID int, name string) { f.goTo = append(f.goTo, name) }

func (f *fakeEngine) ToggleOverlay(name string, visible bool) { f.overlays[name] = visible }

var model = &viewer.Model{ID: 0, Name: "A"}

func TestRecomputeReplacesSentinel(t *testing.T) {
	c := New(newFakeEngine("Ground Floor", "Level 1"))
	assert.Equal(t, []string{NoProjectLoaded}, c.Current())
	assert.False(t, c.Loaded())

	var emitted [][]string
	c.Subscribe(func(list []string) { emitted = append(emitted, list) })

	list, err := c.Recompute(context.Background(), model)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ground Floor", "Level 1"}, list)
	assert.Equal(t, [][]string{{"Ground Floor", "Level 1"}}, emitted)
	assert.True(t, c.Loaded())
	assert.True(t, c.Contains("Level 1"))
	assert.False(t, c.Contains(NoProjectLoaded))
}

func TestEmptyLoadedListDiffersFromSentinel(t *testing.T) {
	c := New(newFakeEngine())
	_, err := c.Recompute(context.Background(), model)
	require.NoError(t, err)
	assert.True(t, c.Loaded())
	assert.Empty(t, c.Current())
}

func TestRecomputeFailureKeepsOldList(t *testing.T) {
	engine := newFakeEngine("Ground Floor")
	c := New(engine)
	_, err := c.Recompute(context.Background(), model)
	require.NoError(t, err)

	engine.setPlans("Other")
	engine.edgesErr = errors.New("edges")
	notified := 0
	c.Subscribe(func([]string) { notified++ })
	_, err = c.Recompute(context.Background(), model)
	require.Error(t, err)
	assert.Equal(t, []string{"Ground Floor"}, c.Current())
	assert.Zero(t, notified)

	engine.edgesErr = nil
	engine.computeErr = errors.New("compute")
	_, err = c.Recompute(context.Background(), model)
	require.Error(t, err)
	assert.Equal(t, []string{"Ground Floor"}, c.Current())
}

func TestSubscribersGetCopies(t *testing.T) {
	c := New(newFakeEngine("a", "b"))
	c.Subscribe(func(list []string) { list[0] = "mutated" })
	list, err := c.Recompute(context.Background(), model)
	require.NoError(t, err)
	list[1] = "mutated"
	assert.Equal(t, []string{"a", "b"}, c.Current())
}

func TestGoToDoesNotValidate(t *testing.T) {
	engine := newFakeEngine("102")
	c := New(engine)
	require.NoError(t, c.GoTo(context.Background(), model, "999"))
	require.NoError(t, c.GoTo(context.Background(), model, "102"))
	assert.Equal(t, []string{"999", "102"}, engine.goTo)
	assert.True(t, engine.overlays[EdgesOverlay])
	assert.ErrorIs(t, c.GoTo(context.Background(), nil, "102"), viewer.ErrUnknownModel)
}

func TestDisplayNameFallsBackToID(t *testing.T) {
	engine := newFakeEngine()
	engine.plans = []viewer.Plan{{ID: "102", Name: "Ground Floor"}, {ID: "103"}}
	c := New(engine)
	_, err := c.Recompute(context.Background(), model)
	require.NoError(t, err)
	assert.Equal(t, "Ground Floor", c.DisplayName("102"))
	assert.Equal(t, "103", c.DisplayName("103"))
}

func TestClearPublishesEmptyLoadedList(t *testing.T) {
	c := New(newFakeEngine("a"))
	_, err := c.Recompute(context.Background(), model)
	require.NoError(t, err)
	var last []string
	c.Subscribe(func(list []string) { last = list })
	c.Clear(model)
	assert.True(t, c.Loaded())
	assert.Empty(t, c.Current())
	assert.NotNil(t, last)
	assert.Empty(t, last)
	assert.NotContains(t, c.Current(), NoProjectLoaded)
	assert.False(t, c.Contains("a"))
}

func TestClearFromSentinelMarksLoaded(t *testing.T) {
	c := New(newFakeEngine())
	require.False(t, c.Loaded())
	c.Clear(model)
	assert.True(t, c.Loaded())
	assert.Equal(t, []string{}, c.Current())
}

// Observers, whether reading mid-recompute or concurrently, only ever see the
// old or the new list.
func TestRecomputeAtomicProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gen := rapid.SliceOfN(rapid.StringMatching(`[A-Z][a-z]{0,5}`), 0, 6)
		oldNames := gen.Draw(t, "old")
		newNames := gen.Draw(t, "new")

		engine := newFakeEngine(oldNames...)
		c := New(engine)
		if _, err := c.Recompute(context.Background(), model); err != nil {
			t.Fatalf("recompute: %v", err)
		}
		oldList := c.Current()
		engine.setPlans(newNames...)
		newList := engine.ListPlans(0)

		valid := func(got []string) bool {
			return fmt.Sprint(got) == fmt.Sprint(oldList) || fmt.Sprint(got) == fmt.Sprint(newList)
		}
		engine.onCompute = func() {
			if got := c.Current(); !valid(got) {
				t.Fatalf("mid-recompute observer saw %v", got)
			}
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		var seen [][]string
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					got := c.Current()
					mu.Lock()
					seen = append(seen, got)
					mu.Unlock()
				}
			}()
		}
		if _, err := c.Recompute(context.Background(), model); err != nil {
			t.Fatalf("recompute: %v", err)
		}
		wg.Wait()
		for _, got := range seen {
			if !valid(got) {
				t.Fatalf("concurrent observer saw %v", got)
			}
		}
		if got := c.Current(); fmt.Sprint(got) != fmt.Sprint(newList) {
			t.Fatalf("final list %v, want %v", got, newList)
		}
	})
}
