package dispatcher

import (
	"errors"
	"testing"

	"github.com/atomicstack/bimview/internal/backend"
	"github.com/atomicstack/bimview/internal/session"
	"github.com/atomicstack/bimview/internal/state"
	"github.com/atomicstack/bimview/internal/storage/sqlite"
	"github.com/atomicstack/bimview/internal/viewer"
)

func newDispatcher() (*Dispatcher, state.ModelStore, state.ElementStore, state.RecentStore) {
	m, e, r := state.NewModelStore(), state.NewElementStore(), state.NewRecentStore()
	return New(m, e, r), m, e, r
}

func TestHandleSnapshot(t *testing.T) {
	d, model, _, _ := newDispatcher()
	res := d.Handle(backend.Event{Kind: backend.KindSnapshot, Data: session.Snapshot{CurrentPlan: "102"}})
	if !res.SessionUpdated {
		t.Fatalf("expected session update")
	}
	if model.Snapshot().CurrentPlan != "102" {
		t.Fatalf("snapshot not stored")
	}
}

func TestHandleElements(t *testing.T) {
	d, _, elements, _ := newDispatcher()
	res := d.Handle(backend.Event{Kind: backend.KindElements, Data: backend.ElementsUpdate{
		ModelID:  2,
		Elements: []viewer.Element{{ID: 42, Type: "IFCDOOR", Name: "Exit"}},
	}})
	if !res.ElementsUpdated {
		t.Fatalf("expected elements update")
	}
	got := elements.Entries()
	if len(got) != 1 || got[0].ID != 42 || got[0].Name != "Exit" || elements.ModelID() != 2 {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestHandleRecent(t *testing.T) {
	d, _, _, recent := newDispatcher()
	res := d.Handle(backend.Event{Kind: backend.KindRecent, Data: []sqlite.Project{{Path: "/a.ifc", OpenCount: 3}}})
	if !res.RecentUpdated {
		t.Fatalf("expected recent update")
	}
	if got := recent.Entries(); len(got) != 1 || got[0].OpenCount != 3 {
		t.Fatalf("unexpected recent entries %+v", got)
	}
}

func TestHandleFileChanged(t *testing.T) {
	d, _, _, _ := newDispatcher()
	res := d.Handle(backend.Event{Kind: backend.KindFileChanged, Data: backend.FileChange{Path: "/a.ifc", Op: "WRITE"}})
	if res.Changed != "/a.ifc" {
		t.Fatalf("expected changed path, got %q", res.Changed)
	}
}

func TestHandleIgnoresErrorsAndForeignData(t *testing.T) {
	d, _, _, recent := newDispatcher()
	res := d.Handle(backend.Event{Kind: backend.KindRecent, Err: errors.New("boom"), Data: []sqlite.Project{{Path: "/a.ifc"}}})
	if res != (Result{}) || recent.Entries() != nil {
		t.Fatalf("expected errors to be ignored")
	}
	res = d.Handle(backend.Event{Kind: backend.KindSnapshot, Data: "nope"})
	if res.SessionUpdated {
		t.Fatalf("expected foreign data to be ignored")
	}
}
