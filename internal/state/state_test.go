package state

import (
	"testing"

	"github.com/atomicstack/bimview/internal/menu"
	"github.com/atomicstack/bimview/internal/selection"
	"github.com/atomicstack/bimview/internal/session"
)

func TestModelStoreClonesSnapshot(t *testing.T) {
	store := NewModelStore()
	snap := session.Snapshot{
		Model:     &session.ModelInfo{ID: 1, Name: "a.ifc"},
		Plans:     []string{"102"},
		PlanNames: []string{"Ground Floor"},
		Selection: &selection.ElementRef{ModelID: 1, ElementID: 42},
	}
	store.SetSnapshot(snap)
	snap.Model.Name = "changed"
	snap.Plans[0] = "changed"
	snap.Selection.ElementID = 7

	got := store.Snapshot()
	if got.Model.Name != "a.ifc" || got.Plans[0] != "102" || got.Selection.ElementID != 42 {
		t.Fatalf("store shares memory with caller: %+v", got)
	}
	got.PlanNames[0] = "mutated"
	if store.Snapshot().PlanNames[0] != "Ground Floor" {
		t.Fatalf("store shares memory with reader")
	}
	if store.Seq() != 1 {
		t.Fatalf("expected seq 1, got %d", store.Seq())
	}
}

func TestElementStore(t *testing.T) {
	store := NewElementStore()
	if store.ModelID() != -1 {
		t.Fatalf("expected no model, got %d", store.ModelID())
	}
	entries := []menu.ElementEntry{{ID: 42, Type: "IFCDOOR"}}
	store.SetEntries(3, entries)
	entries[0].ID = 7
	if got := store.Entries(); len(got) != 1 || got[0].ID != 42 || store.ModelID() != 3 {
		t.Fatalf("unexpected entries %+v", got)
	}
	store.SetEntries(-1, nil)
	if store.Entries() != nil {
		t.Fatalf("expected entries cleared")
	}
}

func TestRecentStore(t *testing.T) {
	store := NewRecentStore()
	if store.Entries() != nil {
		t.Fatalf("expected empty store")
	}
	store.SetEntries([]menu.RecentEntry{{Path: "/a.ifc"}})
	got := store.Entries()
	got[0].Path = "/b.ifc"
	if store.Entries()[0].Path != "/a.ifc" {
		t.Fatalf("store shares memory with reader")
	}
}
