package state

import (
	"testing"

	"github.com/atomicstack/bimview/internal/menu"
)

func TestSetFilterNarrowsAndRestoresCursor(t *testing.T) {
	l := NewLevel("x", "X", items("alpha", "beta", "gamma"), nil)
	l.Cursor = 2
	l.SetFilter("bet", 3)
	if len(l.Items) != 1 || l.Items[0].ID != "beta" {
		t.Fatalf("unexpected filtered items %+v", l.Items)
	}
	l.SetFilter("", 0)
	if len(l.Items) != 3 {
		t.Fatalf("expected full list back, got %d", len(l.Items))
	}
	if l.Cursor != 2 {
		t.Fatalf("expected cursor restored to 2, got %d", l.Cursor)
	}
}

func TestFilterItemsFallsBackToID(t *testing.T) {
	list := []menu.Item{
		{ID: "3729", Label: "DOOR  Exit door"},
		{ID: "42", Label: "SLAB  Floor"},
	}
	got := FilterItems(list, "3729")
	if len(got) != 1 || got[0].ID != "3729" {
		t.Fatalf("expected id match, got %+v", got)
	}
}

func TestBestMatchPrefersExactLabel(t *testing.T) {
	list := items("level 10", "level 1", "level 2")
	if got := BestMatchIndex(list, "level 1"); got != 1 {
		t.Fatalf("expected exact match at 1, got %d", got)
	}
	if got := BestMatchIndex(nil, "x"); got != -1 {
		t.Fatalf("expected -1 for empty list, got %d", got)
	}
}

func TestFilterEditing(t *testing.T) {
	l := NewLevel("x", "X", items("ground floor"), nil)
	l.InsertFilterText("ground")
	l.InsertFilterText(" fl")
	if l.Filter != "ground fl" || l.FilterCursorPos() != 9 {
		t.Fatalf("unexpected filter %q at %d", l.Filter, l.FilterCursorPos())
	}
	if !l.DeleteFilterWordBackward() || l.Filter != "ground " {
		t.Fatalf("expected word deleted, got %q", l.Filter)
	}
	if !l.DeleteFilterRuneBackward() || l.Filter != "ground" {
		t.Fatalf("expected rune deleted, got %q", l.Filter)
	}
	l.MoveFilterCursorStart()
	if l.DeleteFilterRuneBackward() {
		t.Fatalf("expected no deletion at start")
	}
	l.InsertFilterText(">")
	if l.Filter != ">ground" {
		t.Fatalf("expected insertion at cursor, got %q", l.Filter)
	}
}

func TestFilterWordMotion(t *testing.T) {
	l := NewLevel("x", "X", nil, nil)
	l.SetFilter("one two three", 0)
	l.MoveFilterCursorWordForward()
	if l.FilterCursorPos() != 4 {
		t.Fatalf("expected cursor 4, got %d", l.FilterCursorPos())
	}
	l.MoveFilterCursorEnd()
	l.MoveFilterCursorWordBackward()
	if l.FilterCursorPos() != 8 {
		t.Fatalf("expected cursor 8, got %d", l.FilterCursorPos())
	}
	l.MoveFilterCursorRuneBackward()
	l.MoveFilterCursorRuneForward()
	if l.FilterCursorPos() != 8 {
		t.Fatalf("expected cursor 8 after rune moves, got %d", l.FilterCursorPos())
	}
	if l.MoveFilterCursorEnd(); l.MoveFilterCursorRuneForward() {
		t.Fatalf("expected no move past end")
	}
}
