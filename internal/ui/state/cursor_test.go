package state

import "testing"

func TestStepWraps(t *testing.T) {
	l := NewLevel("x", "X", items("a", "b", "c"), nil)
	if !l.Step(-1, true) || l.Cursor != 2 {
		t.Fatalf("expected wrap to last item, got %d", l.Cursor)
	}
	if !l.Step(1, true) || l.Cursor != 0 {
		t.Fatalf("expected wrap to first item, got %d", l.Cursor)
	}
}

func TestStepClampsWithoutWrap(t *testing.T) {
	l := NewLevel("x", "X", items("a", "b"), nil)
	if l.Step(-1, false) {
		t.Fatalf("expected no movement at top")
	}
	if !l.MoveCursorEnd() || l.Cursor != 1 {
		t.Fatalf("expected cursor at end, got %d", l.Cursor)
	}
	if !l.MoveCursorHome() || l.Cursor != 0 {
		t.Fatalf("expected cursor at home, got %d", l.Cursor)
	}
}

func TestStepOnEmptyLevel(t *testing.T) {
	l := NewLevel("x", "X", nil, nil)
	if l.Step(1, true) {
		t.Fatalf("expected no movement on empty level")
	}
}

func TestPageMovement(t *testing.T) {
	l := NewLevel("x", "X", items("0", "1", "2", "3", "4", "5", "6"), nil)
	l.MoveCursorPageDown(3)
	if l.Cursor != 3 {
		t.Fatalf("expected cursor 3, got %d", l.Cursor)
	}
	l.MoveCursorPageDown(3)
	l.MoveCursorPageDown(3)
	if l.Cursor != 6 {
		t.Fatalf("expected cursor clamped at 6, got %d", l.Cursor)
	}
	l.MoveCursorPageUp(3)
	if l.Cursor != 3 {
		t.Fatalf("expected cursor 3 after page up, got %d", l.Cursor)
	}
}

func TestEnsureCursorVisible(t *testing.T) {
	l := NewLevel("x", "X", items("0", "1", "2", "3", "4", "5"), nil)
	l.Cursor = 5
	l.EnsureCursorVisible(2)
	if l.ViewportOffset != 4 {
		t.Fatalf("expected offset 4, got %d", l.ViewportOffset)
	}
	l.Cursor = 1
	l.EnsureCursorVisible(2)
	if l.ViewportOffset != 1 {
		t.Fatalf("expected offset 1, got %d", l.ViewportOffset)
	}
	l.EnsureCursorVisible(0)
	if l.ViewportOffset != 0 {
		t.Fatalf("expected offset reset, got %d", l.ViewportOffset)
	}
}
