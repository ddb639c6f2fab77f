package table

import "testing"

func TestFormatAlignsColumns(t *testing.T) {
	rows := [][]string{
		{"#3729", "DOOR", "Exit door"},
		{"#42", "SLAB", ""},
	}
	got := Format(rows, []Alignment{AlignRight, AlignLeft, AlignLeft})
	want := []string{
		"#3729  DOOR  Exit door",
		"  #42  SLAB",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestFormatDropsEmptyColumns(t *testing.T) {
	rows := [][]string{
		{"Ground Floor", "", "current"},
		{"Level 1", "", ""},
	}
	got := Format(rows, nil)
	if got[0] != "Ground Floor  current" {
		t.Fatalf("unexpected first row %q", got[0])
	}
	if got[1] != "Level 1" {
		t.Fatalf("unexpected second row %q", got[1])
	}
}

func TestFormatMeasuresWideRunes(t *testing.T) {
	rows := [][]string{{"階段", "x"}, {"ab", "y"}}
	got := Format(rows, nil)
	if got[0] != "階段  x" || got[1] != "ab    y" {
		t.Fatalf("unexpected rows %q", got)
	}
}

func TestFormatEmpty(t *testing.T) {
	if got := Format(nil, nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
