package headlessterm

import (
	"strconv"
	"testing"
)

func TestRingSizeInvariant(t *testing.T) {
	s := NewScreen(24, 80, 100, false)
	if got, want := s.ringSize(), 100+24+1; got != want {
		t.Fatalf("ringSize = %d, want historyLen+rows+1 = %d", got, want)
	}
	for y := 0; y < s.Rows(); y++ {
		if p := s.bufPos(y); p < 0 || p >= s.ringSize() {
			t.Errorf("bufPos(%d) = %d out of ring bounds", y, p)
		}
	}
}

func TestAltScreenHasNoHistory(t *testing.T) {
	s := NewScreen(24, 80, 100, true)
	if got, want := s.ringSize(), 24+1; got != want {
		t.Fatalf("alt ringSize = %d, want rows+1 = %d", got, want)
	}
	if s.ScrollHistoryUp(5) != 0 {
		t.Error("alternate screen must never scroll into history")
	}
}

// fillRows writes numbered content into each visible row.
func fillRows(s *Screen) {
	for y := 0; y < s.Rows(); y++ {
		setLineText(s.Line(y), "row"+strconv.Itoa(y))
	}
}

func TestShiftViewUpMovesContentToHistory(t *testing.T) {
	s := NewScreen(3, 10, 5, false)
	fillRows(s)

	s.ShiftViewUp(2, blankGlyph)

	// "row2" is now the top visible row; "row0"/"row1" are scrollback.
	if got := trimmedLineText(s.Line(0)); got != "row2" {
		t.Fatalf("top row after shift = %q, want %q", got, "row2")
	}

	moved := s.ScrollHistoryUp(2)
	if moved != 2 {
		t.Fatalf("ScrollHistoryUp(2) = %d, want 2", moved)
	}
	if got := trimmedLineText(s.Line(0)); got != "row0" {
		t.Errorf("scrolled-back top row = %q, want %q", got, "row0")
	}
}

func TestScrollHistoryBoundedByContent(t *testing.T) {
	s := NewScreen(3, 10, 5, false)
	fillRows(s)
	s.ShiftViewUp(2, blankGlyph)

	if moved := s.ScrollHistoryUp(100); moved != 2 {
		t.Errorf("ScrollHistoryUp(100) = %d, want 2 (only two non-empty prior lines)", moved)
	}
}

func TestScrollHistoryMonotone(t *testing.T) {
	s := NewScreen(3, 10, 5, false)
	fillRows(s)
	s.ShiftViewUp(2, blankGlyph)

	up := s.ScrollHistoryUp(2)
	down := s.ScrollHistoryDown(up)
	if down > up {
		t.Errorf("ScrollHistoryDown(%d) = %d, must never exceed the prior up", up, down)
	}
	if down != up {
		t.Errorf("with no new output, down (%d) should equal up (%d)", down, up)
	}
}

func TestScrollHistoryDownClampsAtLive(t *testing.T) {
	s := NewScreen(3, 10, 5, false)
	if moved := s.ScrollHistoryDown(10); moved != 0 {
		t.Errorf("ScrollHistoryDown on a live screen = %d, want 0", moved)
	}
}

func TestSaveRestoreScrollState(t *testing.T) {
	s := NewScreen(3, 10, 5, false)
	fillRows(s)
	s.ShiftViewUp(2, blankGlyph)
	s.ScrollHistoryUp(2)

	s.SaveScrollState()
	s.ScrollHistoryDown(2)

	if !s.RestoreScrollState() {
		t.Fatal("expected restore to succeed while the saved row is still in the ring")
	}
	if got := trimmedLineText(s.Line(0)); got != "row0" {
		t.Errorf("restored top row = %q, want %q", got, "row0")
	}
}

func TestRestoreScrollStateFailsAfterOverwrite(t *testing.T) {
	s := NewScreen(3, 10, 2, false)
	fillRows(s)
	s.SaveScrollState()

	// Rotate far enough that the saved ring slot has been reused.
	s.ShiftViewUp(s.ringSize()-1, blankGlyph)

	if s.RestoreScrollState() {
		t.Fatal("expected restore to fail once the saved index was overwritten")
	}
	if s.scrollOffset != 0 {
		t.Errorf("failed restore must reset the viewport to live, got offset %d", s.scrollOffset)
	}
}

func TestSetDimensionRejectsOversizedHeight(t *testing.T) {
	s := NewScreen(3, 10, 2, false)
	err := s.SetDimension(s.ringSize(), 10, blankGlyph)
	if err == nil {
		t.Fatal("expected a FatalError for rows > ringSize-1")
	}
	if _, ok := err.(*FatalError); !ok {
		t.Errorf("got %T, want *FatalError", err)
	}
}

func TestSetDimensionColumnShrinkPreservesOnMain(t *testing.T) {
	s := NewScreen(2, 10, 2, false)
	setLineText(s.Line(0), "abcdefghij")

	if err := s.SetDimension(2, 4, blankGlyph); err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if err := s.SetDimension(2, 10, blankGlyph); err != nil {
		t.Fatalf("grow: %v", err)
	}
	if got := trimmedLineText(s.Line(0)); got != "abcdefghij" {
		t.Errorf("main screen content after shrink/grow = %q, want preserved", got)
	}
}

func TestSetDimensionColumnShrinkTruncatesOnAlt(t *testing.T) {
	s := NewScreen(2, 10, 0, true)
	setLineText(s.Line(0), "abcdefghij")

	if err := s.SetDimension(2, 4, blankGlyph); err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if err := s.SetDimension(2, 10, blankGlyph); err != nil {
		t.Fatalf("grow: %v", err)
	}
	if got := trimmedLineText(s.Line(0)); got == "abcdefghij" {
		t.Error("alt screen must not preserve content across a shrink/grow cycle")
	}
}

func TestAsTextOrderingWithHistory(t *testing.T) {
	s := NewScreen(2, 10, 4, false)
	setLineText(s.Line(0), "one")
	setLineText(s.Line(1), "two")
	s.ShiftViewUp(2, blankGlyph)
	setLineText(s.Line(0), "three")

	if got, want := s.AsText(0), "one\ntwo\nthree"; got != want {
		t.Errorf("AsText = %q, want %q", got, want)
	}
}

func TestAsTextSuppressesTrailingEmptyPastCursor(t *testing.T) {
	s := NewScreen(4, 10, 2, false)
	setLineText(s.Line(0), "prompt")

	if got := s.AsText(0); got != "prompt" {
		t.Errorf("AsText = %q, want just %q", got, "prompt")
	}
}

func TestAsTextIgnoresViewportScroll(t *testing.T) {
	s := NewScreen(2, 10, 4, false)
	setLineText(s.Line(0), "one")
	setLineText(s.Line(1), "two")
	s.ShiftViewUp(2, blankGlyph)
	setLineText(s.Line(0), "three")

	live := s.AsText(0)
	s.ScrollHistoryUp(2)
	if scrolled := s.AsText(0); scrolled != live {
		t.Errorf("AsText changed under viewport scroll: %q vs %q", scrolled, live)
	}
}

func TestIteratorUnaffectedByViewportScroll(t *testing.T) {
	s := NewScreen(3, 10, 5, false)
	fillRows(s)
	s.ShiftViewUp(2, blankGlyph)

	collect := func() []string {
		out := make([]string, 0, s.ringSize())
		it := s.Iterator()
		for {
			l, ok := it.IterNext()
			if !ok {
				break
			}
			out = append(out, trimmedLineText(l))
		}
		return out
	}

	live := collect()
	s.ScrollHistoryUp(2)
	scrolled := collect()

	if len(live) != len(scrolled) {
		t.Fatalf("iteration length changed under scroll: %d vs %d", len(live), len(scrolled))
	}
	for i := range live {
		if live[i] != scrolled[i] {
			t.Fatalf("line %d changed under viewport scroll: %q vs %q", i, live[i], scrolled[i])
		}
	}
}

func TestIteratorVisitsFullRing(t *testing.T) {
	s := NewScreen(3, 10, 5, false)
	it := s.Iterator()
	count := 0
	for {
		l, ok := it.IterNext()
		if !ok {
			break
		}
		if l == nil {
			t.Fatal("iterator yielded a nil line")
		}
		count++
	}
	if count != s.ringSize() {
		t.Errorf("iterator visited %d lines, want %d", count, s.ringSize())
	}
}
