package headlessterm

import "testing"

func newTestTerm(rows, cols int, content string) *Terminal {
	term := New(WithSize(rows, cols))
	term.WriteString(content)
	return term
}

func TestSelectionStateMachine(t *testing.T) {
	term := newTestTerm(3, 20, "hello world")
	sel := term.Selection()

	if sel.state != selIdle {
		t.Fatal("a fresh selection must be IDLE")
	}

	sel.Start(term.ActiveScreen(), CharPos{X: 0, Y: 0}, SnapNone, 0)
	if sel.state != selEmpty {
		t.Fatal("Start without a snap must enter EMPTY")
	}

	sel.Update(CharPos{X: 4, Y: 0}, 0)
	if sel.state != selReady {
		t.Fatal("Update must advance EMPTY to READY")
	}

	sel.Update(CharPos{X: 4, Y: 0}, SelFinished)
	if sel.state != selIdle {
		t.Fatal("a finished selection must return to IDLE")
	}
	if sel.Text() != "hello" {
		t.Errorf("Text after finish = %q, want %q", sel.Text(), "hello")
	}
}

func TestSelectionFinishedWhileEmptyClears(t *testing.T) {
	term := newTestTerm(3, 20, "hello")
	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 0, Y: 0}, SnapNone, 0)
	sel.Update(CharPos{X: 0, Y: 0}, SelFinished)
	if sel.Text() == "hello" {
		t.Error("a selection released without ever extending must not produce text")
	}
}

func TestSelectionSnapStartsReady(t *testing.T) {
	term := newTestTerm(3, 20, "foo bar baz")
	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 5, Y: 0}, SnapWord, 0)
	if sel.state != selReady {
		t.Fatal("Start with a snap must enter READY directly")
	}
}

func TestSnapWordSelectsWholeWord(t *testing.T) {
	term := newTestTerm(3, 20, "foo bar baz")
	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 5, Y: 0}, SnapWord, 0)
	if got := sel.Text(); got != "bar" {
		t.Errorf("word snap at middle of %q = %q, want %q", "bar", got, "bar")
	}
}

func TestSnapWordOnDelimiterDoesNotExpand(t *testing.T) {
	term := newTestTerm(3, 20, "foo bar")
	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 3, Y: 0}, SnapWord, 0)
	if got := sel.Text(); got != " " {
		t.Errorf("word snap starting on a delimiter = %q, want single space", got)
	}
}

func TestSnapLineFollowsWrappedLines(t *testing.T) {
	term := newTestTerm(3, 5, "abcdefgh")
	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 1, Y: 1}, SnapLine, 0)
	if got := sel.Text(); got != "abcdefgh" {
		t.Errorf("line snap over a wrapped line = %q, want %q", got, "abcdefgh")
	}
}

func TestSnapWordExtendsToFullURI(t *testing.T) {
	term := newTestTerm(3, 40, "see https://example.com/x here")
	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 12, Y: 0}, SnapWord, 0)
	if got := sel.Text(); got != "https://example.com/x" {
		t.Errorf("URI snap = %q, want %q", got, "https://example.com/x")
	}
}

func TestRectangularSelection(t *testing.T) {
	term := newTestTerm(3, 10, "abcdef\r\nghijkl")
	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 1, Y: 0}, SnapNone, SelRectangular)
	sel.Update(CharPos{X: 2, Y: 1}, SelRectangular)
	if got := sel.Text(); got != "bc\nhi" {
		t.Errorf("rectangular Text = %q, want %q", got, "bc\nhi")
	}
}

func TestFullLinesSelection(t *testing.T) {
	term := newTestTerm(3, 10, "abcdef\r\nghijkl")
	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 3, Y: 0}, SnapNone, SelFullLines)
	sel.Update(CharPos{X: 1, Y: 1}, SelFullLines)
	if got := sel.Text(); got != "abcdef\nghijkl" {
		t.Errorf("full-lines Text = %q, want %q", got, "abcdef\nghijkl")
	}
}

func TestIsSelectedRegularRange(t *testing.T) {
	term := newTestTerm(3, 10, "abcdef\r\nghijkl")
	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 3, Y: 0}, SnapNone, 0)
	sel.Update(CharPos{X: 2, Y: 1}, 0)

	for _, tt := range []struct {
		pos  CharPos
		want bool
	}{
		{CharPos{X: 3, Y: 0}, true},
		{CharPos{X: 9, Y: 0}, true}, // regular selection spans to end of first row
		{CharPos{X: 2, Y: 0}, false},
		{CharPos{X: 0, Y: 1}, true},
		{CharPos{X: 3, Y: 1}, false},
		{CharPos{X: 0, Y: 2}, false},
	} {
		if got := sel.IsSelected(tt.pos); got != tt.want {
			t.Errorf("IsSelected(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestSelectionInvalidatedByAltScreenSwitch(t *testing.T) {
	term := newTestTerm(3, 20, "hello world")
	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 0, Y: 0}, SnapNone, 0)
	sel.Update(CharPos{X: 4, Y: 0}, SelFinished)

	term.WriteString("\x1b[?1049h")
	if sel.IsSelected(CharPos{X: 0, Y: 0}) {
		t.Error("switching to the alternate screen must invalidate the selection")
	}
}

func TestSelectionScrollShiftsRange(t *testing.T) {
	term := newTestTerm(5, 20, "aaa\r\nbbb\r\nccc")
	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 0, Y: 1}, SnapNone, 0)
	sel.Update(CharPos{X: 2, Y: 2}, SelFinished)

	sel.Scroll(0, 1)
	if !sel.IsSelected(CharPos{X: 0, Y: 0}) {
		t.Error("selection must follow content shifted up by a scroll")
	}
	if sel.IsSelected(CharPos{X: 0, Y: 2}) {
		t.Error("the old bottom row must no longer be selected after the shift")
	}
}

func TestSelectionScrollOffTopClears(t *testing.T) {
	term := newTestTerm(5, 20, "aaa\r\nbbb")
	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 0, Y: 0}, SnapNone, 0)
	sel.Update(CharPos{X: 2, Y: 0}, SelFinished)

	sel.Scroll(0, 3)
	if sel.IsSelected(CharPos{X: 0, Y: 0}) {
		t.Error("a selection shifted past the top must clear")
	}
}

func TestSelectionClampsToUsedLength(t *testing.T) {
	term := newTestTerm(3, 20, "hi")
	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 0, Y: 0}, SnapNone, 0)
	sel.Update(CharPos{X: 19, Y: 0}, SelFinished)
	if got := sel.Text(); got != "hi" {
		t.Errorf("Text dragged past content = %q, want trailing padding dropped (%q)", got, "hi")
	}
}
