package headlessterm

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type recordingClipboard struct {
	target byte
	data   []byte
}

func (r *recordingClipboard) Read(clipboard byte) string { return "" }
func (r *recordingClipboard) Write(clipboard byte, data []byte) {
	r.target = clipboard
	r.data = data
}

func cellRune(t *testing.T, term *Terminal, x, y int) rune {
	t.Helper()
	line := term.ActiveScreen().Line(y)
	if line == nil {
		t.Fatalf("no line at row %d", y)
	}
	return line.At(x).Rune
}

func TestScenarioPlainText(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("hi\n")

	if got := cellRune(t, term, 0, 0); got != 'h' {
		t.Errorf("cell (0,0) = %q, want 'h'", got)
	}
	if got := cellRune(t, term, 1, 0); got != 'i' {
		t.Errorf("cell (1,0) = %q, want 'i'", got)
	}
	x, y := term.CursorPos()
	if x != 2 || y != 1 {
		t.Errorf("cursor = (%d,%d), want (2,1)", x, y)
	}
}

func TestScenarioCursorBackwardClampsAtColumnZero(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("A\x1b[2DB")

	if got := cellRune(t, term, 0, 0); got != 'B' {
		t.Errorf("cell (0,0) = %q, want 'B' (CUB clamps at column 0, B overwrites A)", got)
	}
	x, _ := term.CursorPos()
	if x != 1 {
		t.Errorf("cursor x = %d, want 1", x)
	}
}

func TestScenarioAltScreenIsolation(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("main")
	saveX, saveY := term.CursorPos()

	term.WriteString("\x1b[?1049h")
	term.WriteString("X")
	if got := cellRune(t, term, saveX, saveY); got != 'X' {
		t.Errorf("alt screen cell = %q, want 'X'", got)
	}

	term.WriteString("\x1b[?1049l")
	snap := term.Snapshot(SnapshotDetailText)
	for _, line := range snap.Lines {
		if strings.Contains(line.Text, "X") {
			t.Fatal("content written on the alternate screen leaked to the primary")
		}
	}
	if got := snap.Lines[0].Text; !strings.HasPrefix(got, "main") {
		t.Errorf("primary row 0 = %q, want original content", got)
	}
	x, y := term.CursorPos()
	if x != saveX || y != saveY {
		t.Errorf("cursor = (%d,%d), want restored (%d,%d)", x, y, saveX, saveY)
	}
}

func TestScenarioHomeClearWrite(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("some earlier output\r\nmore\r\n")
	term.WriteString("\x1b[1;1H\x1b[2JHELLO")

	snap := term.Snapshot(SnapshotDetailText)
	if got := snap.Lines[0].Text; !strings.HasPrefix(got, "HELLO") {
		t.Errorf("row 0 = %q, want HELLO at origin", got)
	}
	for y := 1; y < term.Rows(); y++ {
		if strings.TrimSpace(snap.Lines[y].Text) != "" {
			t.Fatalf("row %d not cleared: %q", y, snap.Lines[y].Text)
		}
	}
	x, y := term.CursorPos()
	if x != 5 || y != 0 {
		t.Errorf("cursor = (%d,%d), want (5,0)", x, y)
	}
}

func TestScenarioClipboardStore(t *testing.T) {
	clip := &recordingClipboard{}
	term := New(WithSize(24, 80), WithAllowWindowOps(true), WithClipboard(clip))
	term.WriteString("\x1b]52;c;aGVsbG8=\x07")

	if string(clip.data) != "hello" {
		t.Errorf("clipboard received %q, want %q", clip.data, "hello")
	}
	if clip.target != 'c' {
		t.Errorf("clipboard target = %q, want 'c'", clip.target)
	}
}

func TestClipboardStoreGatedByWindowOps(t *testing.T) {
	clip := &recordingClipboard{}
	term := New(WithSize(24, 80), WithClipboard(clip))
	term.WriteString("\x1b]52;c;aGVsbG8=\x07")

	if clip.data != nil {
		t.Error("OSC 52 must be ignored unless window ops are allowed")
	}
}

func TestScenarioFullScreenScrollsIntoHistory(t *testing.T) {
	term := New(WithSize(3, 20), WithHistoryLength(10))
	term.WriteString("l0\r\nl1\r\nl2")
	term.WriteString(strings.Repeat("\n", 3))

	snap := term.Snapshot(SnapshotDetailText)
	for y, line := range snap.Lines {
		if strings.TrimSpace(line.Text) != "" {
			t.Fatalf("visible row %d not empty after scrolling a full screen: %q", y, line.Text)
		}
	}

	if moved := term.ScrollHistoryUp(3); moved != 3 {
		t.Fatalf("ScrollHistoryUp(3) = %d, want 3", moved)
	}
	if got := trimmedLineText(term.ActiveScreen().Line(0)); got != "l0" {
		t.Errorf("scrolled-back top row = %q, want %q", got, "l0")
	}
}

func TestWideRuneInLastColumnWrapsFirst(t *testing.T) {
	term := New(WithSize(2, 4))
	term.WriteString("abc世")

	line0 := term.ActiveScreen().Line(0)
	if line0.At(3).Attrs.HasAttr(AttrWide) {
		t.Fatal("a wide glyph must never be split across the line end")
	}
	if !line0.Wrapped() {
		t.Error("the overflowing line must be marked wrapped")
	}

	line1 := term.ActiveScreen().Line(1)
	if line1.At(0).Rune != '世' || !line1.At(0).Attrs.HasAttr(AttrWide) {
		t.Errorf("expected the wide rune at (0,1), got %q", line1.At(0).Rune)
	}
	if !line1.At(1).Attrs.HasAttr(AttrDummy) {
		t.Error("expected the DUMMY spacer at (1,1)")
	}
}

func TestDeleteCharsOnDummyPatchesWideSibling(t *testing.T) {
	term := New(WithSize(2, 10))
	term.WriteString("世x")
	term.WriteString("\x1b[1;2H\x1b[P") // cursor onto the spacer half, DCH 1

	line := term.ActiveScreen().Line(0)
	if line.At(0).Attrs.HasAttr(AttrWide) {
		t.Error("DCH on the DUMMY half must blank the orphaned WIDE cell")
	}
	if got := line.At(1).Rune; got != 'x' {
		t.Errorf("cell 1 = %q, want 'x' shifted in", got)
	}
}

func TestInsertBlankAtDummyPatchesWidePair(t *testing.T) {
	term := New(WithSize(2, 10))
	term.WriteString("世")
	term.WriteString("\x1b[1;2H\x1b[@") // ICH at the spacer column

	line := term.ActiveScreen().Line(0)
	if line.At(0).Attrs.HasAttr(AttrWide) {
		t.Error("ICH at the DUMMY half must blank the split WIDE cell")
	}
	if line.At(2).Attrs.HasAttr(AttrDummy) {
		t.Error("the shifted DUMMY must not survive without its WIDE half")
	}
}

func TestEraseCharsOnDummyPatchesWideSibling(t *testing.T) {
	term := New(WithSize(2, 10))
	term.WriteString("世x")
	term.WriteString("\x1b[1;2H\x1b[X") // ECH over the spacer half

	line := term.ActiveScreen().Line(0)
	if line.At(0).Attrs.HasAttr(AttrWide) {
		t.Error("ECH over the DUMMY half must blank the orphaned WIDE cell")
	}
	if got := line.At(2).Rune; got != 'x' {
		t.Errorf("cell 2 = %q, want 'x' untouched by in-place erase", got)
	}
}

func TestResizeShiftAdjustsSelection(t *testing.T) {
	term := New(WithSize(5, 20), WithHistoryLength(10))
	term.WriteString("l0\r\nl1\r\nl2\r\nl3\r\nl4")

	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 0, Y: 3}, SnapNone, 0)
	sel.Update(CharPos{X: 1, Y: 3}, SelFinished)

	if err := term.Resize(3, 20); err != nil {
		t.Fatalf("resize: %v", err)
	}

	if !sel.IsSelected(CharPos{X: 0, Y: 1}) {
		t.Error("selection must follow content shifted up by a cursor-preserving resize")
	}
	if sel.IsSelected(CharPos{X: 0, Y: 3}) {
		t.Error("stale pre-resize coordinates must no longer be selected")
	}
	if got := sel.Text(); got != "l3" {
		t.Errorf("selection text after resize = %q, want %q", got, "l3")
	}
}

func TestDeviceStatusReportCursorPosition(t *testing.T) {
	var reply bytes.Buffer
	term := New(WithSize(24, 80), WithResponse(&reply))
	term.WriteString("\x1b[3;5H\x1b[6n")

	if got, want := reply.String(), "\x1b[3;5R"; got != want {
		t.Errorf("DSR reply = %q, want %q", got, want)
	}
}

func TestIdentifyTerminalReply(t *testing.T) {
	var reply bytes.Buffer
	term := New(WithSize(24, 80), WithResponse(&reply))
	term.WriteString("\x1b[c")

	if got, want := reply.String(), "\x1b[?6c"; got != want {
		t.Errorf("DA reply = %q, want %q", got, want)
	}
}

func TestIdentityConfigurable(t *testing.T) {
	var reply bytes.Buffer
	term := New(WithSize(24, 80), WithResponse(&reply), WithIdentity("\x1b[?62;c"))
	term.WriteString("\x1b[c")

	if got, want := reply.String(), "\x1b[?62;c"; got != want {
		t.Errorf("DA reply = %q, want %q", got, want)
	}
}

func TestScrollRegionKeepsOutsideRowsFixed(t *testing.T) {
	term := New(WithSize(4, 20))
	term.WriteString("AA\r\nBB\r\nCC\r\nDD")
	term.WriteString("\x1b[2;3r\x1b[1S")

	snap := term.Snapshot(SnapshotDetailText)
	want := []string{"AA", "CC", "", "DD"}
	for y, w := range want {
		if got := strings.TrimRight(snap.Lines[y].Text, " "); got != w {
			t.Errorf("row %d = %q, want %q", y, got, w)
		}
	}
}

func TestInsertLinesShiftsRegionDown(t *testing.T) {
	term := New(WithSize(4, 20))
	term.WriteString("AA\r\nBB\r\nCC\r\nDD")
	term.WriteString("\x1b[2;3r\x1b[2;1H\x1b[L")

	snap := term.Snapshot(SnapshotDetailText)
	want := []string{"AA", "", "BB", "DD"}
	for y, w := range want {
		if got := strings.TrimRight(snap.Lines[y].Text, " "); got != w {
			t.Errorf("row %d = %q, want %q", y, got, w)
		}
	}
}

func TestDeleteLinesShiftsRegionUp(t *testing.T) {
	term := New(WithSize(4, 20))
	term.WriteString("AA\r\nBB\r\nCC\r\nDD")
	term.WriteString("\x1b[2;3r\x1b[2;1H\x1b[M")

	snap := term.Snapshot(SnapshotDetailText)
	want := []string{"AA", "CC", "", "DD"}
	for y, w := range want {
		if got := strings.TrimRight(snap.Lines[y].Text, " "); got != w {
			t.Errorf("row %d = %q, want %q", y, got, w)
		}
	}
}

func TestOriginModeHomesToScrollTop(t *testing.T) {
	term := New(WithSize(10, 20))
	term.WriteString("\x1b[3;8r\x1b[?6h\x1b[1;1H")

	x, y := term.CursorPos()
	if x != 0 || y != 2 {
		t.Errorf("cursor = (%d,%d), want (0,2): origin mode addresses relative to the scroll top", x, y)
	}
}

func TestLineDrawingCharset(t *testing.T) {
	term := New(WithSize(2, 10))
	term.WriteString("\x1b(0q\x1b(Bq")

	if got := cellRune(t, term, 0, 0); got != '─' {
		t.Errorf("cell (0,0) = %q, want box-drawing horizontal", got)
	}
	if got := cellRune(t, term, 1, 0); got != 'q' {
		t.Errorf("cell (1,0) = %q, want literal 'q' after switching back to ASCII", got)
	}
}

func TestDecaln(t *testing.T) {
	term := New(WithSize(3, 4))
	term.WriteString("\x1b#8")

	for y := 0; y < term.Rows(); y++ {
		for x := 0; x < term.Cols(); x++ {
			if got := cellRune(t, term, x, y); got != 'E' {
				t.Fatalf("cell (%d,%d) = %q, want 'E'", x, y, got)
			}
		}
	}
}

func TestNewOutputSnapsViewportToLive(t *testing.T) {
	term := New(WithSize(3, 20), WithHistoryLength(10))
	term.WriteString("l0\r\nl1\r\nl2\r\nl3\r\nl4")

	term.ScrollHistoryUp(2)
	if !term.IsScrolledBack() {
		t.Fatal("expected scrolled-back state after ScrollHistoryUp")
	}

	term.WriteString("l5\r\n")
	if term.IsScrolledBack() {
		t.Error("new output must snap the viewport to live by default")
	}
}

func TestKeepScrollPositionHoldsViewport(t *testing.T) {
	term := New(WithSize(3, 20), WithHistoryLength(10), WithKeepScrollPosition(true))
	term.WriteString("l0\r\nl1\r\nl2\r\nl3\r\nl4")

	term.ScrollHistoryUp(2)
	top := trimmedLineText(term.ActiveScreen().Line(0))

	term.WriteString("l5\r\nl6")
	if !term.IsScrolledBack() {
		t.Fatal("keep-scroll-position must hold the scrolled-back state across new output")
	}
	if got := trimmedLineText(term.ActiveScreen().Line(0)); got != top {
		t.Errorf("viewport top changed from %q to %q despite keep-scroll-position", top, got)
	}
}

func TestWriteShowControlsRendersCaretNotation(t *testing.T) {
	term := New(WithSize(2, 20))
	term.WriteShowControls([]byte("a\x1bb"))

	snap := term.Snapshot(SnapshotDetailText)
	if got := snap.Lines[0].Text; got != "a^[b" {
		t.Errorf("row 0 = %q, want %q", got, "a^[b")
	}
}

func TestWriteShowControlsKeepsNewlines(t *testing.T) {
	term := New(WithSize(3, 20))
	term.WriteShowControls([]byte("one\r\ntwo"))

	snap := term.Snapshot(SnapshotDetailText)
	if snap.Lines[0].Text != "one" || snap.Lines[1].Text != "two" {
		t.Errorf("rows = %q / %q, want newline to keep its effect", snap.Lines[0].Text, snap.Lines[1].Text)
	}
}

func TestPrintModeCopiesOutputToSink(t *testing.T) {
	var sink bytes.Buffer
	term := New(WithSize(2, 20), WithPrintSink(&sink))
	term.SetPrintMode(true)
	term.WriteString("copy")

	if got := sink.String(); got != "copy" {
		t.Errorf("print sink received %q, want %q", got, "copy")
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("sink closed") }

func TestPrintSinkErrorDisablesPrintMode(t *testing.T) {
	term := New(WithSize(2, 20), WithPrintSink(failingWriter{}))
	term.SetPrintMode(true)
	term.WriteString("x")

	if term.HasMode(ModePrint) {
		t.Error("a print sink write error must disable print mode")
	}
}

func TestInputPreservesNonOverlappingSelection(t *testing.T) {
	term := New(WithSize(5, 20))
	term.WriteString("hello\r\n")

	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 0, Y: 0}, SnapNone, 0)
	sel.Update(CharPos{X: 4, Y: 0}, SelFinished)

	term.WriteString("below")
	if got := sel.Text(); got != "hello" {
		t.Errorf("selection lost by output that does not touch it: Text = %q", got)
	}
}

func TestInputThroughSelectionDropsIt(t *testing.T) {
	term := New(WithSize(5, 20))
	term.WriteString("hello")

	sel := term.Selection()
	sel.Start(term.ActiveScreen(), CharPos{X: 0, Y: 0}, SnapNone, 0)
	sel.Update(CharPos{X: 4, Y: 0}, SelFinished)

	term.WriteString("\x1b[1;1HX")
	if sel.Text() != "" {
		t.Error("overwriting a selected cell must drop the selection")
	}
}
