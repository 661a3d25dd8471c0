package headlessterm

import "fmt"

// FatalError marks an error the caller cannot recover from locally; per the
// resource-error contract, a Screen resize request that cannot fit in the
// ring is reported this way rather than silently clamped.
type FatalError struct {
	msg string
}

func (e *FatalError) Error() string { return e.msg }

// ScreenIterator walks a Screen's ring buffer forward, wrapping at the ring
// boundary. It offers no random access since a ring position has no
// well-defined absolute index outside the current head/offset state.
type ScreenIterator struct {
	s      *Screen
	pos    int
	remain int
}

// Next reports whether a line is available and consumes one step of the
// iterator's budget; it does not move the position (IterNext does that).
func (it *ScreenIterator) Next() bool {
	if it.remain <= 0 {
		return false
	}
	it.remain--
	return true
}

// Line returns the line at the iterator's current position.
func (it *ScreenIterator) Line() *Line {
	return it.s.ring[it.pos]
}

// advance is called after Line() is consumed, moving to the next ring slot.
func (it *ScreenIterator) advance() {
	it.pos = (it.pos + 1) % len(it.s.ring)
}

// Screen is a ring buffer of Lines plus the viewport and scroll state
// needed to address it. The ring size is always historyLen + rows + 1; the
// extra slot keeps a half-open iterator range from ever aliasing the
// visible screen.
type Screen struct {
	ring       []*Line
	cols       int
	rows       int
	historyLen int

	head            int
	scrollOffset    int
	savedScrollIdx  int
	haveSavedScroll bool

	isAlt  bool
	cursor Cursor
}

// NewScreen builds a Screen sized rows x (historyLen+rows+1). isAlt screens
// always have historyLen forced to 0 regardless of the requested value, per
// the alternate-screen invariant.
func NewScreen(rows, cols, historyLen int, isAlt bool) *Screen {
	if isAlt {
		historyLen = 0
	}
	ringSize := historyLen + rows + 1
	s := &Screen{
		cols:       cols,
		rows:       rows,
		historyLen: historyLen,
		isAlt:      isAlt,
		ring:       make([]*Line, ringSize),
	}
	for i := range s.ring {
		s.ring[i] = newLine(cols)
	}
	return s
}

// ringSize returns the current ring capacity.
func (s *Screen) ringSize() int {
	return len(s.ring)
}

// Rows reports the viewport height.
func (s *Screen) Rows() int { return s.rows }

// Cols reports the viewport width.
func (s *Screen) Cols() int { return s.cols }

// IsAlt reports whether this Screen is the alternate screen.
func (s *Screen) IsAlt() bool { return s.isAlt }

// bufPos maps a screen-relative row y in [0, rows) to its ring slot.
func (s *Screen) bufPos(y int) int {
	n := s.ringSize()
	p := (s.head + y - s.scrollOffset) % n
	if p < 0 {
		p += n
	}
	return p
}

// Line returns the line currently displayed at viewport row y. Callers
// must not retain the pointer across a mutating Screen operation; take
// CloneLine for that.
func (s *Screen) Line(y int) *Line {
	if y < 0 || y >= s.rows {
		return nil
	}
	return s.ring[s.bufPos(y)]
}

// CloneLine is Line but returns an independent copy, used by snapshotting.
func (s *Screen) CloneLine(y int) *Line {
	l := s.Line(y)
	if l == nil {
		return nil
	}
	return l.clone()
}

// CachedCursor returns the screen's cached cursor state (written on DECSC /
// read on DECRC, and implicitly stashed across an alt-screen switch).
func (s *Screen) CachedCursor() Cursor { return s.cursor }

// SetCachedCursor replaces the cached cursor.
func (s *Screen) SetCachedCursor(c Cursor) { s.cursor = c }

// SetDimension reshapes the screen. It halts any active history scroll,
// rejects a requested row count above ringSize()-1 as fatal (a caller
// cannot address more live rows than the ring has slots for minus the
// mandatory spare slot), and applies resize(cols, fill) to every line.
// Shrinking rows clears any lines that leave the viewport at the bottom
// when history exists, since that content becomes unreachable scrollback
// rather than being durably retained.
func (s *Screen) SetDimension(rows, cols int, fill Glyph) error {
	s.scrollOffset = 0

	if rows > s.ringSize()-1 {
		return &FatalError{msg: fmt.Sprintf("requested height %d exceeds ring capacity %d", rows, s.ringSize()-1)}
	}

	if cols != s.cols {
		keepOnShrink := !s.isAlt
		for _, l := range s.ring {
			l.resize(cols, keepOnShrink, fill)
		}
		s.cols = cols
	}

	if rows < s.rows && s.historyLen > 0 {
		for y := rows; y < s.rows; y++ {
			if l := s.Line(y); l != nil {
				l.Clear(0, l.Cols(), fill)
			}
		}
	}

	s.rows = rows
	return nil
}

// countNonEmptyAbove counts how many ring lines above the current viewport
// top carry visible content, bounded by historyLen.
func (s *Screen) countNonEmptyAbove() int {
	n := s.ringSize()
	avail := 0
	for i := 1; i <= s.historyLen-s.scrollOffset; i++ {
		p := s.head - s.scrollOffset - i
		p = ((p % n) + n) % n
		if s.ring[p].usedLength() == 0 && !s.ring[p].Wrapped() {
			break
		}
		avail++
	}
	return avail
}

// ScrollHistoryUp moves the viewport back into scrollback by up to n lines,
// bounded by the number of non-empty prior lines actually available. It
// returns the number of lines the viewport actually moved. The alternate
// screen has no history and always returns 0.
func (s *Screen) ScrollHistoryUp(n int) int {
	if s.isAlt || n <= 0 {
		return 0
	}
	avail := s.countNonEmptyAbove()
	if n > avail {
		n = avail
	}
	s.scrollOffset += n
	return n
}

// ScrollHistoryDown moves the viewport forward toward the live screen by up
// to n lines, never past scrollOffset == 0.
func (s *Screen) ScrollHistoryDown(n int) int {
	if n <= 0 {
		return 0
	}
	if n > s.scrollOffset {
		n = s.scrollOffset
	}
	s.scrollOffset -= n
	return n
}

// ShiftViewUp rotates head forward by n modulo ringSize, the mechanism
// Terminal uses to scroll the live screen: the lines that rotate off the
// top become scrollback instead of being destroyed. The newly exposed
// lines at the bottom are cleared to fill so stale ring content does not
// reappear.
func (s *Screen) ShiftViewUp(n int, fill Glyph) {
	if n <= 0 {
		return
	}
	size := s.ringSize()
	n %= size
	for i := 0; i < n; i++ {
		s.head = (s.head + 1) % size
		bottom := s.bufPos(s.rows - 1)
		s.ring[bottom].Clear(0, s.ring[bottom].Cols(), fill)
		s.ring[bottom].SetWrapped(false)
	}
}

// ShiftViewDown rotates head backward by n modulo ringSize, used when
// reverse-scrolling the live screen (e.g. RI at the top margin).
func (s *Screen) ShiftViewDown(n int, fill Glyph) {
	if n <= 0 {
		return
	}
	size := s.ringSize()
	n %= size
	for i := 0; i < n; i++ {
		s.head = ((s.head-1)%size + size) % size
		top := s.bufPos(0)
		s.ring[top].Clear(0, s.ring[top].Cols(), fill)
		s.ring[top].SetWrapped(false)
	}
}

// SaveScrollState remembers the ring index currently viewed at row 0, for
// later restoration by RestoreScrollState.
func (s *Screen) SaveScrollState() {
	s.savedScrollIdx = s.bufPos(0)
	s.haveSavedScroll = true
}

// RestoreScrollState re-establishes the viewport saved by SaveScrollState.
// Restoration succeeds — returning true — iff the saved ring index is
// still reconstructible as a viewport top within the history window. If the
// ring has rotated past it (the saved row has been overwritten by newer
// content), the viewport resets to live (scrollOffset = 0) and the method
// returns false.
func (s *Screen) RestoreScrollState() bool {
	if !s.haveSavedScroll {
		s.scrollOffset = 0
		return false
	}
	size := s.ringSize()
	offset := ((s.head-s.savedScrollIdx)%size + size) % size
	if offset > s.historyLen {
		s.scrollOffset = 0
		return false
	}
	s.scrollOffset = offset
	return true
}

// AsText returns the UTF-8 text of the full ring contents, oldest retained
// scrollback line first through the last visible row, independent of any
// active viewport scroll. Scrollback slots that were never written to are
// skipped at the front, and trailing empty lines past cursorY on the main
// (non-alt) screen are suppressed so the in-progress command line is not
// duplicated in IPC output.
func (s *Screen) AsText(cursorY int) string {
	n := s.ringSize()
	lines := make([]string, 0, s.historyLen+s.rows)
	for y := -s.historyLen; y < s.rows; y++ {
		p := ((s.head+y)%n + n) % n
		lines = append(lines, trimmedLineText(s.ring[p]))
	}

	start := 0
	for start < s.historyLen && lines[start] == "" {
		start++
	}

	cutoff := len(lines)
	if !s.isAlt {
		cursorIdx := s.historyLen + cursorY
		for cutoff > start && cutoff-1 > cursorIdx && lines[cutoff-1] == "" {
			cutoff--
		}
	}

	out := make([]byte, 0, 64)
	for i, ln := range lines[start:cutoff] {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, ln...)
	}
	return string(out)
}

// trimmedLineText renders a line for history output: trailing blanks are
// dropped via usedLength.
func trimmedLineText(l *Line) string {
	n := l.usedLength()
	buf := make([]rune, 0, n)
	for x := 0; x < n; x++ {
		g := l.At(x)
		if g.Attrs.HasAttr(AttrDummy) {
			continue
		}
		if g.Rune == 0 {
			buf = append(buf, ' ')
			continue
		}
		buf = append(buf, g.Rune)
	}
	return string(buf)
}

// Iterator returns a forward iterator over the full ring, starting at the
// oldest retained line regardless of any active viewport scroll (the same
// head-relative addressing AsText uses). Equality of iterator positions is
// defined over ring slots; there is no random access since an absolute
// index is ambiguous in a ring that has wrapped.
func (s *Screen) Iterator() *ScreenIterator {
	n := s.ringSize()
	start := ((s.head-s.historyLen)%n + n) % n
	return &ScreenIterator{s: s, pos: start, remain: n}
}

// IterNext combines Next, Line, and the advance into the usual
// one-call-per-line loop shape.
func (it *ScreenIterator) IterNext() (*Line, bool) {
	if !it.Next() {
		return nil, false
	}
	l := it.Line()
	it.advance()
	return l, true
}
