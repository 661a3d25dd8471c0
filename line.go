package headlessterm

// Line is one row of glyphs inside a Screen's ring buffer. It tracks a
// physical capacity (glyphs, the backing storage) separately from the
// logical width currently visible (logicalCols): on a column shrink with
// preservation enabled, the backing array is left untouched and only
// logicalCols drops, so a later re-enlargement can reveal the original
// content again. The alternate screen
// disables this preservation.
type Line struct {
	glyphs      []Glyph
	logicalCols int
	wrapped     bool
	dirty       bool
}

// newLine allocates a blank line with physical and logical width cols.
func newLine(cols int) *Line {
	l := &Line{glyphs: make([]Glyph, cols), logicalCols: cols}
	l.clear(0, cols)
	return l
}

// Cols reports the line's current logical (visible) width.
func (l *Line) Cols() int {
	return l.logicalCols
}

// physicalCols reports the capacity of the backing storage, which may
// exceed Cols() after a preserving shrink.
func (l *Line) physicalCols() int {
	return len(l.glyphs)
}

// At returns the glyph at column x. Out-of-range x (including the
// preserved-but-not-currently-visible tail) returns the zero Glyph.
func (l *Line) At(x int) Glyph {
	if x < 0 || x >= l.logicalCols {
		return Glyph{}
	}
	return l.glyphs[x]
}

// Set writes g at column x and marks the line dirty. Writing a non-WIDE
// glyph over the left half of a wide pair also clears the DUMMY sibling at
// x+1, and writing over a DUMMY cell clears the WIDE half at x-1, so a wide
// pair can never be left half-overwritten.
func (l *Line) Set(x int, g Glyph) {
	if x < 0 || x >= l.logicalCols {
		return
	}
	prev := l.glyphs[x]
	if prev.Attrs.HasAttr(AttrWide) && x+1 < l.logicalCols {
		l.glyphs[x+1] = blankGlyph
	}
	if prev.Attrs.HasAttr(AttrDummy) && x > 0 {
		l.glyphs[x-1].ClearAttr(AttrWide)
	}
	l.glyphs[x] = g
	l.dirty = true
}

// SetWide writes a double-width glyph at x and its DUMMY spacer at x+1. The
// caller must ensure x+1 < Cols(); placing a wide glyph in the last column
// is rejected here; Terminal.Input blanks that column and wraps instead
// (a WIDE cell is never the last column of a line).
func (l *Line) SetWide(x int, g Glyph) {
	if x < 0 || x+1 >= l.logicalCols {
		return
	}
	g.SetAttr(AttrWide)
	l.Set(x, g)
	dummy := blankGlyph
	dummy.SetAttr(AttrDummy)
	dummy.Fg, dummy.Bg = g.Fg, g.Bg
	l.glyphs[x+1] = dummy
}

// Clear resets columns [from, to) to blank glyphs carrying fill's colors
// and marks the line dirty. A wide pair straddling either boundary is
// patched: clearing the DUMMY half also blanks its WIDE sibling, and a
// DUMMY left just past the range loses its WIDE half and is blanked too.
func (l *Line) Clear(from, to int, fill Glyph) {
	if from < 0 {
		from = 0
	}
	if to > l.logicalCols {
		to = l.logicalCols
	}
	blank := blankGlyph
	blank.Fg, blank.Bg = fill.Fg, fill.Bg
	if from < to {
		if from > 0 && l.glyphs[from].Attrs.HasAttr(AttrDummy) {
			l.glyphs[from-1] = blank
		}
		if to < l.logicalCols && l.glyphs[to].Attrs.HasAttr(AttrDummy) {
			l.glyphs[to] = blank
		}
	}
	for x := from; x < to; x++ {
		l.glyphs[x] = blank
	}
	l.dirty = true
}

// clear is Clear with the default blank glyph, used during construction
// and resize growth.
func (l *Line) clear(from, to int) {
	l.Clear(from, to, blankGlyph)
}

// Wrapped reports whether this line's end-of-line continues onto the next
// ring slot rather than ending in an explicit newline.
func (l *Line) Wrapped() bool {
	return l.wrapped
}

// SetWrapped updates the wrap flag.
func (l *Line) SetWrapped(w bool) {
	l.wrapped = w
}

// Dirty reports whether the line changed since the last ClearDirty call.
// Dirty tracking lives at the line level, not per-glyph: a caller that
// needs repaint only ever needs to know which rows changed.
func (l *Line) Dirty() bool {
	return l.dirty
}

// ClearDirty resets the dirty flag.
func (l *Line) ClearDirty() {
	l.dirty = false
}

// MarkDirty force-sets the dirty flag, used by Screen operations that move
// a line (scroll, resize) without touching individual glyphs.
func (l *Line) MarkDirty() {
	l.dirty = true
}

// usedLength returns the column index one past the last non-empty glyph,
// i.e. the logical length ignoring trailing blanks. A fully blank line
// reports 0. This feeds both text snapshotting and Selection's end-of-line
// clamp (selection end clamps to usedLength(), not Cols()).
func (l *Line) usedLength() int {
	if l.wrapped {
		return l.logicalCols
	}
	for x := l.logicalCols - 1; x >= 0; x-- {
		if !l.glyphs[x].IsEmpty() {
			return x + 1
		}
	}
	return 0
}

// resize changes the line's logical width to newCols. Growing within the
// existing physical capacity just reveals more of the backing storage
// (restoring content a prior shrink preserved); growing past capacity
// allocates more backing storage, filled from fill. Shrinking with
// keepOnShrink leaves the backing storage untouched and only lowers the
// logical width, so the content survives a later re-enlargement; without
// it (the alternate screen) the backing storage is truncated for good.
func (l *Line) resize(newCols int, keepOnShrink bool, fill Glyph) {
	old := l.logicalCols
	if newCols == old {
		return
	}

	if newCols < old {
		if last := newCols - 1; last >= 0 && l.glyphs[last].Attrs.HasAttr(AttrWide) {
			l.glyphs[last].ClearAttr(AttrWide)
		}
		if !keepOnShrink {
			l.glyphs = l.glyphs[:newCols]
		}
		l.logicalCols = newCols
		l.dirty = true
		return
	}

	if newCols <= len(l.glyphs) {
		l.logicalCols = newCols
		l.dirty = true
		return
	}

	grown := make([]Glyph, newCols)
	copy(grown, l.glyphs)
	blank := blankGlyph
	blank.Fg, blank.Bg = fill.Fg, fill.Bg
	for x := len(l.glyphs); x < newCols; x++ {
		grown[x] = blank
	}
	l.glyphs = grown
	l.logicalCols = newCols
	l.dirty = true
}

// shrinkToPhysical drops any backing storage preserved beyond the current
// logical width. Called when a line is actively written to, so that
// content stashed by an earlier shrink does not resurface on a later
// re-enlargement once the row's content has actually changed underneath
// it.
func (l *Line) shrinkToPhysical() {
	if len(l.glyphs) > l.logicalCols {
		l.glyphs = l.glyphs[:l.logicalCols]
	}
}

// ShiftRight inserts n blank columns at x, shifting glyphs from x onward to
// the right; glyphs pushed past the last column are discarded. Wide pairs
// split by the insertion point or by the line end are patched: a DUMMY at x
// loses its WIDE sibling, a DUMMY shifted against the inserted blanks is
// blanked, and a WIDE pushed into the last column (its spacer discarded) is
// blanked as well.
func (l *Line) ShiftRight(x, n int, fill Glyph) {
	if x < 0 || x >= l.logicalCols || n <= 0 {
		return
	}
	blank := blankGlyph
	blank.Fg, blank.Bg = fill.Fg, fill.Bg
	if x > 0 && l.glyphs[x].Attrs.HasAttr(AttrDummy) {
		l.glyphs[x-1] = blank
	}
	for c := l.logicalCols - 1; c >= x+n; c-- {
		l.glyphs[c] = l.glyphs[c-n]
	}
	for c := x; c < x+n && c < l.logicalCols; c++ {
		l.glyphs[c] = blank
	}
	if x+n < l.logicalCols && l.glyphs[x+n].Attrs.HasAttr(AttrDummy) {
		l.glyphs[x+n] = blank
	}
	if last := l.logicalCols - 1; l.glyphs[last].Attrs.HasAttr(AttrWide) {
		l.glyphs[last] = blank
	}
	l.dirty = true
}

// ShiftLeft removes n columns at x, shifting glyphs after them left and
// filling the vacated columns at the end of the line with fill. Wide pairs
// split by the cut are patched: deleting the DUMMY half blanks its WIDE
// sibling at x-1, and a DUMMY whose WIDE half fell inside the deleted span
// is blanked before it shifts into x.
func (l *Line) ShiftLeft(x, n int, fill Glyph) {
	if x < 0 || x >= l.logicalCols || n <= 0 {
		return
	}
	blank := blankGlyph
	blank.Fg, blank.Bg = fill.Fg, fill.Bg
	if x > 0 && l.glyphs[x].Attrs.HasAttr(AttrDummy) {
		l.glyphs[x-1] = blank
	}
	if x+n < l.logicalCols && l.glyphs[x+n].Attrs.HasAttr(AttrDummy) {
		l.glyphs[x+n] = blank
	}
	for c := x; c < l.logicalCols-n; c++ {
		l.glyphs[c] = l.glyphs[c+n]
	}
	for c := l.logicalCols - n; c < l.logicalCols; c++ {
		if c >= 0 {
			l.glyphs[c] = blank
		}
	}
	l.dirty = true
}

// clone returns a deep copy of l, used when a ring slot must be duplicated
// rather than aliased (e.g. snapshotting history while the live screen
// keeps mutating).
func (l *Line) clone() *Line {
	c := &Line{
		glyphs:      make([]Glyph, len(l.glyphs)),
		logicalCols: l.logicalCols,
		wrapped:     l.wrapped,
	}
	copy(c.glyphs, l.glyphs)
	return c
}
