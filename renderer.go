package headlessterm

// Renderer is the pull interface a display layer implements to be driven by
// Terminal.Draw. Glyph spans are contiguous runs of cells within a single
// row. The core never retains the span slice across calls; implementations
// that need the data past the call must copy it.
type Renderer interface {
	// CanDraw reports whether the surface can accept draw commands right
	// now (e.g. the window is mapped). When false, Draw is a no-op and
	// dirty state is retained for a later pass.
	CanDraw() bool
	// DrawGlyphs renders a run of cells starting at origin.
	DrawGlyphs(span []Glyph, origin CharPos)
	// DrawCursor renders the cursor over the glyph at pos.
	DrawCursor(pos CharPos, g Glyph)
	// ClearCursor repaints the glyph at pos without the cursor overlay.
	ClearCursor(pos CharPos, g Glyph)
	// SetInputSpot places the input-method editing spot at pos.
	SetInputSpot(pos CharPos)
	// FinishDraw flushes the batch.
	FinishDraw()
}

// WithRenderer sets the display layer Draw drives. Absent a renderer, Draw
// is a no-op and dirty flags accumulate until one is attached.
func WithRenderer(r Renderer) Option {
	return func(t *Terminal) { t.renderer = r }
}

// Draw runs the two-phase repaint: first every dirty line inside the
// viewport is emitted as a batch of glyph spans (clearing its dirty flag),
// then the cursor is drawn at its viewport position and the previous cursor
// position is repainted without the overlay. While the viewport is scrolled
// back far enough that the cursor row is not visible, no cursor is drawn.
func (t *Terminal) Draw() {
	r := t.renderer
	if r == nil || !r.CanDraw() {
		return
	}

	for y := 0; y < t.rows; y++ {
		line := t.active.Line(y)
		if line == nil || !line.Dirty() {
			continue
		}
		span := make([]Glyph, line.Cols())
		for x := 0; x < line.Cols(); x++ {
			span[x] = line.At(x)
		}
		r.DrawGlyphs(span, CharPos{X: 0, Y: y})
		line.ClearDirty()
	}

	pos, visible := t.shiftedCursorPos()
	if t.hasDrawnCursor && t.drawnCursor != pos {
		t.undrawCursorAt(r, t.drawnCursor)
		t.hasDrawnCursor = false
	}
	if visible && t.cursor.Visible && t.modes&ModeShowCursor != 0 {
		r.DrawCursor(pos, t.glyphUnder(pos))
		t.drawnCursor = pos
		t.hasDrawnCursor = true
	} else if t.hasDrawnCursor {
		t.undrawCursorAt(r, t.drawnCursor)
		t.hasDrawnCursor = false
	}

	r.SetInputSpot(pos)
	r.FinishDraw()
}

// shiftedCursorPos maps the cursor's live-screen position into viewport
// coordinates, accounting for any scrollback offset. The second return
// value is false when the cursor row has been scrolled out of view.
func (t *Terminal) shiftedCursorPos() (CharPos, bool) {
	y := t.cursor.Y + t.active.scrollOffset
	if y >= t.rows {
		return CharPos{X: t.cursor.X, Y: t.rows - 1}, false
	}
	return CharPos{X: t.cursor.X, Y: y}, true
}

// glyphUnder returns the glyph currently stored at a viewport position;
// Screen.Line already addresses rows in viewport coordinates.
func (t *Terminal) glyphUnder(pos CharPos) Glyph {
	if line := t.active.Line(pos.Y); line != nil {
		return line.At(pos.X)
	}
	return Glyph{}
}

func (t *Terminal) undrawCursorAt(r Renderer, pos CharPos) {
	r.ClearCursor(pos, t.glyphUnder(pos))
}
