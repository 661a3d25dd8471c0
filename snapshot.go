package headlessterm

import "fmt"

// SnapshotDetail specifies the level of detail in a snapshot.
type SnapshotDetail string

const (
	// SnapshotDetailText returns plain text only.
	SnapshotDetailText SnapshotDetail = "text"
	// SnapshotDetailStyled returns text with style segments per line.
	SnapshotDetailStyled SnapshotDetail = "styled"
	// SnapshotDetailFull returns full cell-by-cell data.
	SnapshotDetailFull SnapshotDetail = "full"
)

// Snapshot represents a complete terminal screen capture.
type Snapshot struct {
	Size   SnapshotSize   `json:"size"`
	Cursor SnapshotCursor `json:"cursor"`
	Lines  []SnapshotLine `json:"lines"`
}

// SnapshotSize holds terminal dimensions.
type SnapshotSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// SnapshotCursor holds cursor state.
type SnapshotCursor struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Visible bool   `json:"visible"`
	Style   string `json:"style"`
}

// SnapshotLine represents a single line in the snapshot.
type SnapshotLine struct {
	Text     string            `json:"text"`
	Segments []SnapshotSegment `json:"segments,omitempty"`
	Cells    []SnapshotCell    `json:"cells,omitempty"`
}

// SnapshotSegment represents a styled text segment within a line.
type SnapshotSegment struct {
	Text       string        `json:"text"`
	Fg         string        `json:"fg,omitempty"`
	Bg         string        `json:"bg,omitempty"`
	Attributes SnapshotAttrs `json:"attrs,omitempty"`
}

// SnapshotCell represents a single cell with full attributes.
type SnapshotCell struct {
	Char       string        `json:"char"`
	Fg         string        `json:"fg"`
	Bg         string        `json:"bg"`
	Attributes SnapshotAttrs `json:"attrs,omitempty"`
	Wide       bool          `json:"wide,omitempty"`
	WideSpacer bool          `json:"wide_spacer,omitempty"`
}

// SnapshotAttrs holds text formatting attributes.
type SnapshotAttrs struct {
	Bold          bool `json:"bold,omitempty"`
	Dim           bool `json:"dim,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Underline     bool `json:"underline,omitempty"`
	Blink         bool `json:"blink,omitempty"`
	Reverse       bool `json:"reverse,omitempty"`
	Hidden        bool `json:"hidden,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`
}

// Snapshot captures the active screen's current state. The detail parameter
// controls how much per-cell styling information is included.
func (t *Terminal) Snapshot(detail SnapshotDetail) *Snapshot {
	snap := &Snapshot{
		Size: SnapshotSize{Rows: t.rows, Cols: t.cols},
		Cursor: SnapshotCursor{
			Row:     t.cursor.Y,
			Col:     t.cursor.X,
			Visible: t.cursor.Visible,
			Style:   cursorStyleToString(t.cursor.Style),
		},
		Lines: make([]SnapshotLine, t.rows),
	}

	for row := 0; row < t.rows; row++ {
		snap.Lines[row] = t.snapshotLine(row, detail)
	}

	return snap
}

// snapshotLine builds one row of a Snapshot at the requested detail level.
func (t *Terminal) snapshotLine(row int, detail SnapshotDetail) SnapshotLine {
	line := t.active.Line(row)

	sl := SnapshotLine{Text: lineText(line)}

	switch detail {
	case SnapshotDetailStyled:
		sl.Segments = lineToSegments(line)
	case SnapshotDetailFull:
		sl.Cells = lineToCells(line)
	}

	return sl
}

// lineText renders a line's glyphs as plain text, trimming trailing blanks,
// substituting a space for interior empty cells, and skipping DUMMY spacer
// halves of wide glyphs.
func lineText(line *Line) string {
	if line == nil {
		return ""
	}

	lastNonBlank := -1
	for x := line.Cols() - 1; x >= 0; x-- {
		g := line.At(x)
		if g.Rune != 0 && g.Rune != ' ' && !g.Attrs.HasAttr(AttrDummy) {
			lastNonBlank = x
			break
		}
	}
	if lastNonBlank < 0 {
		return ""
	}

	runes := make([]rune, 0, lastNonBlank+1)
	for x := 0; x <= lastNonBlank; x++ {
		g := line.At(x)
		if g.Attrs.HasAttr(AttrDummy) {
			continue
		}
		if g.IsEmpty() {
			runes = append(runes, ' ')
		} else {
			runes = append(runes, g.Rune)
		}
	}
	return string(runes)
}

// lineToSegments groups a line's glyphs into runs sharing the same style,
// skipping DUMMY spacer halves of wide glyphs.
func lineToSegments(line *Line) []SnapshotSegment {
	if line == nil {
		return nil
	}

	var segments []SnapshotSegment
	var current *SnapshotSegment
	var currentChars []rune

	for x := 0; x < line.Cols(); x++ {
		g := line.At(x)
		if g.Attrs.HasAttr(AttrDummy) {
			continue
		}

		fg := colorToHex(g.Fg)
		bg := colorToHex(g.Bg)
		attrs := glyphAttrsToSnapshot(g)

		if current == nil || current.Fg != fg || current.Bg != bg || current.Attributes != attrs {
			if current != nil && len(currentChars) > 0 {
				current.Text = string(currentChars)
				segments = append(segments, *current)
			}
			current = &SnapshotSegment{Fg: fg, Bg: bg, Attributes: attrs}
			currentChars = nil
		}

		ch := g.Rune
		if ch == 0 {
			ch = ' '
		}
		currentChars = append(currentChars, ch)
	}

	if current != nil && len(currentChars) > 0 {
		current.Text = string(currentChars)
		segments = append(segments, *current)
	}

	return segments
}

// lineToCells converts a line to full per-cell data.
func lineToCells(line *Line) []SnapshotCell {
	if line == nil {
		return nil
	}

	cells := make([]SnapshotCell, 0, line.Cols())
	for x := 0; x < line.Cols(); x++ {
		g := line.At(x)

		ch := g.Rune
		if ch == 0 {
			ch = ' '
		}

		cells = append(cells, SnapshotCell{
			Char:       string(ch),
			Fg:         colorToHex(g.Fg),
			Bg:         colorToHex(g.Bg),
			Attributes: glyphAttrsToSnapshot(g),
			Wide:       g.Attrs.HasAttr(AttrWide),
			WideSpacer: g.Attrs.HasAttr(AttrDummy),
		})
	}

	return cells
}

// colorToHex renders a Color as a hex RGB string, resolving palette indices
// and the reserved foreground/background/cursor sentinels through the
// default palette; theme overrides set via SetColor are not consulted.
func colorToHex(c Color) string {
	var r, g, b uint8
	if c.IsTrueColor() {
		r, g, b = c.RGB()
	} else {
		r, g, b = paletteIndexRGB(c.Index())
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// glyphAttrsToSnapshot extracts a glyph's rendering attributes.
func glyphAttrsToSnapshot(g Glyph) SnapshotAttrs {
	return SnapshotAttrs{
		Bold:          g.Attrs.HasAttr(AttrBold),
		Dim:           g.Attrs.HasAttr(AttrFaint),
		Italic:        g.Attrs.HasAttr(AttrItalic),
		Underline:     g.Attrs.HasAttr(AttrUnderline),
		Blink:         g.Attrs.HasAttr(AttrBlink),
		Reverse:       g.Attrs.HasAttr(AttrReverse),
		Hidden:        g.Attrs.HasAttr(AttrInvisible),
		Strikethrough: g.Attrs.HasAttr(AttrStruck),
	}
}

// cursorStyleToString renders a CursorStyle as the shape family a client
// would use to draw it, collapsing blinking/steady variants together.
func cursorStyleToString(style CursorStyle) string {
	switch style {
	case CursorStyleBlinkingBlock, CursorStyleSteadyBlock:
		return "block"
	case CursorStyleBlinkingUnderline, CursorStyleSteadyUnderline:
		return "underline"
	case CursorStyleBlinkingBar, CursorStyleSteadyBar:
		return "bar"
	default:
		return "block"
	}
}
