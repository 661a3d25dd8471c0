package headlessterm

// CursorStyle determines how the cursor is rendered.
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// parseCursorStyle maps a config-file token to a CursorStyle.
func parseCursorStyle(s string) (CursorStyle, bool) {
	switch s {
	case "blinking-block":
		return CursorStyleBlinkingBlock, true
	case "block", "steady-block":
		return CursorStyleSteadyBlock, true
	case "blinking-underline":
		return CursorStyleBlinkingUnderline, true
	case "underline", "steady-underline":
		return CursorStyleSteadyUnderline, true
	case "blinking-bar":
		return CursorStyleBlinkingBar, true
	case "bar", "steady-bar":
		return CursorStyleSteadyBar, true
	default:
		return 0, false
	}
}

// CursorFlag is a bitmask of cursor state flags.
type CursorFlag uint8

const (
	// CursorWrapNext marks that the cursor sits past the last column and
	// the next printable character should wrap to the following line
	// before being written, rather than overwriting the last cell.
	CursorWrapNext CursorFlag = 1 << iota
	// CursorOrigin marks DECOM origin mode: cursor addressing and
	// clamping are relative to the active ScrollArea, not the screen.
	CursorOrigin
)

// Cursor tracks position, the glyph template applied to newly written
// cells, and state flags (wrap-pending, origin mode).
type Cursor struct {
	X, Y     int
	Template Glyph
	Flags    CursorFlag
	Style    CursorStyle
	Visible  bool
}

// NewCursor creates a cursor at (0, 0) with the default glyph template,
// visible, styled as a steady block.
func NewCursor() Cursor {
	return Cursor{
		Template: blankGlyph,
		Style:    CursorStyleSteadyBlock,
		Visible:  true,
	}
}

// HasFlag reports whether all bits in mask are set.
func (c Cursor) HasFlag(mask CursorFlag) bool { return c.Flags&mask == mask }

// SetFlag enables the given flag bits.
func (c *Cursor) SetFlag(mask CursorFlag) { c.Flags |= mask }

// ClearFlag disables the given flag bits.
func (c *Cursor) ClearFlag(mask CursorFlag) { c.Flags &^= mask }

// SavedCursor stores cursor position, the glyph template, origin mode, and
// charset state for DECSC/DECRC restoration and for the implicit stash
// performed on alt-screen switch.
type SavedCursor struct {
	X, Y         int
	Template     Glyph
	OriginMode   bool
	CharsetIndex CharsetIndex
	Charsets     [4]Charset
}

// Save captures c and the active charset state into a SavedCursor.
func (c Cursor) Save(charsetIndex CharsetIndex, charsets [4]Charset) SavedCursor {
	return SavedCursor{
		X:            c.X,
		Y:            c.Y,
		Template:     c.Template,
		OriginMode:   c.HasFlag(CursorOrigin),
		CharsetIndex: charsetIndex,
		Charsets:     charsets,
	}
}

// Restore builds a fresh visible Cursor from the saved position, glyph
// template and origin mode, with the default style; the saved charset
// state is not part of the result and stays in sc for the caller to apply.
func (sc SavedCursor) Restore() Cursor {
	c := Cursor{X: sc.X, Y: sc.Y, Template: sc.Template, Visible: true}
	if sc.OriginMode {
		c.SetFlag(CursorOrigin)
	}
	return c
}

// Charset selects the character encoding variant for a G0-G3 slot.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
)

// CharsetIndex selects one of four character set slots (G0-G3).
type CharsetIndex int

const (
	CharsetIndexG0 CharsetIndex = iota
	CharsetIndexG1
	CharsetIndexG2
	CharsetIndexG3
)
