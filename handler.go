package headlessterm

import (
	"encoding/base64"
	"fmt"
	"image/color"

	"github.com/danielgatis/go-ansicode"
)

// Backspace moves the cursor one column left, stopping at column 0.
func (t *Terminal) Backspace() {
	if t.cursor.X > 0 {
		t.cursor.X--
	}
}

// Bell triggers the bell provider.
func (t *Terminal) Bell() {
	t.bellProvider.Ring()
}

// CarriageReturn moves the cursor to column 0 of the current row.
func (t *Terminal) CarriageReturn() {
	t.cursor.X = 0
}

// ClearLine clears portions of the current line based on mode.
func (t *Terminal) ClearLine(mode ansicode.LineClearMode) {
	line := t.active.Line(t.cursor.Y)
	if line == nil {
		return
	}
	fill := t.fillTemplate()
	switch mode {
	case ansicode.LineClearModeRight:
		line.Clear(t.cursor.X, line.Cols(), fill)
	case ansicode.LineClearModeLeft:
		line.Clear(0, t.cursor.X+1, fill)
	case ansicode.LineClearModeAll:
		line.Clear(0, line.Cols(), fill)
	}
}

// ClearScreen clears screen regions based on mode.
func (t *Terminal) ClearScreen(mode ansicode.ClearMode) {
	fill := t.fillTemplate()
	switch mode {
	case ansicode.ClearModeBelow:
		if line := t.active.Line(t.cursor.Y); line != nil {
			line.Clear(t.cursor.X, line.Cols(), fill)
		}
		for y := t.cursor.Y + 1; y < t.rows; y++ {
			if line := t.active.Line(y); line != nil {
				line.Clear(0, line.Cols(), fill)
			}
		}
	case ansicode.ClearModeAbove:
		for y := 0; y < t.cursor.Y; y++ {
			if line := t.active.Line(y); line != nil {
				line.Clear(0, line.Cols(), fill)
			}
		}
		if line := t.active.Line(t.cursor.Y); line != nil {
			line.Clear(0, t.cursor.X+1, fill)
		}
	case ansicode.ClearModeAll:
		for y := 0; y < t.rows; y++ {
			if line := t.active.Line(y); line != nil {
				line.Clear(0, line.Cols(), fill)
			}
		}
	case ansicode.ClearModeSaved:
		// Scrollback lives in the ring itself; there is nothing beyond
		// the viewport that is addressable separately to discard, so
		// this behaves the same as clearing the whole visible screen.
		for y := 0; y < t.rows; y++ {
			if line := t.active.Line(y); line != nil {
				line.Clear(0, line.Cols(), fill)
			}
		}
	}
}

// ClearTabs removes tab stops at the current column or all columns.
func (t *Terminal) ClearTabs(mode ansicode.TabulationClearMode) {
	switch mode {
	case ansicode.TabulationClearModeCurrent:
		if t.cursor.X >= 0 && t.cursor.X < len(t.tabStops) {
			t.tabStops[t.cursor.X] = false
		}
	case ansicode.TabulationClearModeAll:
		for i := range t.tabStops {
			t.tabStops[i] = false
		}
	}
}

// ClipboardLoad reads from the clipboard provider and replies via OSC 52.
// Clipboard access is gated behind the allow-window-ops flag.
func (t *Terminal) ClipboardLoad(clipboard byte, terminator string) {
	if !t.allowWindowOps {
		return
	}
	content := t.clipboardProvider.Read(clipboard)
	if content == "" {
		return
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	t.writeResponseString("\x1b]52;" + string(clipboard) + ";" + encoded + terminator)
}

// ClipboardStore hands an OSC 52 payload to the clipboard provider. The
// decoder delivers the payload already base64-decoded, so the bytes are
// passed through unchanged. Clipboard access is gated behind the
// allow-window-ops flag.
func (t *Terminal) ClipboardStore(clipboard byte, data []byte) {
	if !t.allowWindowOps {
		return
	}
	t.clipboardProvider.Write(clipboard, data)
}

// ConfigureCharset sets the character set for one of the four slots (G0-G3).
func (t *Terminal) ConfigureCharset(index ansicode.CharsetIndex, charset ansicode.Charset) {
	idx := CharsetIndex(index)
	if idx >= CharsetIndexG0 && idx <= CharsetIndexG3 {
		t.charsets[idx] = Charset(charset)
	}
}

// Decaln fills the entire screen with 'E' characters (DEC screen alignment test).
func (t *Terminal) Decaln() {
	g := blankGlyph
	g.Rune = 'E'
	for y := 0; y < t.rows; y++ {
		line := t.active.Line(y)
		if line == nil {
			continue
		}
		for x := 0; x < line.Cols(); x++ {
			line.Set(x, g)
		}
	}
}

// DeleteChars removes n characters at the cursor, shifting remaining
// characters left.
func (t *Terminal) DeleteChars(n int) {
	if line := t.active.Line(t.cursor.Y); line != nil {
		line.ShiftLeft(t.cursor.X, n, t.fillTemplate())
	}
}

// DeleteLines removes n lines at the cursor within the scroll region,
// shifting remaining lines up.
func (t *Terminal) DeleteLines(n int) {
	if t.cursor.Y >= t.scrollTop && t.cursor.Y < t.scrollBottom {
		t.scrollUpRegion(t.cursor.Y, n)
	}
}

// DeviceStatus sends a device status report: ready (n=5) or cursor position (n=6).
func (t *Terminal) DeviceStatus(n int) {
	switch n {
	case 5:
		t.writeResponseString("\x1b[0n")
	case 6:
		t.writeResponseString(fmt.Sprintf("\x1b[%d;%dR", t.cursor.Y+1, t.cursor.X+1))
	}
}

// EraseChars resets n characters at the cursor to default state without shifting.
func (t *Terminal) EraseChars(n int) {
	line := t.active.Line(t.cursor.Y)
	if line == nil {
		return
	}
	end := t.cursor.X + n
	if end > line.Cols() {
		end = line.Cols()
	}
	line.Clear(t.cursor.X, end, t.fillTemplate())
}

// Goto moves the cursor to (row, col), adjusting for origin mode.
func (t *Terminal) Goto(row, col int) {
	row = t.effectiveRow(row)
	t.cursor.Y = clamp(row, 0, t.rows-1)
	t.cursor.X = clamp(col, 0, t.cols-1)
	t.cursor.ClearFlag(CursorWrapNext)
}

// GotoCol moves the cursor to the specified column, keeping the current row.
func (t *Terminal) GotoCol(col int) {
	t.cursor.X = clamp(col, 0, t.cols-1)
	t.cursor.ClearFlag(CursorWrapNext)
}

// GotoLine moves the cursor to the specified row, adjusting for origin mode.
func (t *Terminal) GotoLine(row int) {
	row = t.effectiveRow(row)
	t.cursor.Y = clamp(row, 0, t.rows-1)
	t.cursor.ClearFlag(CursorWrapNext)
}

// HorizontalTabSet enables a tab stop at the current column.
func (t *Terminal) HorizontalTabSet() {
	if t.cursor.X >= 0 && t.cursor.X < len(t.tabStops) {
		t.tabStops[t.cursor.X] = true
	}
}

// IdentifyTerminal sends a terminal identification response.
func (t *Terminal) IdentifyTerminal(b byte) {
	t.writeResponseString(t.identity)
}

// Input writes a printable rune at the cursor, handling wide characters,
// deferred line wrap, insert mode, and charset translation.
func (t *Terminal) Input(r rune) {
	if t.activeCharset >= CharsetIndexG0 && t.activeCharset <= CharsetIndexG3 &&
		t.charsets[t.activeCharset] == CharsetLineDrawing {
		r = translateLineDrawing(r)
	}

	width := DisplayWidth(r)
	if width == 0 {
		return
	}

	if t.cursor.HasFlag(CursorWrapNext) {
		if t.modes&ModeLineWrap != 0 {
			if line := t.active.Line(t.cursor.Y); line != nil {
				line.SetWrapped(true)
			}
			t.moveToNewline(true)
		}
		t.cursor.ClearFlag(CursorWrapNext)
	}

	if t.cursor.X+width > t.cols {
		if t.modes&ModeLineWrap != 0 {
			if line := t.active.Line(t.cursor.Y); line != nil {
				line.Clear(t.cursor.X, t.cols, t.fillTemplate())
				line.SetWrapped(true)
			}
			t.moveToNewline(true)
		} else {
			if width == 2 {
				return
			}
			t.cursor.X = t.cols - 1
		}
	}

	line := t.active.Line(t.cursor.Y)
	if line == nil {
		return
	}
	line.shrinkToPhysical()

	if t.modes&ModeInsert != 0 {
		line.ShiftRight(t.cursor.X, width, t.fillTemplate())
	}

	if t.selection.IsSelected(CharPos{X: t.cursor.X, Y: t.cursor.Y}) {
		t.selection.Clear()
	}

	g := t.cursor.Template
	g.Rune = r
	if width == 2 {
		line.SetWide(t.cursor.X, g)
		t.cursor.X += 2
	} else {
		line.Set(t.cursor.X, g)
		t.cursor.X++
	}
	if t.cursor.X >= t.cols {
		t.cursor.X = t.cols - 1
		t.cursor.SetFlag(CursorWrapNext)
	}

	if t.printSink != nil && t.modes&ModePrint != 0 {
		if _, err := t.printSink.Write(EncodeRune(r)); err != nil {
			t.logger.Printf("print sink write failed, disabling print mode: %v", err)
			t.modes &^= ModePrint
		}
	}
}

// translateLineDrawing maps VT100 line-drawing charset codes to box-drawing runes.
func translateLineDrawing(r rune) rune {
	switch r {
	case 'j':
		return '┘'
	case 'k':
		return '┐'
	case 'l':
		return '┌'
	case 'm':
		return '└'
	case 'n':
		return '┼'
	case 'q':
		return '─'
	case 't':
		return '├'
	case 'u':
		return '┤'
	case 'v':
		return '┴'
	case 'w':
		return '┬'
	case 'x':
		return '│'
	default:
		return r
	}
}

// InsertBlank inserts n blank cells at the cursor, shifting existing
// characters right.
func (t *Terminal) InsertBlank(n int) {
	if line := t.active.Line(t.cursor.Y); line != nil {
		line.ShiftRight(t.cursor.X, n, t.fillTemplate())
	}
}

// InsertBlankLines inserts n blank lines at the cursor within the scroll
// region, shifting remaining lines down.
func (t *Terminal) InsertBlankLines(n int) {
	if t.cursor.Y >= t.scrollTop && t.cursor.Y < t.scrollBottom {
		t.scrollDownRegion(t.cursor.Y, n)
	}
}

// LineFeed moves the cursor down one row (scrolling if needed). If
// ModeLineFeedNewLine is set, also moves to column 0. Clears the wrapped
// flag for the current line since this is an explicit newline.
func (t *Terminal) LineFeed() {
	if line := t.active.Line(t.cursor.Y); line != nil {
		line.SetWrapped(false)
	}
	t.cursor.ClearFlag(CursorWrapNext)
	t.moveToNewline(t.modes&ModeLineFeedNewLine != 0)
}

// MoveBackward moves the cursor left n columns, stopping at column 0.
func (t *Terminal) MoveBackward(n int) {
	t.cursor.X = clamp(t.cursor.X-n, 0, t.cols-1)
	t.cursor.ClearFlag(CursorWrapNext)
}

// MoveBackwardTabs moves the cursor left to the previous n tab stops.
func (t *Terminal) MoveBackwardTabs(n int) {
	for i := 0; i < n; i++ {
		t.cursor.X = t.prevTabStop(t.cursor.X)
	}
}

// MoveDown moves the cursor down n rows, stopping at the last row.
func (t *Terminal) MoveDown(n int) {
	t.cursor.Y = clamp(t.cursor.Y+n, 0, t.rows-1)
}

// MoveDownCr moves the cursor down n rows and to column 0.
func (t *Terminal) MoveDownCr(n int) {
	t.cursor.Y = clamp(t.cursor.Y+n, 0, t.rows-1)
	t.cursor.X = 0
}

// MoveForward moves the cursor right n columns, stopping at the last column.
func (t *Terminal) MoveForward(n int) {
	t.cursor.X = clamp(t.cursor.X+n, 0, t.cols-1)
	t.cursor.ClearFlag(CursorWrapNext)
}

// MoveForwardTabs moves the cursor right to the next n tab stops.
func (t *Terminal) MoveForwardTabs(n int) {
	for i := 0; i < n; i++ {
		t.cursor.X = t.nextTabStop(t.cursor.X)
	}
}

// MoveUp moves the cursor up n rows, stopping at row 0.
func (t *Terminal) MoveUp(n int) {
	t.cursor.Y = clamp(t.cursor.Y-n, 0, t.rows-1)
}

// MoveUpCr moves the cursor up n rows and to column 0.
func (t *Terminal) MoveUpCr(n int) {
	t.cursor.Y = clamp(t.cursor.Y-n, 0, t.rows-1)
	t.cursor.X = 0
}

// PopKeyboardMode removes n keyboard mode entries from the stack.
func (t *Terminal) PopKeyboardMode(n int) {
	for i := 0; i < n && len(t.keyboardModes) > 0; i++ {
		t.keyboardModes = t.keyboardModes[:len(t.keyboardModes)-1]
	}
}

// PopTitle restores the previous title from the stack.
func (t *Terminal) PopTitle() {
	if len(t.titleStack) > 0 {
		t.title = t.titleStack[len(t.titleStack)-1]
		t.titleStack = t.titleStack[:len(t.titleStack)-1]
	}
	t.titleProvider.PopTitle()
}

// PrivacyMessageReceived delegates a PM sequence to the configured provider.
func (t *Terminal) PrivacyMessageReceived(data []byte) {
	t.pmProvider.Receive(data)
}

// PushKeyboardMode adds a keyboard mode to the stack.
func (t *Terminal) PushKeyboardMode(mode ansicode.KeyboardMode) {
	t.keyboardModes = append(t.keyboardModes, mode)
}

// PushTitle saves the current title to the stack.
func (t *Terminal) PushTitle() {
	t.titleStack = append(t.titleStack, t.title)
	t.titleProvider.PushTitle()
}

// ReportKeyboardMode sends the current keyboard mode via DSR response.
func (t *Terminal) ReportKeyboardMode() {
	var mode ansicode.KeyboardMode
	if len(t.keyboardModes) > 0 {
		mode = t.keyboardModes[len(t.keyboardModes)-1]
	}
	t.writeResponseString(fmt.Sprintf("\x1b[?%du", mode))
}

// ReportModifyOtherKeys sends the current modify-other-keys mode via DSR response.
func (t *Terminal) ReportModifyOtherKeys() {
	t.writeResponseString(fmt.Sprintf("\x1b[>4;%dm", t.modifyOtherKeys))
}

// ResetColor removes a custom color override from the theme palette.
func (t *Terminal) ResetColor(i int) {
	delete(t.colors, i)
}

// ResetState clears the screen, resets the cursor to (0,0), and restores
// default modes and attributes (RIS).
func (t *Terminal) ResetState() {
	for y := 0; y < t.rows; y++ {
		if line := t.active.Line(y); line != nil {
			line.Clear(0, line.Cols(), blankGlyph)
		}
	}

	t.cursor = NewCursor()
	t.scrollTop, t.scrollBottom = 0, t.rows
	t.modes = ModeLineWrap | ModeShowCursor
	t.tabStops = defaultTabStops(t.cols)

	t.charsets = [4]Charset{CharsetASCII, CharsetASCII, CharsetASCII, CharsetASCII}
	t.activeCharset = CharsetIndexG0

	t.colors = make(map[int]Color)
	t.keyboardModes = t.keyboardModes[:0]
	t.currentHyperlink = ""
	t.savedCursor = nil
	t.selection.Clear()
}

// RestoreCursorPosition restores cursor position, attributes, and charset
// state from the last SaveCursorPosition (DECRC).
func (t *Terminal) RestoreCursorPosition() {
	t.restoreCursorLocked()
}

func (t *Terminal) restoreCursorLocked() {
	if t.savedCursor == nil {
		return
	}
	sc := *t.savedCursor
	t.cursor = sc.Restore()
	t.activeCharset = sc.CharsetIndex
	t.charsets = sc.Charsets
}

// ReverseIndex moves the cursor up one row. At the top of the scroll
// region, scrolls the region down instead.
func (t *Terminal) ReverseIndex() {
	if t.cursor.Y == t.scrollTop {
		t.scrollDownRegion(t.scrollTop, 1)
	} else if t.cursor.Y > 0 {
		t.cursor.Y--
	}
}

// SaveCursorPosition saves cursor position, attributes, charset state, and
// origin mode for later restoration (DECSC).
func (t *Terminal) SaveCursorPosition() {
	t.saveCursorLocked()
}

func (t *Terminal) saveCursorLocked() {
	sc := t.cursor.Save(t.activeCharset, t.charsets)
	t.savedCursor = &sc
}

// ScrollDown shifts lines down within the scroll region, clearing newly
// exposed lines at the top.
func (t *Terminal) ScrollDown(n int) {
	t.scrollDownRegion(t.scrollTop, n)
}

// ScrollUp shifts lines up within the scroll region, pushing lines leaving
// the top of the full screen into history.
func (t *Terminal) ScrollUp(n int) {
	t.scrollUpRegion(t.scrollTop, n)
}

// SetActiveCharset selects which charset slot (G0-G3) is active for rendering.
func (t *Terminal) SetActiveCharset(n int) {
	idx := CharsetIndex(n)
	if idx >= CharsetIndexG0 && idx <= CharsetIndexG3 {
		t.activeCharset = idx
	}
}

// SetColor stores a theme color override at the given palette index.
func (t *Terminal) SetColor(index int, c color.Color) {
	r, g, b, _ := c.RGBA()
	t.colors[index] = NewColorRGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// SetCursorStyle changes the cursor rendering style.
func (t *Terminal) SetCursorStyle(style ansicode.CursorStyle) {
	t.cursor.Style = CursorStyle(style)
}

// SetDynamicColor responds to a dynamic color query (OSC 10/11/12) with the
// current color value, preferring a theme override over the default palette.
func (t *Terminal) SetDynamicColor(prefix string, index int, terminator string) {
	c, ok := t.colors[index]
	if !ok {
		if index < 0 || index > 255 {
			return
		}
		c = NewColorIndex(index)
	}
	r, g, b := paletteRGB(c)
	t.writeResponseString(fmt.Sprintf("\x1b]%s;rgb:%02x/%02x/%02x%s", prefix, r, g, b, terminator))
}

// SetHyperlink sets the active hyperlink (OSC 8) for subsequently written
// characters. Passing nil clears it. The Glyph model in this module carries
// no per-cell hyperlink field, so this only records the current URI on the
// Terminal; nothing reads it back, and it is not rendered or persisted per
// cell.
func (t *Terminal) SetHyperlink(hyperlink *ansicode.Hyperlink) {
	if hyperlink == nil {
		t.currentHyperlink = ""
		return
	}
	t.currentHyperlink = hyperlink.URI
}

// SetKeyboardMode modifies the top keyboard mode on the stack using the
// specified behavior (replace, union, or difference).
func (t *Terminal) SetKeyboardMode(mode ansicode.KeyboardMode, behavior ansicode.KeyboardModeBehavior) {
	current := ansicode.KeyboardModeNoMode
	if len(t.keyboardModes) > 0 {
		current = t.keyboardModes[len(t.keyboardModes)-1]
	}

	var next ansicode.KeyboardMode
	switch behavior {
	case ansicode.KeyboardModeBehaviorReplace:
		next = mode
	case ansicode.KeyboardModeBehaviorUnion:
		next = current | mode
	case ansicode.KeyboardModeBehaviorDifference:
		next = current &^ mode
	}

	if len(t.keyboardModes) > 0 {
		t.keyboardModes[len(t.keyboardModes)-1] = next
	} else {
		t.keyboardModes = append(t.keyboardModes, next)
	}
}

// SetKeypadApplicationMode enables application keypad mode.
func (t *Terminal) SetKeypadApplicationMode() {
	t.modes |= ModeKeypadApplication
}

// SetMode enables a terminal mode flag.
func (t *Terminal) SetMode(mode ansicode.TerminalMode) {
	t.setModeLocked(mode, true)
}

// UnsetMode disables a terminal mode flag.
func (t *Terminal) UnsetMode(mode ansicode.TerminalMode) {
	t.setModeLocked(mode, false)
}

// setModeLocked sets or unsets a terminal mode, applying the side effects
// a handful of modes carry (origin-mode homes the cursor; the alt-screen
// swap stashes/restores the cursor via each Screen's cached slot).
func (t *Terminal) setModeLocked(mode ansicode.TerminalMode, set bool) {
	var m TerminalMode

	switch mode {
	case ansicode.TerminalModeCursorKeys:
		m = ModeCursorKeys
	case ansicode.TerminalModeColumnMode:
		m = ModeColumnMode
	case ansicode.TerminalModeInsert:
		m = ModeInsert
	case ansicode.TerminalModeOrigin:
		m = ModeOrigin
		if set {
			t.cursor.SetFlag(CursorOrigin)
			t.cursor.Y = t.scrollTop
			t.cursor.X = 0
		} else {
			t.cursor.ClearFlag(CursorOrigin)
		}
	case ansicode.TerminalModeLineWrap:
		m = ModeLineWrap
	case ansicode.TerminalModeBlinkingCursor:
		m = ModeBlinkingCursor
	case ansicode.TerminalModeLineFeedNewLine:
		m = ModeLineFeedNewLine
	case ansicode.TerminalModeShowCursor:
		m = ModeShowCursor
		t.cursor.Visible = set
	case ansicode.TerminalModeReportMouseClicks:
		m = ModeReportMouseClicks
	case ansicode.TerminalModeReportCellMouseMotion:
		m = ModeReportCellMouseMotion
	case ansicode.TerminalModeReportAllMouseMotion:
		m = ModeReportAllMouseMotion
	case ansicode.TerminalModeReportFocusInOut:
		m = ModeReportFocusInOut
	case ansicode.TerminalModeUTF8Mouse:
		m = ModeUTF8Mouse
	case ansicode.TerminalModeSGRMouse:
		m = ModeSGRMouse
	case ansicode.TerminalModeAlternateScroll:
		m = ModeAlternateScroll
	case ansicode.TerminalModeUrgencyHints:
		m = ModeUrgencyHints
	case ansicode.TerminalModeSwapScreenAndSetRestoreCursor:
		if !t.allowAltScreen {
			return
		}
		m = ModeSwapScreenAndSetRestoreCursor
		t.selection.Clear()
		if set {
			t.saveCursorLocked()
			t.primary.SetCachedCursor(t.cursor)
			t.active = t.alternate
			for y := 0; y < t.rows; y++ {
				if line := t.active.Line(y); line != nil {
					line.Clear(0, line.Cols(), blankGlyph)
				}
			}
			// The cursor position carries onto the cleared alternate
			// screen; only leaving restores the saved state.
		} else {
			t.alternate.SetCachedCursor(t.cursor)
			t.active = t.primary
			t.restoreCursorLocked()
		}
	case ansicode.TerminalModeBracketedPaste:
		m = ModeBracketedPaste
	default:
		return
	}

	if set {
		t.modes |= m
	} else {
		t.modes &^= m
	}
}

// SetModifyOtherKeys sets how modifier keys are reported in keyboard input.
func (t *Terminal) SetModifyOtherKeys(modify ansicode.ModifyOtherKeys) {
	t.modifyOtherKeys = modify
}

// SetScrollingRegion sets the scroll boundaries and homes the cursor. The
// wire values are 1-based with an inclusive bottom, so the bottom arrives
// already in exclusive 0-based form; only top needs converting.
func (t *Terminal) SetScrollingRegion(top, bottom int) {
	top--

	if top < 0 {
		top = 0
	}
	if bottom <= 0 || bottom > t.rows {
		bottom = t.rows
	}
	if top >= bottom {
		return
	}

	t.scrollTop = top
	t.scrollBottom = bottom

	if t.modes&ModeOrigin != 0 {
		t.cursor.Y = t.scrollTop
	} else {
		t.cursor.Y = 0
	}
	t.cursor.X = 0
	t.cursor.ClearFlag(CursorWrapNext)
}

// StartOfStringReceived delegates a SOS sequence to the configured provider.
func (t *Terminal) StartOfStringReceived(data []byte) {
	t.sosProvider.Receive(data)
}

// SetTerminalCharAttribute applies an SGR attribute to the cursor's glyph
// template, which every subsequent Input call copies onto the written cell.
func (t *Terminal) SetTerminalCharAttribute(attr ansicode.TerminalCharAttribute) {
	tpl := &t.cursor.Template

	switch attr.Attr {
	case ansicode.CharAttributeReset:
		t.cursor.Template = blankGlyph

	case ansicode.CharAttributeBold:
		tpl.SetAttr(AttrBold)
	case ansicode.CharAttributeDim:
		tpl.SetAttr(AttrFaint)
	case ansicode.CharAttributeItalic:
		tpl.SetAttr(AttrItalic)
	case ansicode.CharAttributeUnderline,
		ansicode.CharAttributeDoubleUnderline,
		ansicode.CharAttributeCurlyUnderline,
		ansicode.CharAttributeDottedUnderline,
		ansicode.CharAttributeDashedUnderline:
		// The glyph model carries one underline bit; every SGR underline
		// variant (plain, double, curly, dotted, dashed) collapses to it.
		tpl.SetAttr(AttrUnderline)
	case ansicode.CharAttributeBlinkSlow, ansicode.CharAttributeBlinkFast:
		tpl.SetAttr(AttrBlink)
	case ansicode.CharAttributeReverse:
		tpl.SetAttr(AttrReverse)
	case ansicode.CharAttributeHidden:
		tpl.SetAttr(AttrInvisible)
	case ansicode.CharAttributeStrike:
		tpl.SetAttr(AttrStruck)

	case ansicode.CharAttributeCancelBold:
		tpl.ClearAttr(AttrBold)
	case ansicode.CharAttributeCancelBoldDim:
		tpl.ClearAttr(AttrBold | AttrFaint)
	case ansicode.CharAttributeCancelItalic:
		tpl.ClearAttr(AttrItalic)
	case ansicode.CharAttributeCancelUnderline:
		tpl.ClearAttr(AttrUnderline)
	case ansicode.CharAttributeCancelBlink:
		tpl.ClearAttr(AttrBlink)
	case ansicode.CharAttributeCancelReverse:
		tpl.ClearAttr(AttrReverse)
	case ansicode.CharAttributeCancelHidden:
		tpl.ClearAttr(AttrInvisible)
	case ansicode.CharAttributeCancelStrike:
		tpl.ClearAttr(AttrStruck)

	case ansicode.CharAttributeForeground:
		tpl.Fg = t.resolveColor(attr, DefaultFg)
	case ansicode.CharAttributeBackground:
		tpl.Bg = t.resolveColor(attr, DefaultBg)

	case ansicode.CharAttributeUnderlineColor:
		// No distinct underline-color field exists on Glyph; a custom
		// underline color is accepted and discarded.
	}
}

// resolveColor maps an SGR color attribute onto the packed Color type,
// falling back to def when no RGB/indexed/named component is present.
func (t *Terminal) resolveColor(attr ansicode.TerminalCharAttribute, def Color) Color {
	if attr.RGBColor != nil {
		return NewColorRGB(attr.RGBColor.R, attr.RGBColor.G, attr.RGBColor.B)
	}
	if attr.IndexedColor != nil {
		return NewColorIndex(int(attr.IndexedColor.Index))
	}
	if attr.NamedColor != nil {
		return NewColorIndex(int(*attr.NamedColor))
	}
	return def
}

// paletteRGB resolves a Color to RGB components: true-color values unpack
// directly, indexed values resolve through the standard 256-color palette,
// and a theme override stored via SetColor is itself already an RGB Color.
func paletteRGB(c Color) (r, g, b uint8) {
	if c.IsTrueColor() {
		return c.RGB()
	}
	return paletteIndexRGB(c.Index())
}

// SetTitle updates the window title and notifies the title provider.
func (t *Terminal) SetTitle(title string) {
	t.title = title
	t.titleProvider.SetTitle(title)
}

// Substitute replaces the character at the cursor with '?' (error indication, SUB).
func (t *Terminal) Substitute() {
	if line := t.active.Line(t.cursor.Y); line != nil {
		g := line.At(t.cursor.X)
		g.Rune = '?'
		line.Set(t.cursor.X, g)
	}
}

// Tab moves the cursor right to the next n tab stops.
func (t *Terminal) Tab(n int) {
	for i := 0; i < n; i++ {
		t.cursor.X = t.nextTabStop(t.cursor.X)
	}
}

// TextAreaSizeChars sends the terminal dimensions in characters.
func (t *Terminal) TextAreaSizeChars() {
	t.writeResponseString(fmt.Sprintf("\x1b[8;%d;%dt", t.rows, t.cols))
}

// TextAreaSizePixels sends the terminal dimensions in pixels, using the
// size provider's cell metrics if configured.
func (t *Terminal) TextAreaSizePixels() {
	cw, ch := t.cellSizePixels()
	t.writeResponseString(fmt.Sprintf("\x1b[4;%d;%dt", t.rows*ch, t.cols*cw))
}

// UnsetKeypadApplicationMode disables application keypad mode.
func (t *Terminal) UnsetKeypadApplicationMode() {
	t.modes &^= ModeKeypadApplication
}

// SetWorkingDirectory stores the current working directory (OSC 7).
func (t *Terminal) SetWorkingDirectory(uri string) {
	t.workingDir = uri
}

// WorkingDirectory returns the current working directory URI (OSC 7).
func (t *Terminal) WorkingDirectory() string {
	return t.workingDir
}

// WorkingDirectoryPath extracts the filesystem path from the working
// directory URI (file://host/path).
func (t *Terminal) WorkingDirectoryPath() string {
	const prefix = "file://"
	uri := t.workingDir
	if len(uri) <= len(prefix) || uri[:len(prefix)] != prefix {
		return ""
	}
	rest := uri[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return rest[i:]
		}
	}
	return ""
}

// cellSizePixels returns the pixel dimensions of one cell, defaulting to
// 10x20 absent a configured SizeProvider.
func (t *Terminal) cellSizePixels() (width, height int) {
	if t.sizeProvider != nil {
		if w, h := t.sizeProvider.CellSizePixels(); w > 0 && h > 0 {
			return w, h
		}
	}
	return 10, 20
}

// CellSizePixels sends the cell size in pixels via DSR response.
func (t *Terminal) CellSizePixels() {
	w, h := t.cellSizePixels()
	t.writeResponseString(fmt.Sprintf("\x1b[6;%d;%dt", h, w))
}

// SixelReceived is a no-op: Sixel graphics are out of scope for this module.
func (t *Terminal) SixelReceived(params [][]uint16, data []byte) {}

// ApplicationCommandReceived delegates an APC sequence to the configured provider.
func (t *Terminal) ApplicationCommandReceived(data []byte) {
	t.apcProvider.Receive(data)
}
