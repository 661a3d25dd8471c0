package headlessterm

import (
	"io"

	"github.com/danielgatis/go-ansicode"
)

// Ensure Terminal implements ansicode.Handler.
var _ ansicode.Handler = (*Terminal)(nil)

// TerminalMode is a bitmask of terminal behavior flags. Multiple modes can
// be active simultaneously.
type TerminalMode uint32

const (
	ModeCursorKeys TerminalMode = 1 << iota
	ModeColumnMode
	ModeInsert
	ModeOrigin
	ModeLineWrap
	ModeBlinkingCursor
	// ModeLineFeedNewLine (LNM) makes line feed also move to column 0.
	ModeLineFeedNewLine
	ModeShowCursor
	ModeReportMouseClicks
	ModeReportCellMouseMotion
	ModeReportAllMouseMotion
	ModeReportFocusInOut
	ModeUTF8Mouse
	ModeSGRMouse
	ModeAlternateScroll
	ModeUrgencyHints
	// ModeSwapScreenAndSetRestoreCursor swaps to the alternate screen and
	// saves the cursor (DECSET 1049); unsetting restores the primary
	// screen and cursor.
	ModeSwapScreenAndSetRestoreCursor
	ModeBracketedPaste
	ModeKeypadApplication
	// ModeLocalEcho is a local-echo mode bit; nothing in this package
	// sets or reads it.
	ModeLocalEcho
	// ModePrint routes every printed rune's UTF-8 bytes to the print
	// sink as well as the screen, until a write error disables it.
	ModePrint
	// ModeUTF8Charset is a UTF-8 charset mode bit; nothing in this package
	// sets or reads it, and Codec decoding is always UTF-8.
	ModeUTF8Charset
)

const (
	DefaultRows = 24
	DefaultCols = 80
)

// scrollState tracks whether the viewport currently follows live output or
// has been scrolled back into history ("Scroll state").
type scrollState int

const (
	scrollLive scrollState = iota
	scrollBack
)

// Terminal applies parsed escape/control sequences to a pair of Screens,
// the cursor, the scroll region, and the mode flags. There is exactly one
// mutator — the cooperative event loop feeding Write — so, unlike the
// reference library this core started from, Terminal carries no internal
// locking; callers that need concurrent access must serialize it
// themselves (see DESIGN.md).
type Terminal struct {
	rows, cols int
	historyLen int

	primary   *Screen
	alternate *Screen
	active    *Screen

	cursor Cursor

	charsets      [4]Charset
	activeCharset CharsetIndex

	savedCursor *SavedCursor

	tabStops []bool

	scrollTop, scrollBottom int
	scroll                  scrollState
	keepScrollPosition      bool
	allowAltScreen          bool
	allowWindowOps          bool

	modes TerminalMode

	title      string
	titleStack []string

	colors map[int]Color

	currentHyperlink string

	keyboardModes   []ansicode.KeyboardMode
	modifyOtherKeys ansicode.ModifyOtherKeys

	decoder *ansicode.Decoder

	selection *Selection

	responseProvider  ResponseProvider
	bellProvider      BellProvider
	titleProvider     TitleProvider
	apcProvider       APCProvider
	pmProvider        PMProvider
	sosProvider       SOSProvider
	clipboardProvider ClipboardProvider
	recordingProvider RecordingProvider
	sizeProvider      SizeProvider

	initialCursorStyle CursorStyle

	renderer       Renderer
	drawnCursor    CharPos
	hasDrawnCursor bool

	printSink io.Writer

	workingDir string

	logger diagnosticsLogger

	identity string
}

// Option configures a Terminal during construction.
type Option func(*Terminal)

// WithSize sets the terminal dimensions. Values <= 0 are replaced with
// defaults (24x80).
func WithSize(rows, cols int) Option {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	return func(t *Terminal) {
		t.rows = rows
		t.cols = cols
	}
}

// WithHistoryLength sets the primary screen's scrollback capacity.
func WithHistoryLength(n int) Option {
	return func(t *Terminal) { t.historyLen = n }
}

// WithResponse sets the writer for terminal responses (e.g., cursor
// position reports). If nil, responses are discarded.
func WithResponse(p ResponseProvider) Option {
	return func(t *Terminal) { t.responseProvider = p }
}

// WithBell sets the handler for bell/beep events.
func WithBell(p BellProvider) Option {
	return func(t *Terminal) { t.bellProvider = p }
}

// WithTitle sets the handler for window title changes.
func WithTitle(p TitleProvider) Option {
	return func(t *Terminal) { t.titleProvider = p }
}

// WithAPC sets the handler for Application Program Command sequences.
func WithAPC(p APCProvider) Option {
	return func(t *Terminal) { t.apcProvider = p }
}

// WithPM sets the handler for Privacy Message sequences.
func WithPM(p PMProvider) Option {
	return func(t *Terminal) { t.pmProvider = p }
}

// WithSOS sets the handler for Start of String sequences.
func WithSOS(p SOSProvider) Option {
	return func(t *Terminal) { t.sosProvider = p }
}

// WithClipboard sets the handler for OSC 52 clipboard read/write.
func WithClipboard(p ClipboardProvider) Option {
	return func(t *Terminal) { t.clipboardProvider = p }
}

// WithRecording sets the handler for capturing raw input bytes before parsing.
func WithRecording(p RecordingProvider) Option {
	return func(t *Terminal) { t.recordingProvider = p }
}

// WithSizeProvider sets the provider for pixel dimension queries.
func WithSizeProvider(p SizeProvider) Option {
	return func(t *Terminal) { t.sizeProvider = p }
}

// WithPrintSink sets the writer PRINT mode copies printed output to.
func WithPrintSink(w io.Writer) Option {
	return func(t *Terminal) { t.printSink = w }
}

// WithLogger sets the diagnostics logger used for malformed-input warnings.
func WithLogger(l diagnosticsLogger) Option {
	return func(t *Terminal) { t.logger = l }
}

// WithIdentity sets the string IdentifyTerminal (DA) replies with.
func WithIdentity(id string) Option {
	return func(t *Terminal) { t.identity = id }
}

// WithKeepScrollPosition controls whether new pty output while scrolled
// back snaps the viewport to live or leaves it in place.
func WithKeepScrollPosition(keep bool) Option {
	return func(t *Terminal) { t.keepScrollPosition = keep }
}

// WithAllowAltScreen controls whether applications may switch to the
// alternate screen (DECSET 47/1047/1049). Enabled by default.
func WithAllowAltScreen(allow bool) Option {
	return func(t *Terminal) { t.allowAltScreen = allow }
}

// WithAllowWindowOps enables OSC 52 clipboard access, which is disabled by
// default since it lets any program on the pty read and write the system
// clipboard.
func WithAllowWindowOps(allow bool) Option {
	return func(t *Terminal) { t.allowWindowOps = allow }
}

// WithCursorShape sets the initial cursor rendering style.
func WithCursorShape(style CursorStyle) Option {
	return func(t *Terminal) { t.initialCursorStyle = style }
}

// WithConfig applies the terminal-relevant settings from a parsed Config:
// size, history length, scroll behavior, alt-screen gating, and the initial
// cursor shape.
func WithConfig(cfg Config) Option {
	return func(t *Terminal) {
		WithSize(cfg.Rows, cfg.Cols)(t)
		t.historyLen = cfg.HistoryLength
		t.keepScrollPosition = cfg.KeepScrollPosition
		t.allowAltScreen = cfg.AllowAltScreen
		t.initialCursorStyle = cfg.CursorShape
	}
}

// New creates a terminal with the given options, defaulting to 24x80, a
// 2000-line primary scrollback, line wrap enabled, and a visible cursor.
func New(opts ...Option) *Terminal {
	t := &Terminal{
		rows:               DefaultRows,
		cols:               DefaultCols,
		historyLen:         2000,
		colors:             make(map[int]Color),
		bellProvider:       NoopBell{},
		titleProvider:      NoopTitle{},
		apcProvider:        NoopAPC{},
		pmProvider:         NoopPM{},
		sosProvider:        NoopSOS{},
		clipboardProvider:  NoopClipboard{},
		recordingProvider:  NoopRecording{},
		identity:           "\x1b[?6c",
		logger:             defaultLogger(),
		allowAltScreen:     true,
		initialCursorStyle: CursorStyleSteadyBlock,
	}

	for _, opt := range opts {
		opt(t)
	}

	t.primary = NewScreen(t.rows, t.cols, t.historyLen, false)
	t.alternate = NewScreen(t.rows, t.cols, 0, true)
	t.active = t.primary

	t.cursor = NewCursor()
	t.cursor.Style = t.initialCursorStyle
	t.charsets = [4]Charset{CharsetASCII, CharsetASCII, CharsetASCII, CharsetASCII}
	t.scrollTop, t.scrollBottom = 0, t.rows
	t.modes = ModeLineWrap | ModeShowCursor
	t.tabStops = defaultTabStops(t.cols)

	t.selection = NewSelection()

	t.decoder = ansicode.NewDecoder(t)

	return t
}

// Rows returns the terminal height in character rows.
func (t *Terminal) Rows() int { return t.rows }

// Cols returns the terminal width in character columns.
func (t *Terminal) Cols() int { return t.cols }

// ActiveScreen returns the currently active Screen (primary or alternate).
func (t *Terminal) ActiveScreen() *Screen { return t.active }

// CursorPos returns the current cursor position.
func (t *Terminal) CursorPos() (x, y int) { return t.cursor.X, t.cursor.Y }

// CursorVisible reports whether the cursor is currently visible.
func (t *Terminal) CursorVisible() bool { return t.cursor.Visible }

// CursorStyle returns the current cursor rendering style.
func (t *Terminal) CursorStyle() CursorStyle { return t.cursor.Style }

// Title returns the current window title string.
func (t *Terminal) Title() string { return t.title }

// HasMode reports whether the specified mode flag is enabled.
func (t *Terminal) HasMode(mode TerminalMode) bool { return t.modes&mode != 0 }

// IsAlternateScreen reports whether the alternate screen is currently active.
func (t *Terminal) IsAlternateScreen() bool { return t.active == t.alternate }

// ScrollRegion returns the current scrolling boundaries (0-based, exclusive bottom).
func (t *Terminal) ScrollRegion() (top, bottom int) { return t.scrollTop, t.scrollBottom }

// Selection returns the terminal's selection engine.
func (t *Terminal) Selection() *Selection { return t.selection }

// History returns the UTF-8 text of the active screen's full ring
// (scrollback plus visible rows), trimming the in-progress command line on
// the main screen the same way Screen.AsText does. This is the sole
// surface the IPC endpoint (ipc.Backend) needs from Terminal for its
// GET_HISTORY / SNAPSHOT_HISTORY / GET_SNAPSHOT opcodes.
func (t *Terminal) History() string {
	return t.active.AsText(t.cursor.Y)
}

// Write processes raw bytes, parsing escape sequences and updating the
// terminal state. Implements io.Writer.
//
// Scroll state is saved before processing and the viewport snaps to live.
// With keep-scroll-position enabled the saved state is restored afterward,
// as a resize does, so a scrolled-back viewport stays in place; without
// it, new output leaves the viewport live.
func (t *Terminal) Write(data []byte) (int, error) {
	t.recordingProvider.Record(data)

	t.active.SaveScrollState()
	t.stopScrolling()

	n, err := t.decoder.Write(data)

	if t.keepScrollPosition {
		if t.active.RestoreScrollState() && t.active.scrollOffset > 0 {
			t.scroll = scrollBack
		}
	}
	return n, err
}

// ScrollHistoryUp scrolls the viewport back into scrollback by up to n
// lines, returning how many it actually moved. A successful move puts the
// terminal in the scrolled-back state until StopScrolling, scrolling back
// down to live, or (absent keep-scroll-position) new output returns it.
func (t *Terminal) ScrollHistoryUp(n int) int {
	moved := t.active.ScrollHistoryUp(n)
	if moved > 0 {
		t.scroll = scrollBack
	}
	return moved
}

// ScrollHistoryDown scrolls the viewport forward toward the live screen by
// up to n lines, returning how many it actually moved.
func (t *Terminal) ScrollHistoryDown(n int) int {
	moved := t.active.ScrollHistoryDown(n)
	if t.active.scrollOffset == 0 {
		t.scroll = scrollLive
	}
	return moved
}

// StopScrolling snaps the viewport back to the live screen.
func (t *Terminal) StopScrolling() {
	t.stopScrolling()
}

// IsScrolledBack reports whether the viewport is currently showing
// scrollback rather than following live output.
func (t *Terminal) IsScrolledBack() bool {
	return t.scroll == scrollBack
}

// WriteString is a convenience wrapper converting s to bytes and calling Write.
func (t *Terminal) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

// WriteShowControls is Write with a display-only twist: C0/C1 control
// runes other than newline, carriage return, and tab are rendered in caret
// notation instead of being executed. An incomplete UTF-8 sequence at the
// end of data is dropped rather than retained, since this path exists for
// displaying suspect input, not for streaming it.
func (t *Terminal) WriteShowControls(data []byte) (int, error) {
	out := make([]byte, 0, len(data)*2)
	rest := data
	for len(rest) > 0 {
		r, n := DecodeRune(rest)
		if n == 0 {
			break
		}
		rest = rest[n:]
		if IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			if r&0x80 != 0 {
				out = append(out, '^', '[')
				r = (r & 0x7F) ^ 0x40
			} else {
				out = append(out, '^')
				r ^= 0x40
			}
		}
		out = append(out, EncodeRune(r)...)
	}
	if _, err := t.Write(out); err != nil {
		return 0, err
	}
	return len(data), nil
}

// SetPrintMode toggles media-copy print mode: while enabled, every printed
// rune's UTF-8 bytes are also sent to the print sink. A write error on the
// sink reports through the diagnostics logger and disables the mode for
// the rest of the session. Exposed as a method because the escape decoder
// has no media-copy dispatch; the embedder's binding layer drives it.
func (t *Terminal) SetPrintMode(on bool) {
	if on && t.printSink != nil {
		t.modes |= ModePrint
	} else {
		t.modes &^= ModePrint
	}
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// effectiveRow applies origin-mode's scroll-region-relative addressing.
func (t *Terminal) effectiveRow(row int) int {
	if t.modes&ModeOrigin != 0 {
		return row + t.scrollTop
	}
	return row
}

// stopScrolling returns the viewport to the live screen.
func (t *Terminal) stopScrolling() {
	t.scroll = scrollLive
	t.active.ScrollHistoryDown(t.active.ringSize())
}

// fillTemplate returns the Glyph used to fill newly exposed cells: the
// cursor's current rendering attributes with an empty rune.
func (t *Terminal) fillTemplate() Glyph {
	g := t.cursor.Template
	g.Rune = 0
	g.Attrs &^= (AttrWide | AttrDummy | AttrWrap)
	return g
}

// writeResponse writes a response back via the response provider if set.
func (t *Terminal) writeResponse(data []byte) {
	if t.responseProvider != nil {
		t.responseProvider.Write(data)
	}
}

func (t *Terminal) writeResponseString(s string) {
	t.writeResponse([]byte(s))
}

// Resize reshapes both screens: if the cursor's row would
// fall below the new height, the view is shifted up first so the cursor
// stays on-screen; scroll state is saved, set_dimension is applied to both
// screens with the cursor's fill glyph, tab stops are refreshed on column
// growth, the scroll region resets, the cursor is clamped, and the scroll
// state is restored — snapping to live and dropping the selection if it
// cannot be.
func (t *Terminal) Resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return nil
	}

	if t.cursor.Y >= rows {
		shift := t.cursor.Y - rows + 1
		t.active.ShiftViewUp(shift, t.fillTemplate())
		t.selection.Scroll(0, shift)
		t.cursor.Y -= shift
		if t.cursor.Y < 0 {
			t.cursor.Y = 0
		}
	}

	t.primary.SaveScrollState()

	fill := t.fillTemplate()
	if err := t.primary.SetDimension(rows, cols, fill); err != nil {
		return err
	}
	if err := t.alternate.SetDimension(rows, cols, fill); err != nil {
		return err
	}

	t.rows, t.cols = rows, cols
	t.scrollTop, t.scrollBottom = 0, rows
	t.growTabStops(cols)

	t.cursor.X = clamp(t.cursor.X, 0, cols-1)
	t.cursor.Y = clamp(t.cursor.Y, 0, rows-1)

	if !t.primary.RestoreScrollState() {
		t.selection.Clear()
	}

	return nil
}

// defaultTabStops builds a tab-stop table with a stop every 8th column,
// matching the conventional default hardware tab width.
func defaultTabStops(cols int) []bool {
	stops := make([]bool, cols)
	for x := 0; x < cols; x += 8 {
		stops[x] = true
	}
	return stops
}

// growTabStops resizes the tab-stop table to newCols, preserving existing
// stops and extending the every-8th-column default into any new columns.
func (t *Terminal) growTabStops(newCols int) {
	old := t.tabStops
	t.tabStops = make([]bool, newCols)
	copy(t.tabStops, old)
	for x := len(old); x < newCols; x++ {
		if x%8 == 0 {
			t.tabStops[x] = true
		}
	}
}

// nextTabStop returns the first tab stop strictly after col, or cols-1 if none.
func (t *Terminal) nextTabStop(col int) int {
	for x := col + 1; x < len(t.tabStops); x++ {
		if t.tabStops[x] {
			return x
		}
	}
	return t.cols - 1
}

// prevTabStop returns the last tab stop strictly before col, or 0 if none.
func (t *Terminal) prevTabStop(col int) int {
	for x := col - 1; x >= 0; x-- {
		if t.tabStops[x] {
			return x
		}
	}
	return 0
}

// moveToNewline advances y, scrolling the active screen up if at the
// scroll-area bottom, and optionally resets x to 0.
func (t *Terminal) moveToNewline(carriageReturn bool) {
	if t.cursor.Y == t.scrollBottom-1 {
		t.scrollUpRegion(t.scrollTop, 1)
	} else if t.cursor.Y < t.rows-1 {
		t.cursor.Y++
	}
	if carriageReturn {
		t.cursor.X = 0
	}
}

// scrollUpRegion rotates lines in [origin, scrollBottom) up by n, clearing
// newly exposed lines at the bottom. Lines leaving the top of the full
// screen (origin == 0) enter history via ShiftViewUp; interior regions use
// an in-place line rotation that never touches history. The selection is
// adjusted via Selection.Scroll.
func (t *Terminal) scrollUpRegion(origin, n int) {
	if n <= 0 {
		return
	}
	fill := t.fillTemplate()
	if origin == 0 && t.scrollBottom == t.rows {
		t.active.ShiftViewUp(n, fill)
	} else {
		t.rotateRegion(origin, t.scrollBottom, n, true, fill)
	}
	t.selection.Scroll(origin, n)
}

// scrollDownRegion is scrollUpRegion's mirror: lines in [origin, bottom)
// shift down by n and the newly exposed lines at origin are cleared.
func (t *Terminal) scrollDownRegion(origin, n int) {
	if n <= 0 {
		return
	}
	fill := t.fillTemplate()
	if origin == 0 && t.scrollBottom == t.rows {
		t.active.ShiftViewDown(n, fill)
	} else {
		t.rotateRegion(origin, t.scrollBottom, n, false, fill)
	}
	t.selection.Scroll(origin, -n)
}

// rotateRegion performs an in-place line rotation within [top, bottom) for
// scroll regions that do not span the full screen, so that content outside
// the region is swapped out of the way and back, remaining visually fixed.
func (t *Terminal) rotateRegion(top, bottom, n int, up bool, fill Glyph) {
	height := bottom - top
	if n > height {
		n = height
	}
	// Snapshot the region before writing: destinations overlap sources.
	lines := make([]*Line, height)
	for i := 0; i < height; i++ {
		lines[i] = t.active.Line(top + i).clone()
	}
	for i := 0; i < height; i++ {
		var src int
		if up {
			src = (i + n) % height
		} else {
			src = (i - n + height) % height
		}
		dst := t.active.Line(top + i)
		*dst = *lines[src]
		dst.MarkDirty()
	}
	var clearFrom, clearTo int
	if up {
		clearFrom, clearTo = height-n, height
	} else {
		clearFrom, clearTo = 0, n
	}
	for i := clearFrom; i < clearTo; i++ {
		l := t.active.Line(top + i)
		l.Clear(0, l.Cols(), fill)
		l.SetWrapped(false)
	}
}
