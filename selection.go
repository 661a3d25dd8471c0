package headlessterm

import "strings"

// SelectionSnap controls how a selection's endpoints are expanded beyond
// the literal drag range.
type SelectionSnap int

const (
	SnapNone SelectionSnap = iota
	SnapWord
	SnapWordSep
	SnapLine
	SnapURI
)

// SelectionFlag is a bitmask of context flags passed to Start/Update.
type SelectionFlag uint8

const (
	SelBackward SelectionFlag = 1 << iota
	SelAltSnap
	SelFinished
	SelRectangular
	SelFullLines
)

type selectionState int

const (
	selIdle selectionState = iota
	selEmpty
	selReady
)

// CharPos is a zero-based (x, y) screen position.
type CharPos struct {
	X, Y int
}

// SelectionRange is a begin/end pair of CharPos, in whichever ordering
// (original click order, or normalized top-left-to-bottom-right) the
// caller currently holds.
type SelectionRange struct {
	Begin, End CharPos
}

// DefaultWordDelimiters is the default set of characters treated as word
// boundaries for SnapWord, matching common terminal defaults.
const DefaultWordDelimiters = " \t\n\x00|`'\"(){}[]<>"

// Selection tracks the current copy/paste selection on a purely logical
// level, independent of any rendering surface. The state machine is
// {IDLE -> EMPTY -> READY -> IDLE}: Start enters EMPTY (or READY if a snap
// was requested), Update extends and moves to READY, and an Update carrying
// SelFinished returns to IDLE (or clears outright if still EMPTY and
// ending where it began).
type Selection struct {
	screen *Screen
	isAlt  bool // which screen Start() was called against

	snap  SelectionSnap
	flags SelectionFlag
	state selectionState

	orig, normalized SelectionRange

	wordDelimiters string
}

// NewSelection creates an idle selection bound to no screen yet; Start
// binds it.
func NewSelection() *Selection {
	return &Selection{wordDelimiters: DefaultWordDelimiters}
}

// SetWordDelimiters overrides the delimiter set used by SnapWord.
func (s *Selection) SetWordDelimiters(delims string) {
	if delims != "" {
		s.wordDelimiters = delims
	}
}

// Clear removes the current selection and resets to IDLE.
func (s *Selection) Clear() {
	*s = Selection{wordDelimiters: s.wordDelimiters}
}

// Start begins a new selection at pos against the given screen, recording
// which screen (main/alt) it started on for later hasScreenChanged checks.
// If snap requests automatic expansion the state immediately advances to
// READY (since a snap already has content to show); otherwise it enters
// EMPTY pending the first Update.
func (s *Selection) Start(scr *Screen, pos CharPos, snap SelectionSnap, ctx SelectionFlag) {
	s.screen = scr
	s.isAlt = scr.IsAlt()
	s.snap = snap
	s.flags = ctx
	s.orig = SelectionRange{Begin: pos, End: pos}
	s.normalized = s.orig

	if snap != SnapNone {
		s.applySnap()
		s.state = selReady
	} else {
		s.state = selEmpty
	}
}

// Update extends the selection to pos. A ctx carrying SelFinished ends the
// interaction: the state returns to IDLE, except that a selection still
// EMPTY whose end is its start (a click with no drag) is cleared outright.
func (s *Selection) Update(pos CharPos, ctx SelectionFlag) {
	if s.state == selIdle {
		return
	}
	s.flags = ctx
	s.orig.End = pos
	s.normalize()
	if s.snap != SnapNone {
		s.applySnap()
	}

	if ctx&SelFinished != 0 {
		if s.state == selEmpty && s.orig.Begin == s.orig.End {
			s.Clear()
			return
		}
		s.state = selIdle
		return
	}
	s.state = selReady
}

func (s *Selection) normalize() {
	b, e := s.orig.Begin, s.orig.End
	if e.Y < b.Y || (e.Y == b.Y && e.X < b.X) {
		b, e = e, b
	}
	s.normalized = SelectionRange{Begin: b, End: e}
}

func (s *Selection) isRectangular() bool { return s.flags&SelRectangular != 0 }
func (s *Selection) isFullLines() bool   { return s.flags&SelFullLines != 0 }
func (s *Selection) isRegular() bool     { return !s.isRectangular() && !s.isFullLines() }

// hasScreenChanged reports whether the active screen's alt/main identity
// differs from the one recorded at Start.
func (s *Selection) hasScreenChanged() bool {
	if s.screen == nil {
		return true
	}
	return s.screen.IsAlt() != s.isAlt
}

// IsSelected reports whether pos falls within the current selection. It
// always returns false once the screen has flipped between main and alt
// since Start (a selection is always screen-bound).
func (s *Selection) IsSelected(pos CharPos) bool {
	if s.state == selIdle && !s.hasContent() {
		return false
	}
	if s.hasScreenChanged() {
		return false
	}

	b, e := s.normalized.Begin, s.normalized.End

	if s.isRectangular() {
		if pos.Y < b.Y || pos.Y > e.Y {
			return false
		}
		lo, hi := b.X, e.X
		if lo > hi {
			lo, hi = hi, lo
		}
		return pos.X >= lo && pos.X <= hi
	}

	if s.isFullLines() {
		return pos.Y >= b.Y && pos.Y <= e.Y
	}

	// Regular: reads like text, wrapping across wrapped line breaks.
	if pos.Y < b.Y || pos.Y > e.Y {
		return false
	}
	if pos.Y == b.Y && pos.X < b.X {
		return false
	}
	if pos.Y == e.Y && pos.X > e.X {
		return false
	}
	return true
}

func (s *Selection) hasContent() bool {
	return s.state != selIdle || s.orig != SelectionRange{}
}

// Scroll adjusts the selection to a scroll of numLines beginning at
// originY. A selection lying wholly above originY is left unchanged.
// Otherwise every endpoint on or below originY moves up by numLines (down
// for a negative count) while endpoints above originY stay; if a moved
// endpoint would leave the top of the screen the selection is cleared.
func (s *Selection) Scroll(originY, numLines int) {
	if s.state == selIdle && !s.hasContent() {
		return
	}
	b, e := s.normalized.Begin, s.normalized.End
	if originY > e.Y || originY > s.orig.Begin.Y && originY > s.orig.End.Y {
		// Origin below both ranges: nothing to do, selection unaffected.
		return
	}
	if b.Y < originY && e.Y < originY {
		return
	}

	shift := func(p *CharPos) bool {
		if p.Y < originY {
			return true
		}
		p.Y -= numLines
		return p.Y >= 0
	}
	o1, o2 := s.orig.Begin, s.orig.End
	if !shift(&o1) || !shift(&o2) {
		s.Clear()
		return
	}
	s.orig = SelectionRange{Begin: o1, End: o2}
	s.normalize()
}

// applySnap expands the normalized range according to the active snap
// mode. Word/WordSep/Line/URI are applied independently at each end.
func (s *Selection) applySnap() {
	switch s.snap {
	case SnapWord:
		s.normalized.Begin = s.snapWord(s.normalized.Begin, false)
		s.normalized.End = s.snapWord(s.normalized.End, true)
		s.tryURISnap()
	case SnapWordSep:
		s.normalized.Begin = s.snapWordSep(s.normalized.Begin, false)
		s.normalized.End = s.snapWordSep(s.normalized.End, true)
	case SnapLine:
		s.normalized.Begin = s.snapLineStart(s.normalized.Begin)
		s.normalized.End = s.snapLineEnd(s.normalized.End)
	}
}

func (s *Selection) glyphAt(p CharPos) Glyph {
	if s.screen == nil {
		return Glyph{}
	}
	l := s.screen.Line(p.Y)
	if l == nil {
		return Glyph{}
	}
	return l.At(p.X)
}

func (s *Selection) isDelimiter(g Glyph) bool {
	if g.IsEmpty() {
		return true
	}
	return strings.ContainsRune(s.wordDelimiters, g.Rune)
}

// snapWord grows p outward while adjacent characters are not delimiters.
// If the starting character is itself a delimiter, no expansion occurs.
func (s *Selection) snapWord(p CharPos, forward bool) CharPos {
	if s.isDelimiter(s.glyphAt(p)) {
		return p
	}
	cols := s.screen.Cols()
	for {
		next := p
		if forward {
			next.X++
			if next.X >= cols {
				break
			}
		} else {
			next.X--
			if next.X < 0 {
				break
			}
		}
		if s.isDelimiter(s.glyphAt(next)) {
			break
		}
		p = next
	}
	return p
}

// snapWordSep grows p outward until the same delimiter rune recurs,
// supporting symmetric quote/bracket-style selection.
func (s *Selection) snapWordSep(p CharPos, forward bool) CharPos {
	delim := s.glyphAt(p)
	if !s.isDelimiter(delim) {
		return p
	}
	cols := s.screen.Cols()
	cur := p
	for {
		next := cur
		if forward {
			next.X++
			if next.X >= cols {
				break
			}
		} else {
			next.X--
			if next.X < 0 {
				break
			}
		}
		g := s.glyphAt(next)
		if g.Rune == delim.Rune {
			return next
		}
		cur = next
	}
	return p
}

func (s *Selection) snapLineStart(p CharPos) CharPos {
	y := p.Y
	for y > 0 {
		prev := s.screen.Line(y - 1)
		if prev == nil || !prev.Wrapped() {
			break
		}
		y--
	}
	return CharPos{X: 0, Y: y}
}

func (s *Selection) snapLineEnd(p CharPos) CharPos {
	y := p.Y
	for {
		l := s.screen.Line(y)
		if l == nil || !l.Wrapped() {
			break
		}
		if y+1 >= s.screen.Rows() {
			break
		}
		y++
	}
	x := 0
	if l := s.screen.Line(y); l != nil {
		x = l.usedLength()
		if x > 0 {
			x--
		}
	}
	return CharPos{X: x, Y: y}
}

// defaultURISchemes lists the schemes tryURISnap recognizes when extending
// a word-mode selection that begins with "scheme://".
var defaultURISchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"file":  true,
	"git":   true,
	"ssh":   true,
}

const uriTerminators = " \t\n<>\"'`(){}[]"

// tryURISnap extends the selection end to the full URI terminator set if
// the selection begins at "scheme://".
func (s *Selection) tryURISnap() {
	b := s.normalized.Begin
	l := s.screen.Line(b.Y)
	if l == nil {
		return
	}
	n := l.usedLength()
	var sb strings.Builder
	for x := b.X; x < n; x++ {
		g := l.At(x)
		if g.Attrs.HasAttr(AttrDummy) {
			continue
		}
		sb.WriteRune(g.Rune)
	}
	text := sb.String()
	schemeEnd := strings.Index(text, "://")
	if schemeEnd <= 0 {
		return
	}
	if !defaultURISchemes[text[:schemeEnd]] {
		return
	}
	end := b
	for x := b.X; x < n; x++ {
		g := l.At(x)
		if strings.ContainsRune(uriTerminators, g.Rune) {
			break
		}
		end.X = x
	}
	if end.Y >= s.normalized.End.Y || (end.Y == s.normalized.End.Y && end.X > s.normalized.End.X) {
		s.normalized.End = end
	}
}

// Text returns the content of the current selection, or "" if nothing is
// selected.
func (s *Selection) Text() string {
	if s.state == selIdle && !s.hasContent() {
		return ""
	}
	if s.hasScreenChanged() || s.screen == nil {
		return ""
	}

	b, e := s.normalized.Begin, s.normalized.End
	var sb strings.Builder
	for y := b.Y; y <= e.Y; y++ {
		l := s.screen.Line(y)
		if l == nil {
			continue
		}
		startX, endX := 0, l.usedLength()
		if s.isRectangular() {
			startX, endX = b.X, e.X+1
			if endX > l.Cols() {
				endX = l.Cols()
			}
		} else if !s.isFullLines() {
			if y == b.Y {
				startX = b.X
			}
			if y == e.Y && e.X+1 < endX {
				endX = e.X + 1
			}
		}
		for x := startX; x < endX; x++ {
			g := l.At(x)
			if g.Attrs.HasAttr(AttrDummy) {
				continue
			}
			if g.IsEmpty() {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteRune(g.Rune)
		}
		if y < e.Y && !(s.isRegular() && l.Wrapped()) {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
