// Package headlessterm provides a headless VT-compatible terminal emulator
// core: no rendering, no PTY, no process management. It parses a byte stream
// of text and escape sequences and turns it into addressable screen state,
// the way a terminal emulator's model layer does before a GUI ever draws it.
//
// This makes it useful for:
//   - Driving terminal applications under test without a real display
//   - Building terminal multiplexers, recorders, and web-based terminals
//   - Screen scraping and automation of CLI tools
//
// # Quick Start
//
//	term := headlessterm.New(headlessterm.WithSize(24, 80))
//	term.WriteString("\x1b[31mHello \x1b[32mWorld\x1b[0m!")
//	snap := term.Snapshot(headlessterm.SnapshotDetailText)
//	fmt.Println(snap.Lines[0].Text) // "Hello World!"
//
// # Architecture
//
// The package is organized around these core types:
//
//   - [Terminal]: applies parsed escape/control sequences to screen state
//   - [Screen]: a ring-buffered viewport plus scrollback for one of the two
//     screen buffers (primary and alternate)
//   - [Line]: one row of [Glyph] cells within a Screen
//   - [Glyph]: a single character cell with attributes and colors
//   - [Cursor]: position, glyph template, and mode flags
//   - [Selection]: a logical text selection bound to screen coordinates
//
// Terminal implements [io.Writer], so driving it is a matter of copying a
// process's output into it:
//
//	cmd := exec.Command("ls", "-la", "--color")
//	cmd.Stdout = term
//	cmd.Run()
//
// # Dual Screens
//
// Terminal maintains two Screens:
//
//   - primary: scrollback-backed, used in normal operation
//   - alternate: no scrollback, used by full-screen applications (vim, less,
//     htop)
//
// Applications switch between them via CSI ?1049h/l; [Terminal.IsAlternateScreen]
// reports which one is currently active.
//
// # Glyphs and Attributes
//
// Each [Glyph] carries a rune, an [Attr] bitmask (bold, faint, italic,
// underline, blink, reverse, invisible, struck, plus the wrap/wide/dummy
// bookkeeping bits), and a foreground/background [Color] pair. Double-width
// runes occupy two cells: a WIDE glyph followed by a DUMMY spacer.
//
// # Colors
//
// [Color] packs either a palette index (basic 16, 6x6x6 cube, grayscale
// ramp, and the reserved foreground/background/cursor slots) or a 24-bit
// true-color value. [Terminal.SetColor] overrides a palette index with a
// theme color; [Terminal.ResetColor] removes the override.
//
// # Providers
//
// Providers handle side-effecting terminal events. All are optional, with
// no-op defaults:
//
//   - [BellProvider]: bell/beep events
//   - [TitleProvider]: window title changes (OSC 0/1/2)
//   - [ClipboardProvider]: clipboard read/write (OSC 52)
//   - [APCProvider], [PMProvider], [SOSProvider]: raw control-string payloads
//   - [RecordingProvider]: captures raw input bytes before parsing
//   - [SizeProvider]: answers pixel-dimension queries the core can't compute
//     on its own
//   - [Renderer]: a pull interface [Terminal.Draw] batches dirty lines and
//     cursor updates into; without one, dirty flags simply accumulate
//
//	term := headlessterm.New(
//	    headlessterm.WithResponse(ptyWriter),
//	    headlessterm.WithBell(&myBellHandler{}),
//	    headlessterm.WithTitle(&myTitleHandler{}),
//	)
//
// # Terminal Modes
//
// Behavior flags are tracked as a [TerminalMode] bitmask:
//
//	term.HasMode(headlessterm.ModeLineWrap)
//	term.HasMode(headlessterm.ModeBracketedPaste)
//
// # Selection
//
// [Terminal.Selection] returns the terminal's [Selection] engine, which
// tracks a logical anchor/head pair through an IDLE/EMPTY/READY state
// machine and invalidates itself when the screen scrolls out from under it.
//
// # Snapshots
//
// [Terminal.Snapshot] captures the active screen at one of three detail
// levels:
//
//	term.Snapshot(headlessterm.SnapshotDetailText)   // plain text rows
//	term.Snapshot(headlessterm.SnapshotDetailStyled) // runs of shared style
//	term.Snapshot(headlessterm.SnapshotDetailFull)   // per-cell attributes
//
// # Configuration
//
// [ParseConfigFile] reads a simple `key = value` configuration format (with
// `#` comments); out-of-range values are logged through the configured
// [diagnosticsLogger] and replaced with defaults rather than rejected.
//
// # IPC Endpoint
//
// The [ipc] subpackage exposes a running Terminal's screen/history over an
// abstract-namespace SOCK_SEQPACKET socket, the same mechanism the
// reference implementation's `nst-msg` client utility talks to:
//
//	srv := ipc.NewServer(os.Getpid(), term, ipc.WithCwdProvider(cwdSource))
//	srv.Start()
//	defer srv.Close()
//
// Terminal implements [ipc.Backend] via [Terminal.History]; GET_CWD and
// SET_THEME are answered through the optional [ipc.CwdProvider] and
// [ipc.ThemeProvider] collaborators, since resolving a child process's
// working directory and applying a named theme are both outside this
// module's scope.
//
// # Concurrency
//
// Terminal carries no internal locking: there is exactly one mutator, the
// event loop feeding [Terminal.Write], matching the single-threaded
// cooperative model this core assumes. Callers that need concurrent access
// must serialize it themselves.
//
// # Supported Sequences
//
// Cursor movement and addressing, save/restore (DECSC/DECRC), erase (ED/EL/
// ECH), insert/delete (ICH/DCH/IL/DL), scrolling and scroll regions (SU/SD/
// DECSTBM), SGR character attributes with full color support, DECSET/DECRST
// modes, device status reports, the alternate screen buffer, bracketed
// paste, window titles, and OSC 52 clipboard access. Sixel and Kitty inline
// graphics are accepted and parsed but not rendered into screen state. For
// the complete sequence inventory, see the [go-ansicode] package this module
// parses with.
//
// [go-ansicode]: https://github.com/danielgatis/go-ansicode
package headlessterm
