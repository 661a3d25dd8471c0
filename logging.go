package headlessterm

import (
	"io"
	"log"
)

// diagnosticsLogger is the narrow surface Terminal and Screen need from a
// *log.Logger. Kept as an interface so tests can substitute a recording
// fake without pulling in the real logger.
type diagnosticsLogger interface {
	Printf(format string, v ...any)
}

// defaultLogger discards everything, matching a library that is silent by
// default unless a caller opts in via WithLogger.
func defaultLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// Diagnostic message prefixes, not an enum, since the logger is a plain
// Printf sink rather than a structured one. Bad UTF-8, malformed escape
// sequences and undecodable OSC 52 payloads are absorbed by the decoder
// itself and never reach the logger.
const (
	logConfigWarning = "configuration value out of range, using default"
)
