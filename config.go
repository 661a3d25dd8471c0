package headlessterm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Config holds the subset of CLI/config-file settings the core depends on:
// everything else (window chrome, fonts, key bindings) lives outside this
// module's scope.
type Config struct {
	HistoryLength      int
	AllowAltScreen     bool
	KeepScrollPosition bool
	Rows               int
	Cols               int
	CursorShape        CursorStyle
}

// DefaultConfig returns the settings a freshly started session uses absent
// any config file or flags.
func DefaultConfig() Config {
	return Config{
		HistoryLength:      2000,
		AllowAltScreen:     true,
		KeepScrollPosition: false,
		Rows:               24,
		Cols:               80,
		CursorShape:        CursorStyleSteadyBlock,
	}
}

// ParseConfigFile reads `key = value` lines, skipping blank lines and `#`
// comments, and applies recognized keys on top of DefaultConfig(). An
// out-of-range or malformed value is logged via logger and the default for
// that key is kept rather than rejecting the whole file ("Configuration
// error"). A nil logger discards these warnings.
func ParseConfigFile(r io.Reader, logger diagnosticsLogger) (Config, error) {
	if logger == nil {
		logger = defaultLogger()
	}
	cfg := DefaultConfig()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			logger.Printf("%s: line %d: missing '='", logConfigWarning, lineNo)
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		applyConfigKey(&cfg, key, value, lineNo, logger)
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

func applyConfigKey(cfg *Config, key, value string, lineNo int, logger diagnosticsLogger) {
	switch key {
	case "keep_scroll_position":
		b, err := strconv.ParseBool(value)
		if err != nil {
			logger.Printf("%s: line %d: keep_scroll_position=%q", logConfigWarning, lineNo, value)
			return
		}
		cfg.KeepScrollPosition = b

	case "history_len":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			logger.Printf("%s: line %d: history_len=%q", logConfigWarning, lineNo, value)
			return
		}
		cfg.HistoryLength = n

	case "rows":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 1000 {
			logger.Printf("%s: line %d: rows=%q (want 1..1000)", logConfigWarning, lineNo, value)
			return
		}
		cfg.Rows = n

	case "cols":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 1000 {
			logger.Printf("%s: line %d: cols=%q (want 1..1000)", logConfigWarning, lineNo, value)
			return
		}
		cfg.Cols = n

	case "cursor_shape":
		style, ok := parseCursorStyle(value)
		if !ok {
			logger.Printf("%s: line %d: cursor_shape=%q", logConfigWarning, lineNo, value)
			return
		}
		cfg.CursorShape = style

	default:
		logger.Printf("%s: line %d: unknown key %q", logConfigWarning, lineNo, key)
	}
}
