// Package debug provides category-based debug logging for respipe.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): controlled via RESPIPE_DEBUG env or config
//   - Levels (HOW MUCH detail): controlled via RESPIPE_LOG_LEVEL env or config
//
// Usage:
//
//	debug.Log("pipeline", "decision", "handler", "gzip", "state", "working")
//	if debug.Enabled("pipeline") { /* expensive formatting */ }
//
// Categories: pipeline, transport, config, all.
// Levels: ERROR, WARN, INFO, DEBUG, TRACE.
package debug

import (
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace is below slog.LevelDebug for maximum verbosity.
// At TRACE, the bytes each transformer emits are logged as hex dumps.
const LevelTrace = slog.LevelDebug - 4

// maxDump bounds the number of payload bytes included in a trace dump.
const maxDump = 256

// categories holds the set of enabled debug categories.
// Access is read-only after Init(), so no synchronization needed.
var categories map[string]bool

func init() {
	categories = parseCategories(os.Getenv("RESPIPE_DEBUG"))
}

// Init configures the debug system and installs the default slog logger.
// Environment overrides config. format is "text" or "json"; anything else
// falls back to text. The installed logger is returned for callers that
// pass loggers explicitly.
func Init(configCategories, configLevel, format string) *slog.Logger {
	return initTo(os.Stderr, configCategories, configLevel, format)
}

func initTo(w io.Writer, configCategories, configLevel, format string) *slog.Logger {
	cats := os.Getenv("RESPIPE_DEBUG")
	if cats == "" {
		cats = configCategories
	}
	categories = parseCategories(cats)

	level := os.Getenv("RESPIPE_LOG_LEVEL")
	if level == "" {
		level = configLevel
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug message for the given category.
// If the category is not enabled, this is a no-op.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a trace-level message for the given category.
// Only visible when RESPIPE_LOG_LEVEL=TRACE.
func Trace(category string, msg string, args ...any) {
	if !TraceIsEnabled(category) {
		return
	}
	slog.Log(nil, LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// TraceIsEnabled reports whether TRACE level is active for the given category.
func TraceIsEnabled(category string) bool {
	if !Enabled(category) {
		return false
	}
	return slog.Default().Enabled(nil, LevelTrace)
}

// Bytes emits a trace-level hex dump of p, cut at 256 bytes.
func Bytes(category string, msg string, p []byte) {
	if !TraceIsEnabled(category) {
		return
	}
	n := len(p)
	if n > maxDump {
		p = p[:maxDump]
	}
	slog.Log(nil, LevelTrace, msg, "debug", category, "len", n, "dump", hex.Dump(p))
}

// ParseLevel converts a level string to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "INFO", "":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether s names a known level.
func ValidLevel(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE", "DEBUG", "INFO", "", "WARN", "WARNING", "ERROR":
		return true
	}
	return false
}

// Categories returns the list of enabled categories.
func Categories() []string {
	var result []string
	for k := range categories {
		result = append(result, k)
	}
	return result
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	if s == "" {
		return m
	}
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
