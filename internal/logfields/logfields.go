package logfields

import (
	"log/slog"
	"strings"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyResult     = "result"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyDir        = "dir"
	KeyCommand    = "command"
	KeyExitCode   = "exit_code"
	KeyURL        = "url"
	KeyBranch     = "branch"
	KeyBackend    = "backend"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Result(r string) slog.Attr       { return slog.String(KeyResult, r) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Dir(d string) slog.Attr          { return slog.String(KeyDir, d) }
func ExitCode(c int) slog.Attr        { return slog.Int(KeyExitCode, c) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Backend(b string) slog.Attr      { return slog.String(KeyBackend, b) }

// Command joins an argument vector for display; it is never passed to a shell.
func Command(name string, args ...string) slog.Attr {
	return slog.String(KeyCommand, strings.Join(append([]string{name}, args...), " "))
}

// Duration reports d in fractional milliseconds under KeyDurationMS.
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
