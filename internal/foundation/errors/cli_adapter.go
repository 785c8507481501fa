package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Exit codes returned by the CLI, one per error category.
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitUsage       = 2
	ExitFileSystem  = 3
	ExitCommand     = 4
	ExitArtifact    = 6
	ExitConfig      = 7
	ExitLock        = 9
	ExitInternal    = 10
	ExitInterrupted = 130
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
	}
}

// WithOutput redirects user-facing messages (stderr by default).
func (a *CLIErrorAdapter) WithOutput(w io.Writer) *CLIErrorAdapter {
	a.out = w
	return a
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	return ExitCode(err)
}

// ExitCode maps an error to the process exit code for its category.
// Unclassified errors exit with ExitGeneral.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if ce, ok := AsClassified(err); ok {
		return ce.Category().ExitCode()
	}
	return ExitGeneral
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	if a.verbose {
		return fmt.Sprintf("Error: %v", err)
	}
	if classified, ok := AsClassified(err); ok {
		if classified.Cause() != nil {
			return fmt.Sprintf("Error: %s: %v", classified.Detail(), classified.Cause())
		}
		return "Error: " + classified.Detail()
	}
	return fmt.Sprintf("Error: %v", err)
}

// Report logs the error, prints the diagnostic and returns the exit code to use.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return ExitSuccess
	}
	a.logError(err)
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	return a.ExitCodeFor(err)
}

func (a *CLIErrorAdapter) logError(err error) {
	if classified, ok := AsClassified(err); ok {
		attrs := []slog.Attr{
			slog.String("category", string(classified.Category())),
		}
		for k, v := range classified.Context() {
			attrs = append(attrs, slog.Any(k, v))
		}
		if classified.Cause() != nil {
			attrs = append(attrs, slog.String("cause", classified.Cause().Error()))
		}
		level := slog.LevelError
		if classified.Severity() == SeverityWarning {
			level = slog.LevelWarn
		}
		a.logger.LogAttrs(context.Background(), level, classified.Message(), attrs...)
		return
	}
	a.logger.Error("Unclassified error", "error", err)
}
