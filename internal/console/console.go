// Package console prints the operator-facing progress lines. Structured logs go
// to slog; these lines are for humans watching a terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gookit/color"
)

var (
	colArrow   = color.HEX("#FFEB3B")
	colSuccess = color.HEX("#1976D2")
	colSkip    = color.Gray
	colWarn    = color.Warn
	colError   = color.Error
	colNote    = color.Tag("notice")
)

// Printer writes progress lines to an output stream.
type Printer struct {
	out   io.Writer
	quiet bool
}

// New returns a Printer writing to w (stdout when nil). Colors are disabled
// automatically when w is not a terminal or NO_COLOR is set.
func New(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w}
}

// Quiet returns a Printer that discards everything.
func Quiet() *Printer {
	return &Printer{out: io.Discard, quiet: true}
}

// DisableColor forces plain output, e.g. for JSON logging or tests.
func DisableColor() {
	color.Disable()
}

// Stage announces the start of a stage.
func (p *Printer) Stage(name string) {
	p.line(colArrow.Sprint("==> ") + name)
}

// Done reports a completed stage.
func (p *Printer) Done(name string, d time.Duration) {
	p.line(colSuccess.Sprint("  ok ") + fmt.Sprintf("%s (%s)", name, d.Round(time.Millisecond)))
}

// Skipped reports a stage that found its work already done.
func (p *Printer) Skipped(name, reason string) {
	p.line(colSkip.Sprint("  skip ") + fmt.Sprintf("%s: %s", name, reason))
}

// Warn reports a non-fatal problem.
func (p *Printer) Warn(name string, err error) {
	p.line(colWarn.Sprint("  warn ") + fmt.Sprintf("%s: %v", name, err))
}

// Failed reports the stage that aborted the run.
func (p *Printer) Failed(name string, err error) {
	p.line(colError.Sprint("  FAIL ") + fmt.Sprintf("%s: %v", name, err))
}

// Note prints an operator hint such as the environment setup command.
func (p *Printer) Note(format string, args ...any) {
	p.line(colNote.Sprint("hint: ") + fmt.Sprintf(format, args...))
}

func (p *Printer) line(s string) {
	if p == nil || p.quiet {
		return
	}
	_, _ = fmt.Fprintln(p.out, s)
}
