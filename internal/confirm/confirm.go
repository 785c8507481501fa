// Package confirm provides the yes/no decision port used when the pipeline
// needs operator consent, such as creating a missing project root.
package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Confirmer answers a yes/no question. Implementations default to "no".
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Fixed answers every question with the same value; used for --yes and --no-input.
type Fixed bool

func (f Fixed) Confirm(context.Context, string) (bool, error) {
	return bool(f), nil
}

// Console reads a single line answer. Only "y" and "yes" count as consent.
type Console struct {
	In  io.Reader
	Out io.Writer

	// r is shared across calls so lines buffered ahead are not lost.
	r *bufio.Reader
}

// NewConsole returns a Console bound to stdin and stderr.
func NewConsole() *Console {
	return &Console{In: os.Stdin, Out: os.Stderr}
}

func (c *Console) Confirm(ctx context.Context, question string) (bool, error) {
	if _, err := fmt.Fprintf(c.Out, "%s (y/N): ", question); err != nil {
		return false, err
	}

	type answer struct {
		line string
		err  error
	}
	if c.r == nil {
		c.r = bufio.NewReader(c.In)
	}
	r := c.r
	ch := make(chan answer, 1)
	go func() {
		line, err := r.ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.err != io.EOF {
			return false, fmt.Errorf("read answer: %w", a.err)
		}
		return isYes(a.line), nil
	}
}

func isYes(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Form asks through an interactive huh confirm field.
type Form struct{}

func (Form) Confirm(ctx context.Context, question string) (bool, error) {
	confirmed := false
	field := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}

var ciEnvVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_URL",
	"BUILDKITE",
}

// InCI reports whether a well-known CI environment variable is set.
func InCI() bool {
	for _, v := range ciEnvVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// Select picks the confirmer for a run. Explicit flags win; under CI every
// question is declined; a terminal gets the interactive form; piped stdin is
// read line by line.
func Select(yes, noInput bool) Confirmer {
	switch {
	case yes:
		return Fixed(true)
	case noInput, InCI():
		return Fixed(false)
	case term.IsTerminal(int(os.Stdin.Fd())):
		return Form{}
	default:
		return NewConsole()
	}
}
