// Package runner executes external commands as argument vectors.
//
// Commands are never routed through a shell. Output is captured into the
// returned Result; a non-zero exit becomes a command-category ClassifiedError
// unless the Command opts out with AllowFailure.
package runner

import (
	"context"
	"time"
)

// Command describes a single process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory of the child; the parent never changes its own.
	Dir string
	// Env entries (KEY=VALUE) appended to the inherited environment.
	Env []string
	// AllowFailure turns a non-zero exit into a plain Result instead of an error.
	AllowFailure bool
}

// Argv returns the full argument vector including the program name.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// Result is the outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Success reports a zero exit code.
func (r *Result) Success() bool { return r != nil && r.ExitCode == 0 }

// Runner executes commands. Implementations must honor ctx cancellation by
// terminating the child.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}
