// Package testutil holds fakes and assertions shared by package tests.
package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/runner"
)

// Effect runs when a scripted command matches, e.g. to create the files a real
// build would produce.
type Effect func(cmd runner.Command) error

type rule struct {
	match    func(runner.Command) bool
	exitCode int
	effect   Effect
}

// FakeRunner records every command and replays scripted outcomes. Unscripted
// commands succeed with exit code 0.
type FakeRunner struct {
	mu    sync.Mutex
	calls []runner.Command
	rules []rule
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On scripts the first command whose name (base name) and leading arguments
// match. Later rules never shadow earlier ones.
func (f *FakeRunner) On(name string, args ...string) *Script {
	return &Script{f: f, match: func(c runner.Command) bool {
		if baseName(c.Name) != baseName(name) {
			return false
		}
		return len(c.Args) >= len(args) && slices.Equal(c.Args[:len(args)], args)
	}}
}

// Script configures a rule registered through On.
type Script struct {
	f     *FakeRunner
	match func(runner.Command) bool
}

// Exit registers the exit code returned for matching commands.
func (s *Script) Exit(code int) {
	s.register(code, nil)
}

// Do registers a side effect for matching commands, which exit 0.
func (s *Script) Do(effect Effect) {
	s.register(0, effect)
}

func (s *Script) register(code int, effect Effect) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.rules = append(s.f.rules, rule{match: s.match, exitCode: code, effect: effect})
}

// Run implements runner.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd runner.Command) (*runner.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryCanceled, "command canceled").Build()
	}

	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	var matched *rule
	for i := range f.rules {
		if f.rules[i].match(cmd) {
			matched = &f.rules[i]
			break
		}
	}
	f.mu.Unlock()

	res := &runner.Result{}
	if matched != nil {
		if matched.effect != nil {
			if err := matched.effect(cmd); err != nil {
				return nil, err
			}
		}
		res.ExitCode = matched.exitCode
	}
	if res.ExitCode != 0 && !cmd.AllowFailure {
		return res, runner.ExitError(cmd, res)
	}
	return res, nil
}

// Commands returns a copy of the recorded commands in call order.
func (f *FakeRunner) Commands() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Lines renders recorded commands as space-joined argument vectors.
func (f *FakeRunner) Lines() []string {
	cmds := f.Commands()
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = strings.Join(c.Argv(), " ")
	}
	return out
}

// Count returns how many recorded commands match name and leading args.
func (f *FakeRunner) Count(name string, args ...string) int {
	n := 0
	for _, c := range f.Commands() {
		if baseName(c.Name) == baseName(name) && len(c.Args) >= len(args) && slices.Equal(c.Args[:len(args)], args) {
			n++
		}
	}
	return n
}

func baseName(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
