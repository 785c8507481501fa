package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/logfields"
)

// maxLoggedOutput bounds how much captured output is attached to a failure log.
const maxLoggedOutput = 4096

// Exec runs commands with os/exec in their own process group.
type Exec struct {
	logger *slog.Logger
	// echo, when set, receives a live copy of the child's stdout and stderr.
	echo io.Writer
}

// NewExec returns an Exec runner. echo may be nil.
func NewExec(logger *slog.Logger, echo io.Writer) *Exec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exec{logger: logger, echo: echo}
}

func (e *Exec) Run(ctx context.Context, c Command) (*Result, error) {
	if c.Name == "" {
		return nil, errors.InternalError("command name is empty").Build()
	}
	if err := ctx.Err(); err != nil {
		return nil, canceled(c, err)
	}

	// #nosec G204 -- argument vectors come from the validated configuration
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if e.echo != nil {
		cmd.Stdout = io.MultiWriter(&stdout, e.echo)
		cmd.Stderr = io.MultiWriter(&stderr, e.echo)
	}

	cmdAttr := logfields.Command(c.Name, c.Args...)
	e.logger.Info("Running command", cmdAttr, logfields.Dir(c.Dir))

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryCommand, "failed to start command").
			WithContext("command", strings.Join(c.Argv(), " ")).
			WithContext("dir", c.Dir).Build()
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	select {
	case <-ctx.Done():
		// Kill the whole group so grandchildren (make jobs, compilers) go too.
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		<-done
		e.logger.Warn("Command interrupted", cmdAttr, logfields.Duration(time.Since(start)))
		return nil, canceled(c, ctx.Err())
	case waitErr = <-done:
	}

	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(waitErr, &exitErr) {
			return nil, errors.WrapError(waitErr, errors.CategoryCommand, "failed to execute command").
				WithContext("command", strings.Join(c.Argv(), " ")).Build()
		}
		res.ExitCode = exitErr.ExitCode()
	}

	if out := strings.TrimSpace(string(res.Stdout)); out != "" {
		e.logger.Debug("Command stdout", cmdAttr, slog.String("output", truncate(out)))
	}

	if res.ExitCode != 0 {
		e.logger.Warn("Command exited non-zero",
			cmdAttr,
			logfields.ExitCode(res.ExitCode),
			logfields.Duration(res.Duration),
			slog.String("stderr", truncate(strings.TrimSpace(string(res.Stderr)))))
		if !c.AllowFailure {
			return res, ExitError(c, res)
		}
		return res, nil
	}

	e.logger.Debug("Command finished", cmdAttr, logfields.Duration(res.Duration))
	return res, nil
}

// ExitError builds the classified error for a command that exited non-zero.
func ExitError(c Command, res *Result) error {
	b := errors.CommandError("command exited with non-zero status").
		WithContext("command", strings.Join(c.Argv(), " ")).
		WithContext("exit_code", res.ExitCode)
	if c.Dir != "" {
		b = b.WithContext("dir", c.Dir)
	}
	if msg := lastLine(res.Stderr); msg != "" {
		b = b.WithContext("stderr", msg)
	}
	return b.Build()
}

func canceled(c Command, cause error) error {
	return errors.WrapError(cause, errors.CategoryCanceled, "command canceled").
		WithContext("command", strings.Join(c.Argv(), " ")).Build()
}

func truncate(s string) string {
	if len(s) <= maxLoggedOutput {
		return s
	}
	return "..." + s[len(s)-maxLoggedOutput:]
}

func lastLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return s
}
