package toolchain

import (
	"context"
	stderrors "errors"
	"io"

	"git.home.luguber.info/inful/cjbootstrap/internal/config"
	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/git"
	"git.home.luguber.info/inful/cjbootstrap/internal/runner"
)

// Cloner fetches branch of url into dir, which does not exist yet.
type Cloner interface {
	Clone(ctx context.Context, url, branch, dir string) error
}

// ExecCloner runs "git clone -b <branch> <url> <dir>" through a Runner.
type ExecCloner struct {
	Runner runner.Runner
	// Binary defaults to "git".
	Binary string
}

func (c *ExecCloner) Clone(ctx context.Context, url, branch, dir string) error {
	bin := c.Binary
	if bin == "" {
		bin = "git"
	}
	_, err := c.Runner.Run(ctx, runner.Command{
		Name: bin,
		Args: []string{"clone", "-b", branch, url, dir},
	})
	return err
}

// GoGitCloner clones in-process with go-git.
type GoGitCloner struct {
	Client   *git.Client
	Depth    int
	Auth     *git.Auth
	Progress io.Writer
}

func (c *GoGitCloner) Clone(ctx context.Context, url, branch, dir string) error {
	_, err := c.Client.Clone(ctx, git.CloneOptions{
		URL:      url,
		Branch:   branch,
		Dir:      dir,
		Depth:    c.Depth,
		Auth:     c.Auth,
		Progress: c.Progress,
	})
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.WrapError(err, errors.CategoryCanceled, "clone canceled").
			WithContext("url", url).Build()
	}

	msg := "clone failed"
	var (
		authErr   *git.AuthError
		notFound  *git.NotFoundError
		branchErr *git.BranchNotFoundError
	)
	switch {
	case stderrors.As(err, &authErr):
		msg = "clone failed: authentication rejected"
	case stderrors.As(err, &branchErr):
		msg = "clone failed: branch not found"
	case stderrors.As(err, &notFound):
		msg = "clone failed: repository not found"
	}
	return errors.WrapError(err, errors.CategoryCommand, msg).
		WithContext("url", url).
		WithContext("branch", branch).
		WithContext("backend", string(config.CloneBackendGoGit)).Build()
}

// NewCloner returns the Cloner for the configured back-end.
func NewCloner(cfg *config.BuildConfig, r runner.Runner, client *git.Client, progress io.Writer) Cloner {
	if cfg.CloneBackend == config.CloneBackendGoGit {
		var auth *git.Auth
		if a := cfg.Auth; a != nil {
			auth = &git.Auth{
				Type:     string(a.Type),
				Token:    a.Token,
				Username: a.Username,
				Password: a.Password,
				KeyPath:  a.KeyPath,
			}
		}
		return &GoGitCloner{Client: client, Depth: cfg.CloneDepth, Auth: auth, Progress: progress}
	}
	return &ExecCloner{Runner: r}
}
