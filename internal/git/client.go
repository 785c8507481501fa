package git

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/cjbootstrap/internal/logfields"
)

// CloneOptions selects what to clone and how.
type CloneOptions struct {
	URL    string
	Branch string
	Dir    string
	// Depth limits history when positive.
	Depth int
	Auth  *Auth
	// Progress receives the remote's sideband output; nil discards it.
	Progress io.Writer
}

// Client performs in-process git operations.
type Client struct {
	logger *slog.Logger
}

// NewClient creates a Client logging to logger (slog.Default when nil).
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger}
}

// Clone checks out a single branch of opts.URL into opts.Dir, which must not exist.
// It returns the commit hash of the checked out HEAD.
func (c *Client) Clone(ctx context.Context, opts CloneOptions) (string, error) {
	c.logger.Debug("Cloning repository",
		logfields.URL(opts.URL), logfields.Branch(opts.Branch), logfields.Path(opts.Dir))

	cloneOptions := &git.CloneOptions{URL: opts.URL, Progress: opts.Progress}
	if opts.Branch != "" {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
		cloneOptions.SingleBranch = true
	}
	if opts.Depth > 0 {
		cloneOptions.Depth = opts.Depth
	}
	auth, err := opts.Auth.method()
	if err != nil {
		return "", fmt.Errorf("failed to setup authentication: %w", err)
	}
	cloneOptions.Auth = auth

	repository, err := git.PlainCloneContext(ctx, opts.Dir, false, cloneOptions)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", classifyCloneError(opts.URL, opts.Branch, err)
	}

	ref, err := repository.Head()
	if err != nil {
		c.logger.Info("Repository cloned", logfields.URL(opts.URL), logfields.Path(opts.Dir))
		return "", nil
	}
	commit := ref.Hash().String()
	c.logger.Info("Repository cloned",
		logfields.URL(opts.URL), logfields.Branch(opts.Branch), slog.String("commit", commit[:8]), logfields.Path(opts.Dir))
	return commit, nil
}
