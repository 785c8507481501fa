package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/cjbootstrap/internal/config"
	"git.home.luguber.info/inful/cjbootstrap/internal/confirm"
	"git.home.luguber.info/inful/cjbootstrap/internal/console"
	"git.home.luguber.info/inful/cjbootstrap/internal/eventstore"
	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/logfields"
	"git.home.luguber.info/inful/cjbootstrap/internal/metrics"
	"git.home.luguber.info/inful/cjbootstrap/internal/observability"
	"git.home.luguber.info/inful/cjbootstrap/internal/paths"
	"git.home.luguber.info/inful/cjbootstrap/internal/pipeline"
	"git.home.luguber.info/inful/cjbootstrap/internal/runner"
)

// Global carries the process streams and the collaborators tests replace.
type Global struct {
	Out    io.Writer
	Err    io.Writer
	Logger *slog.Logger

	// Runner and Confirmer default to os/exec and flag/terminal driven prompts.
	Runner    runner.Runner
	Confirmer confirm.Confirmer
}

// CLI is the single cjbootstrap command. Every flag can also be set through a
// CJBOOTSTRAP_* environment variable.
type CLI struct {
	Config      string           `short:"c" help:"Configuration file path" default:"config/config.yaml" env:"CJBOOTSTRAP_CONFIG"`
	KernelPath  string           `name:"kernel-path" help:"Populate the toolchain directory from this source tree instead of cloning" env:"CJBOOTSTRAP_KERNEL_PATH"`
	Yes         bool             `short:"y" help:"Answer yes to every prompt" xor:"prompt" env:"CJBOOTSTRAP_YES"`
	NoInput     bool             `name:"no-input" help:"Never prompt; treat every question as declined" xor:"prompt" env:"CJBOOTSTRAP_NO_INPUT"`
	Verbose     bool             `short:"v" help:"Enable verbose logging" env:"CJBOOTSTRAP_VERBOSE"`
	LogFormat   string           `name:"log-format" help:"Log format (text or json), overrides logging.format" env:"CJBOOTSTRAP_LOG_FORMAT"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics in textfile format after the run" env:"CJBOOTSTRAP_METRICS_FILE"`
	Init        bool             `help:"Write an example configuration to --config and exit"`
	Force       bool             `help:"Overwrite an existing configuration file with --init"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`
}

// AfterApply sets up a provisional logger; Run replaces it once the
// configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	opts := observability.LogOptions{Level: config.LogLevelInfo, Format: config.LogFormatText, Verbose: c.Verbose}
	if format, err := config.ParseLogFormat(c.LogFormat); err == nil {
		opts.Format = format
	}
	g.Logger = observability.NewLogger(g.Err, opts)
	slog.SetDefault(g.Logger)
	return nil
}

// Run performs one bootstrap run, or writes the example configuration when
// --init is given.
func (c *CLI) Run(ctx context.Context, g *Global) error {
	if c.Init {
		return runInit(g.Out, c.Config, c.Force)
	}

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	logger, err := c.configureLogging(cfg, g)
	if err != nil {
		return err
	}

	var (
		recorder metrics.Recorder = metrics.NoopRecorder{}
		promRec  *metrics.PrometheusRecorder
	)
	if c.MetricsFile != "" {
		promRec = metrics.NewPrometheusRecorder(nil)
		recorder = promRec
	}

	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	var store eventstore.Store
	if journal != nil {
		store = journal
		defer func() {
			if cerr := journal.Close(); cerr != nil {
				logger.Warn("Failed to close journal", logfields.Error(cerr))
			}
		}()
	}

	r := g.Runner
	if r == nil {
		r = c.commandRunner(g.Err, logger)
	}
	asker := g.Confirmer
	if asker == nil {
		asker = confirm.Select(c.Yes, c.NoInput)
	}

	b := pipeline.New(cfg, pipeline.Options{ConfigPath: c.Config, KernelPath: c.KernelPath}, pipeline.Deps{
		Runner:    r,
		Confirmer: asker,
		Logger:    logger,
		Printer:   console.New(g.Out),
		Recorder:  recorder,
		Journal:   store,
		Progress:  g.Err,
	})
	_, runErr := b.Run(ctx)

	if store != nil && cfg.Journal.KeepRuns > 0 {
		pruneJournal(context.WithoutCancel(ctx), store, cfg.Journal.KeepRuns, logger)
	}
	if promRec != nil {
		if err := promRec.WriteTextfile(c.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics file", logfields.Path(c.MetricsFile), logfields.Error(err))
		}
	}
	return runErr
}

// commandRunner returns the os/exec runner. With --verbose the output of every
// delegated command is mirrored to w as it runs.
func (c *CLI) commandRunner(w io.Writer, logger *slog.Logger) runner.Runner {
	var echo io.Writer
	if c.Verbose {
		echo = w
	}
	return runner.NewExec(logger, echo)
}

// configureLogging applies the configured level and format. Flags win over
// the file.
func (c *CLI) configureLogging(cfg *config.Config, g *Global) (*slog.Logger, error) {
	format := cfg.Logging.Format
	if c.LogFormat != "" {
		f, err := config.ParseLogFormat(c.LogFormat)
		if err != nil {
			return nil, errors.ValidationError("invalid --log-format").WithCause(err).Build()
		}
		format = f
	}
	if format == config.LogFormatJSON {
		console.DisableColor()
	}
	g.Logger = observability.NewLogger(g.Err, observability.LogOptions{
		Level:   cfg.Logging.Level,
		Format:  format,
		Verbose: c.Verbose,
	})
	slog.SetDefault(g.Logger)
	return g.Logger, nil
}

// openJournal opens the SQLite run journal when journal.path is configured.
// A relative path resolves against the configuration directory.
func openJournal(cfg *config.Config) (*eventstore.SQLiteStore, error) {
	if cfg.Journal.Path == "" {
		return nil, nil
	}
	path := paths.Join(cfg.Journal.Path, cfg.BaseDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot create journal directory").
			WithContext("path", path).Build()
	}
	store, err := eventstore.NewSQLiteStore(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot open run journal").
			WithContext("path", path).Build()
	}
	return store, nil
}

func pruneJournal(ctx context.Context, store eventstore.Store, keep int, logger *slog.Logger) {
	removed, err := store.Prune(ctx, keep)
	if err != nil {
		logger.Warn("Failed to prune journal", logfields.Error(err))
		return
	}
	if removed > 0 {
		logger.Debug("Pruned journal", slog.Int("keep_runs", keep), slog.Int64("removed", removed))
	}
}

func runInit(out io.Writer, configPath string, force bool) error {
	_, _ = fmt.Fprintf(out, "Writing example configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "Edit toolchain.repo and project.root, then run cjbootstrap")
	return nil
}
