// Command cjbootstrap prepares the Cangjie toolchain and builds cjhead against it.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil)
	stop()
	os.Exit(code)
}

// run parses args, executes the command and returns the process exit code.
// configure, when set, adjusts the Global before the run (used by tests).
func run(ctx context.Context, args []string, stdout, stderr io.Writer, configure func(*Global)) int {
	cli := &CLI{}
	g := &Global{Out: stdout, Err: stderr}
	if configure != nil {
		configure(g)
	}

	exited := -1
	parser, err := kong.New(cli,
		kong.Name("cjbootstrap"),
		kong.Description("Clone, build and install the Cangjie toolchain, then build cjhead against it."),
		kong.Vars{"version": version.String()},
		kong.Bind(g),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exited = code }),
	)
	if err != nil {
		return errors.NewCLIErrorAdapter(false, nil).WithOutput(stderr).Report(
			errors.WrapError(err, errors.CategoryInternal, "failed to build command line parser").Build())
	}

	_, err = parser.Parse(args)
	if exited >= 0 {
		// --help or --version
		return exited
	}
	if err != nil {
		parser.Errorf("%s", err)
		return errors.ExitUsage
	}

	runErr := cli.Run(ctx, g)
	return errors.NewCLIErrorAdapter(cli.Verbose, g.Logger).WithOutput(stderr).Report(runErr)
}
