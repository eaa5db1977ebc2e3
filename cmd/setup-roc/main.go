// Command setup-roc installs a roc release and adds it to the PATH of the
// running GitHub Actions job.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	setuproc "github.com/aexvir/setup-roc"
	"github.com/aexvir/setup-roc/action"
)

func main() {
	// the runner log viewer renders ansi colors even though stdout is not a tty
	if action.IsActionsEnv() || action.IsCIEnv() {
		color.NoColor = false
	}

	runner := action.NewRunner(nil)

	inputs, err := action.LoadInputs(os.Args[1:])
	if err != nil {
		runner.Error(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setup, err := setuproc.New(ctx, inputs, runner)
	if err != nil {
		runner.Error(err.Error())
		stop()
		os.Exit(1)
	}

	if err := setup.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
