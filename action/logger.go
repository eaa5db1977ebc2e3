package action

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// Logger receives the operator-facing messages emitted while resolving and
// installing roc.
type Logger interface {
	// Info logs an informational message.
	Info(msg string)
	// Warning logs a non-fatal problem; the run continues.
	Warning(msg string)
}

// Console writes step logs to an output stream, usually stdout of the runner.
type Console struct {
	out io.Writer
}

// NewConsole returns a console writing to out; nil means os.Stdout.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

// Step logs the start of a pipeline stage.
func (c *Console) Step(text string) {
	fmt.Fprintln(
		c.out,
		color.BlueString(" •"),
		color.New(color.Bold).Sprint(text),
	)
}

// Info logs a detail line under the current step.
func (c *Console) Info(text string) {
	fmt.Fprintln(
		c.out,
		color.New(color.FgHiBlack).Sprint("   └"),
		color.New(color.FgHiBlack).Sprint(text),
	)
}

// Warning emits a warning annotation.
func (c *Console) Warning(msg string) {
	issue(c.out, "warning", nil, msg)
}

// Error emits an error annotation.
func (c *Console) Error(msg string) {
	issue(c.out, "error", nil, msg)
}

// Elapsed prints the timing line closing a step, red if err is set.
func (c *Console) Elapsed(start time.Time, err error) {
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		fmt.Fprintln(c.out, color.RedString("     ✘ %s", elapsed))
		return
	}
	fmt.Fprintln(c.out, color.GreenString("     ✔ %s", elapsed))
}

// Writer exposes the underlying stream.
func (c *Console) Writer() io.Writer {
	return c.out
}

// Discard is a Logger that drops every message.
var Discard Logger = discard{}

type discard struct{}

func (discard) Info(string)    {}
func (discard) Warning(string) {}
