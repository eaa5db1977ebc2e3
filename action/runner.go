package action

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

const (
	envOutput = "GITHUB_OUTPUT"
	envPath   = "GITHUB_PATH"
	envPATH   = "PATH"
)

// Runner publishes results of the step to the GitHub Actions runner and
// logs through the embedded [Console].
type Runner struct {
	*Console
}

// NewRunner returns a runner writing log lines and legacy commands to out;
// nil means os.Stdout.
func NewRunner(out io.Writer) *Runner {
	return &Runner{Console: NewConsole(out)}
}

// SetOutput publishes a step output.
func (r *Runner) SetOutput(name, value string) error {
	if file := os.Getenv(envOutput); file != "" {
		message, err := keyValueMessage(name, value)
		if err != nil {
			return err
		}
		return appendFileCommand(file, message)
	}

	fmt.Fprintln(r.out)
	issue(r.out, "set-output", map[string]string{"name": name}, value)
	return nil
}

// AddPath prepends dir to the search path of this process and of every
// later step of the job.
func (r *Runner) AddPath(dir string) error {
	if file := os.Getenv(envPath); file != "" {
		if err := appendFileCommand(file, dir); err != nil {
			return err
		}
	} else {
		issue(r.out, "add-path", nil, dir)
	}

	current := os.Getenv(envPATH)
	if current == "" {
		return os.Setenv(envPATH, dir)
	}
	return os.Setenv(envPATH, dir+string(os.PathListSeparator)+current)
}

// keyValueMessage renders a multiline-safe `name<<delimiter` block.
func keyValueMessage(name, value string) (string, error) {
	delimiter := "ghadelimiter_" + uuid.NewString()

	if strings.Contains(name, delimiter) {
		return "", fmt.Errorf("unexpected input: name should not contain the delimiter %q", delimiter)
	}
	if strings.Contains(value, delimiter) {
		return "", fmt.Errorf("unexpected input: value should not contain the delimiter %q", delimiter)
	}

	return fmt.Sprintf("%s<<%s\n%s\n%s", name, delimiter, value, delimiter), nil
}

func appendFileCommand(path, message string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open command file %s: %w", path, err)
	}
	defer file.Close()

	if _, err := fmt.Fprintln(file, message); err != nil {
		return fmt.Errorf("failed to write command file %s: %w", path, err)
	}
	return nil
}
