// Package action is the boundary between setup-roc and the GitHub Actions runner.
//
// It reads the step inputs, writes step outputs, extends the search path of
// later steps and emits log lines, either as plain coloured text or as
// workflow commands (`::warning::`, `::error::`) that the runner picks up
// from stdout.
//
// Outputs and path additions use the runner's file commands when the
// corresponding environment variables are present:
//   - GITHUB_OUTPUT: step outputs, one `name<<delimiter` block per value
//   - GITHUB_PATH: directories prepended to PATH for every later step
//
// Without them (e.g. when running locally) the legacy `::set-output` and
// `::add-path` commands are printed instead, so the run is still readable.
package action
