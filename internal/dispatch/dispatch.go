// Package dispatch fans resolved (document, schema) pairs out to the
// external validator executable and collects its reports.
package dispatch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// Report is the outcome of one validator invocation. Output is the
// validator's combined stdout and stderr, surfaced verbatim; this tool never
// interprets it.
type Report struct {
	DocumentPath string
	SchemaPath   string
	Output       string
	ExitCode     int
	Err          error // invocation failure (not a non-zero exit)
}

// Passed reports whether the invocation ran and the validator accepted the
// document.
func (r Report) Passed() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Runner abstracts the process invocation so tests can fake the validator.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (output string, exitCode int, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return buf.String(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return buf.String(), -1, err
	}
	return buf.String(), 0, nil
}

// Dispatcher invokes the configured validator command. Its configuration is
// per-session state passed in by the caller, never a process-wide toggle.
type Dispatcher struct {
	command string
	runner  Runner
}

// New returns a dispatcher for the given validator executable.
func New(command string) *Dispatcher {
	return &Dispatcher{command: command, runner: execRunner{}}
}

// NewWithRunner returns a dispatcher with a custom runner, for tests.
func NewWithRunner(command string, r Runner) *Dispatcher {
	return &Dispatcher{command: command, runner: r}
}

// Command returns the configured validator executable.
func (d *Dispatcher) Command() string {
	return d.command
}

// Available reports whether the validator executable can be found on PATH.
// Checked once up front to decide whether validation can be offered at all.
func (d *Dispatcher) Available() bool {
	_, err := exec.LookPath(d.command)
	return err == nil
}

// Dispatch issues one validation request per schema path, in order, as
//
//	<validatorCommand> <schemaPath> <documentPath>
//
// Requests are independent: a failed invocation is recorded in its report
// and never suppresses or alters the others. An empty schema set issues
// nothing and returns an empty slice.
func (d *Dispatcher) Dispatch(ctx context.Context, documentPath string, schemaPaths []string) []Report {
	reports := make([]Report, 0, len(schemaPaths))
	for _, schemaPath := range schemaPaths {
		output, code, err := d.runner.Run(ctx, d.command, schemaPath, documentPath)
		reports = append(reports, Report{
			DocumentPath: documentPath,
			SchemaPath:   schemaPath,
			Output:       output,
			ExitCode:     code,
			Err:          err,
		})
	}
	return reports
}

// IsNotFound reports whether err means the validator executable is missing.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return os.IsNotExist(err) || errors.Is(err, exec.ErrNotFound)
}

// IsPermissionDenied reports whether err means the validator executable is
// not runnable.
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	return os.IsPermission(err)
}
