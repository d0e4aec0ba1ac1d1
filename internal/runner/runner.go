// Package runner is the single place stool spawns external programs from.
//
// Every command is an explicit argument vector handed to exec; nothing goes
// through a shell. Feature packages depend on the Runner interface so tests
// can substitute Fake.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/stool-cli/stool/internal/apperr"
)

// Cmd describes one child process. Nil stdio fields inherit the terminal.
type Cmd struct {
	Name   string
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ExtraFiles become fd 3, 4, ... in the child.
	ExtraFiles []*os.File
}

func (c Cmd) String() string {
	return fmt.Sprintf("%s %v", c.Name, c.Args)
}

// Runner spawns child processes and blocks until they exit.
type Runner interface {
	// Run starts the command and waits for it. A failure to start is reported
	// as *StartError; a non-zero exit as *exec.ExitError.
	Run(ctx context.Context, c Cmd) error
	// Output runs the command with stdout captured.
	Output(ctx context.Context, c Cmd) ([]byte, error)
	LookPath(name string) (string, error)
}

// StartError means the program could not be started at all.
type StartError struct {
	Name string
	Err  error
}

func (e *StartError) Error() string { return fmt.Sprintf("start %s: %v", e.Name, e.Err) }
func (e *StartError) Unwrap() error { return e.Err }

// IsStartError reports whether err came from a failed start.
func IsStartError(err error) bool {
	var se *StartError
	return errors.As(err, &se)
}

// ExitCode returns the child's exit status when err carries one.
func ExitCode(err error) (int, bool) {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode(), true
	}
	return 0, false
}

// Describe renders a run failure for a user-facing message.
func Describe(name string, err error) string {
	if code, ok := ExitCode(err); ok {
		return fmt.Sprintf("%s exited with status %d", name, code)
	}
	return fmt.Sprintf("%s: %v", name, err)
}

// Exec runs real processes via os/exec.
type Exec struct{}

// New returns the os/exec backed Runner.
func New() Exec { return Exec{} }

func (Exec) Run(ctx context.Context, c Cmd) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = orReader(c.Stdin, os.Stdin)
	cmd.Stdout = orWriter(c.Stdout, os.Stdout)
	cmd.Stderr = orWriter(c.Stderr, os.Stderr)
	cmd.ExtraFiles = c.ExtraFiles

	slog.Debug("exec", "program", c.Name, "args", c.Args)
	if err := cmd.Start(); err != nil {
		return &StartError{Name: c.Name, Err: err}
	}
	err := cmd.Wait()
	if err != nil {
		slog.Debug("exec failed", "program", c.Name, "err", err)
	}
	return err
}

// Output collects stdout into a growing buffer. Credentials must be captured
// through Run with a secret.Writer as Stdout instead.
func (e Exec) Output(ctx context.Context, c Cmd) ([]byte, error) {
	var out bytes.Buffer
	c.Stdout = &out
	err := e.Run(ctx, c)
	return out.Bytes(), err
}

func (Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Require fails with kind when name is not on PATH.
func Require(r Runner, name string, kind apperr.Kind) error {
	if _, err := r.LookPath(name); err != nil {
		return apperr.Newf(kind, "%s binary not found in PATH", name)
	}
	return nil
}

func orReader(r, fallback io.Reader) io.Reader {
	if r == nil {
		return fallback
	}
	return r
}

func orWriter(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
