// Package update upgrades Homebrew packages and the Rust toolchain.
package update

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/stool-cli/stool/internal/apperr"
	"github.com/stool-cli/stool/internal/runner"
)

// Updater runs the package manager commands.
type Updater struct {
	run runner.Runner
	out io.Writer
}

func New(r runner.Runner, out io.Writer) *Updater {
	if out == nil {
		out = os.Stdout
	}
	return &Updater{run: r, out: out}
}

// Brew runs "brew update" then "brew upgrade".
func (u *Updater) Brew(ctx context.Context) error {
	fmt.Fprintln(u.out, "Updating Homebrew")
	for _, args := range [][]string{{"update"}, {"upgrade"}} {
		if err := u.exec(ctx, apperr.BrewUpdateFailed, "brew", args...); err != nil {
			return err
		}
	}
	fmt.Fprintln(u.out, "Homebrew updated successfully")
	return nil
}

// Rustup runs "rustup update".
func (u *Updater) Rustup(ctx context.Context) error {
	fmt.Fprintln(u.out, "Updating Rust toolchain")
	if err := u.exec(ctx, apperr.RustupUpdateFailed, "rustup", "update"); err != nil {
		return err
	}
	fmt.Fprintln(u.out, "Rust toolchain updated successfully")
	return nil
}

// Failure names one failed updater inside the error returned by All.
type Failure struct {
	Name string
	Err  error
}

func (f *Failure) Error() string { return f.Name + ": " + f.Err.Error() }
func (f *Failure) Unwrap() error { return f.Err }

// All attempts every updater even if an earlier one fails. Failures are
// collected into one CommandExecutionFailed error naming each of them.
func (u *Updater) All(ctx context.Context) error {
	var result *multierror.Error
	for _, step := range []struct {
		name string
		fn   func(context.Context) error
	}{
		{"brew", u.Brew},
		{"rustup", u.Rustup},
	} {
		if err := step.fn(ctx); err != nil {
			fmt.Fprintf(u.out, "%s update failed: %v\n", step.name, err)
			result = multierror.Append(result, &Failure{Name: step.name, Err: err})
		}
	}
	if result.ErrorOrNil() == nil {
		fmt.Fprintln(u.out, "\nAll updates completed successfully")
		return nil
	}
	names := make([]string, 0, len(result.Errors))
	for _, err := range result.Errors {
		names = append(names, err.(*Failure).Name)
	}
	return apperr.Wrap(apperr.CommandExecutionFailed, result, "failed updates: "+strings.Join(names, ", "))
}

func (u *Updater) exec(ctx context.Context, kind apperr.Kind, name string, args ...string) error {
	err := u.run.Run(ctx, runner.Cmd{Name: name, Args: args})
	if err == nil {
		return nil
	}
	what := name + " " + strings.Join(args, " ")
	if runner.IsStartError(err) {
		return apperr.Wrap(kind, err, "failed to start "+what)
	}
	return apperr.Wrap(kind, err, runner.Describe(what, err))
}
