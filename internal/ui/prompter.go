// Package ui gathers parameters from the user: menus, text prompts and
// masked password input.
package ui

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/stool-cli/stool/internal/apperr"
	"github.com/stool-cli/stool/internal/secret"
)

// ErrCancelled is returned when the user backs out of a prompt.
var ErrCancelled = apperr.New(apperr.Cancelled, "cancelled by user")

// Prompter asks the user for one value at a time.
type Prompter interface {
	// Select returns the index of the chosen item.
	Select(prompt string, items []string) (int, error)
	// Input returns a trimmed line of text.
	Input(prompt string) (string, error)
	// Secret returns masked input. The caller owns and must wipe it.
	Secret(prompt string) (*secret.Secret, error)
}

// Terminal prompts on an interactive terminal.
type Terminal struct {
	in  *os.File
	out io.Writer
}

// NewTerminal prompts on stdin and stdout.
func NewTerminal() *Terminal {
	return &Terminal{in: os.Stdin, out: os.Stdout}
}

func (t *Terminal) requireTTY() error {
	if !term.IsTerminal(int(t.in.Fd())) {
		return apperr.New(apperr.InvalidInput, "an interactive terminal is required")
	}
	return nil
}

func (t *Terminal) run(m tea.Model) (tea.Model, error) {
	if err := t.requireTTY(); err != nil {
		return nil, err
	}
	final, err := tea.NewProgram(m, tea.WithInput(t.in), tea.WithOutput(t.out)).Run()
	if err != nil {
		return nil, apperr.Wrap(apperr.IoError, err, "run prompt")
	}
	return final, nil
}

func (t *Terminal) Select(prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, apperr.New(apperr.InvalidInput, "nothing to select")
	}
	final, err := t.run(newMenuModel(prompt, items))
	if err != nil {
		return -1, err
	}
	m := final.(menuModel)
	if m.cancelled || m.chosen < 0 {
		return -1, ErrCancelled
	}
	return m.chosen, nil
}

func (t *Terminal) Input(prompt string) (string, error) {
	final, err := t.run(newInputModel(prompt, ""))
	if err != nil {
		return "", err
	}
	m := final.(inputModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.Value(), nil
}

func (t *Terminal) Secret(prompt string) (*secret.Secret, error) {
	if err := t.requireTTY(); err != nil {
		return nil, err
	}
	fmt.Fprint(t.out, titleStyle.Render(prompt)+" ")
	b, err := term.ReadPassword(int(t.in.Fd()))
	fmt.Fprintln(t.out)
	if err != nil {
		return nil, apperr.Wrap(apperr.IoError, err, "read password")
	}
	return secret.New(b), nil
}
