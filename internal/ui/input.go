package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type inputModel struct {
	prompt    string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newInputModel(prompt, placeholder string) inputModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = 1024
	ti.Width = 50
	ti.Focus()
	return inputModel{prompt: prompt, input: ti}
}

func (m inputModel) Init() tea.Cmd { return textinput.Blink }

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.done = true
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) Value() string {
	return strings.TrimSpace(m.input.Value())
}

func (m inputModel) View() string {
	if m.done {
		return fmt.Sprintf("%s %s\n", titleStyle.Render(m.prompt), m.Value())
	}
	if m.cancelled {
		return ""
	}
	return titleStyle.Render(m.prompt) + "\n" + m.input.View() + "\n"
}
