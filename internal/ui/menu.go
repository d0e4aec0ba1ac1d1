package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// menuModel is a single-choice list. "/" filters the visible entries; the
// chosen index always refers to the unfiltered list.
type menuModel struct {
	title      string
	items      []string
	visible    []int
	sel        int
	filter     string
	filterMode bool

	chosen    int
	cancelled bool
}

func newMenuModel(title string, items []string) menuModel {
	m := menuModel{title: title, items: items, chosen: -1}
	m.applyFilter()
	return m
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.filterMode {
		switch key.String() {
		case "enter", "esc":
			m.filterMode = false
		case "backspace":
			_, size := utf8.DecodeLastRuneInString(m.filter)
			m.filter = m.filter[:len(m.filter)-size]
			m.applyFilter()
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		default:
			if key.Type == tea.KeyRunes {
				m.filter += string(key.Runes)
				m.applyFilter()
			}
		}
		return m, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	case "j", "down":
		if m.sel < len(m.visible)-1 {
			m.sel++
		}
	case "k", "up":
		if m.sel > 0 {
			m.sel--
		}
	case "/":
		m.filterMode = true
	case "enter":
		if len(m.visible) == 0 {
			break
		}
		m.chosen = m.visible[m.sel]
		return m, tea.Quit
	}
	return m, nil
}

func (m *menuModel) applyFilter() {
	m.visible = m.visible[:0]
	q := strings.ToLower(m.filter)
	for i, it := range m.items {
		if q == "" || strings.Contains(strings.ToLower(it), q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.sel >= len(m.visible) {
		m.sel = max(len(m.visible)-1, 0)
	}
}

func (m menuModel) View() string {
	if m.chosen >= 0 {
		return fmt.Sprintf("%s %s\n", titleStyle.Render(m.title), m.items[m.chosen])
	}
	if m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n")
	for i, idx := range m.visible {
		if i == m.sel {
			b.WriteString(cursorStyle.Render("> "+m.items[idx]) + "\n")
			continue
		}
		b.WriteString("  " + m.items[idx] + "\n")
	}
	if len(m.visible) == 0 {
		b.WriteString("  (no entries matched)\n")
	}
	if m.filterMode {
		b.WriteString("\nfilter: " + m.filter + "\n")
	}
	b.WriteString(hintStyle.Render("j/k to select, / to filter, Enter to confirm, Esc to cancel") + "\n")
	return b.String()
}
