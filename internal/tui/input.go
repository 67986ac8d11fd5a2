package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// inputModel is the subject form: one subject per line plus the daily
// hour budget. Tab moves focus between the two.
type inputModel struct {
	textarea   textarea.Model
	hours      textinput.Model
	hoursFocus bool
	width      int
	height     int
}

func newInputModel(prefill string, dailyHours float64) inputModel {
	ta := textarea.New()
	ta.Placeholder = "Math, 2026-06-10, hard\nPhysics, next friday, medium"
	ta.Focus()
	ta.CharLimit = 2000
	ta.SetWidth(60)
	ta.SetHeight(6)
	ta.ShowLineNumbers = false
	if prefill != "" {
		ta.SetValue(prefill)
	}

	hi := textinput.New()
	hi.Prompt = ""
	hi.CharLimit = 5
	hi.Width = 6
	if dailyHours > 0 {
		hi.SetValue(strconv.FormatFloat(dailyHours, 'f', -1, 64))
	}

	return inputModel{textarea: ta, hours: hi}
}

func (m inputModel) Update(msg tea.Msg) (inputModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if msg.Width > 10 {
			m.textarea.SetWidth(min(msg.Width-4, 80))
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "tab" || msg.String() == "shift+tab" {
			return m.toggleFocus()
		}
	}

	var cmd tea.Cmd
	if m.hoursFocus {
		m.hours, cmd = m.hours.Update(msg)
	} else {
		m.textarea, cmd = m.textarea.Update(msg)
	}
	return m, cmd
}

func (m inputModel) toggleFocus() (inputModel, tea.Cmd) {
	m.hoursFocus = !m.hoursFocus
	if m.hoursFocus {
		m.textarea.Blur()
		return m, m.hours.Focus()
	}
	m.hours.Blur()
	return m, m.textarea.Focus()
}

func (m inputModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("studyr - New Study Plan"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("One subject per line: name, exam date[, easy|medium|hard]"))
	b.WriteString("\n")
	b.WriteString(m.textarea.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Daily study hours: "))
	b.WriteString(m.hours.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Tab: switch field • Ctrl+S: preview plan • Ctrl+C: cancel"))
	return b.String()
}

func (m inputModel) Value() string {
	return m.textarea.Value()
}

// Hours parses the hour field; zero when blank or unreadable.
func (m inputModel) Hours() float64 {
	h, err := strconv.ParseFloat(strings.TrimSpace(m.hours.Value()), 64)
	if err != nil {
		return 0
	}
	return h
}
