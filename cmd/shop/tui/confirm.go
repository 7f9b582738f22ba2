package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModel is a yes/no dialog. No is selected initially.
type ConfirmModel struct {
	Title       string
	Message     string
	YesSelected bool
	confirmed   bool
}

// NewConfirmModel creates a new confirmation dialog
func NewConfirmModel(title, message string) ConfirmModel {
	return ConfirmModel{Title: title, Message: message}
}

// Confirmed reports whether the user chose Yes.
func (m ConfirmModel) Confirmed() bool {
	return m.confirmed
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "left", "h":
		m.YesSelected = true
	case "right", "l":
		m.YesSelected = false
	case "y":
		m.confirmed = true
		return m, tea.Quit
	case "n", "esc", "q", "ctrl+c":
		m.confirmed = false
		return m, tea.Quit
	case "enter":
		m.confirmed = m.YesSelected
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(m.Message)
	b.WriteString("\n\n")

	yesButton := inactiveButtonStyle.Render("Yes")
	noButton := inactiveButtonStyle.Render("No")
	if m.YesSelected {
		yesButton = activeButtonStyle.Render("Yes")
	} else {
		noButton = activeButtonStyle.Render("No")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, yesButton, "  ", noButton))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(FormatKey("←/→", "choose") + " • " + FormatKey("enter", "confirm") + " • " + FormatKey("esc/q", "cancel")))

	return boxStyle.Render(b.String()) + "\n"
}

// Confirm shows the dialog and reports the answer.
func Confirm(title, message string) (bool, error) {
	final, err := tea.NewProgram(NewConfirmModel(title, message)).Run()
	if err != nil {
		return false, err
	}
	return final.(ConfirmModel).Confirmed(), nil
}
