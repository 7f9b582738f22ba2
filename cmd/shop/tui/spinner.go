package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type taskDoneMsg struct {
	err error
}

// TaskModel shows a spinner while a task runs in the background.
type TaskModel struct {
	spinner spinner.Model
	label   string
	task    func() error
	done    bool
	err     error
}

// NewTaskModel creates the model for task.
func NewTaskModel(label string, task func() error) TaskModel {
	return TaskModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		label:   label,
		task:    task,
	}
}

func (m TaskModel) Init() tea.Cmd {
	task := m.task
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return taskDoneMsg{err: task()}
	})
}

func (m TaskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		// the task cannot be interrupted once started
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m TaskModel) View() string {
	switch {
	case !m.done:
		return m.spinner.View() + " " + m.label + "\n"
	case m.err != nil:
		return dangerStyle.Render("✗ ") + m.label + "\n"
	default:
		return successStyle.Render("✓ ") + m.label + "\n"
	}
}

// RunTask runs task behind a spinner and returns its error.
func RunTask(label string, task func() error) error {
	final, err := tea.NewProgram(NewTaskModel(label, task)).Run()
	if err != nil {
		return err
	}
	return final.(TaskModel).err
}
