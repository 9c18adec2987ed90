package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"jdkprov/internal/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// elapsedAfter is how long a task runs before its elapsed time is shown
const elapsedAfter = time.Second

type taskDoneMsg struct {
	err error
}

// taskModel renders one running task: spinner, label, elapsed time once the
// task is slow, and a note when the caller's context has been cancelled
type taskModel struct {
	spinner   spinner.Model
	label     string
	ctx       context.Context
	started   time.Time
	elapsed   time.Duration
	cancelled bool
	done      bool
}

func newTaskModel(ctx context.Context, label string) taskModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(theme.Primary)

	return taskModel{
		spinner: s,
		label:   label,
		ctx:     ctx,
		started: time.Now(),
	}
}

func (m taskModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m taskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		m.elapsed = time.Since(m.started)
		m.cancelled = m.ctx.Err() != nil
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m taskModel) View() string {
	if m.done {
		return ""
	}

	line := fmt.Sprintf(" %s %s", m.spinner.View(), m.label)
	if m.elapsed >= elapsedAfter {
		line += theme.Faint.Render(fmt.Sprintf(" %ds", int(m.elapsed.Seconds())))
	}
	if m.cancelled {
		line += theme.WarningStyle.Render(" cancelling")
	}
	return line + "\n"
}

// RunTask runs fn with ctx while a spinner labelled label is drawn on stderr.
// It returns fn's error.
func RunTask(ctx context.Context, label string, fn func(context.Context) error) error {
	return RunTaskOutput(ctx, os.Stderr, label, fn)
}

// RunTaskOutput is RunTask rendering to out. The program reads no input and
// leaves SIGINT to the caller, so interrupting cancels ctx and fn decides
// how to stop.
func RunTaskOutput(ctx context.Context, out io.Writer, label string, fn func(context.Context) error) error {
	p := tea.NewProgram(newTaskModel(ctx, label),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	result := make(chan error, 1)
	go func() {
		err := fn(ctx)
		result <- err
		p.Send(taskDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	return <-result
}
