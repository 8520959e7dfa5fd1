// package ui implements the interactive progress view for pipeline runs.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lukestiles/voice-memo-to-doc/internal/tasks"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	stepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	urlStyle   = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("39"))
)

const historyLimit = 8

type progressUpdateMsg tasks.ProgressUpdate

type runCompleteMsg struct {
	result *tasks.RunResult
	err    error
}

// Model represents the progress view state for one pipeline run.
type Model struct {
	ctx       context.Context
	engine    tasks.Engine
	files     []string
	directory string
	title     string

	spinner  spinner.Model
	progress chan tasks.ProgressUpdate
	history  []string
	current  string
	result   *tasks.RunResult
	err      error
	running  bool
}

// NewModel creates a progress view that runs the engine when started.
func NewModel(ctx context.Context, engine tasks.Engine, files []string, directory, title string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &Model{
		ctx:       ctx,
		engine:    engine,
		files:     files,
		directory: directory,
		title:     title,
		spinner:   sp,
		progress:  make(chan tasks.ProgressUpdate, 50),
		running:   true,
	}
}

// Result returns the completed run result, if any.
func (m *Model) Result() (*tasks.RunResult, error) {
	return m.result, m.err
}

// Init starts the run and begins consuming progress updates.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun(), m.waitForProgress())
}

// startRun executes the pipeline in the background and reports completion.
func (m *Model) startRun() tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.Run(m.ctx, m.progress, m.files, m.directory, m.title)
		close(m.progress)
		return runCompleteMsg{result: result, err: err}
	}
}

// waitForProgress delivers the next progress update as a message.
func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progress
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if !m.running {
				return m, tea.Quit
			}
		}
		return m, nil

	case progressUpdateMsg:
		if m.current != "" {
			m.history = append(m.history, m.current)
			if len(m.history) > historyLimit {
				m.history = m.history[len(m.history)-historyLimit:]
			}
		}
		m.current = msg.Message
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.running = false
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress history, current phase, and final status.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("voice-memo-to-doc"))
	b.WriteString("\n\n")

	for _, line := range m.history {
		b.WriteString(stepStyle.Render("  " + line))
		b.WriteString("\n")
	}

	if m.running && m.current != "" {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.current))
	}

	if !m.running {
		if m.err != nil {
			b.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", m.err)))
			b.WriteString("\n")
		} else if m.result != nil {
			b.WriteString(doneStyle.Render(fmt.Sprintf("✓ Processed %d files", len(m.result.Results))))
			b.WriteString("\n")
			b.WriteString(urlStyle.Render(m.result.Document.URL))
			b.WriteString("\n")
		}
	}

	return b.String()
}
