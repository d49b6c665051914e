package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/lempress/internal/ui/benchmarks"
)

// StepState is the display state of one step.
type StepState int

const (
	StepPending StepState = iota
	StepActive
	StepDone
	StepFailed
	StepSkipped
)

const maxLogLines = 5

// Step represents a pipeline step for display.
type Step struct {
	Name      string
	State     StepState
	StartedAt time.Time
	Duration  time.Duration
	Err       string
}

// Model is the Bubble Tea model for a provisioning run.
type Model struct {
	Site    string
	Variant string

	Steps []Step
	Logs  []string

	// ETA
	EstimatedRemaining time.Duration
	PerformanceScale   float64
	StartTime          time.Time

	// Animation
	SpinnerFrame int

	// UI state
	Width  int
	Height int
	Err    error
	Done   bool
}

// NewRunModel creates a model for a run over the named steps.
func NewRunModel(site, variant string, steps []string) Model {
	m := Model{
		Site:             site,
		Variant:          variant,
		StartTime:        time.Now(),
		PerformanceScale: 1.0,
	}
	for _, name := range steps {
		m.Steps = append(m.Steps, Step{Name: name})
	}
	m.EstimatedRemaining = benchmarks.TotalEstimate(steps)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StepMsg:
		m.updateStep(msg)
		m.updateETA()

	case LogMsg:
		m.Logs = append(m.Logs, msg.Line)
		if len(m.Logs) > maxLogLines {
			m.Logs = m.Logs[len(m.Logs)-maxLogLines:]
		}

	case TickMsg:
		m.SpinnerFrame++
		m.updateETA()
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) updateStep(msg StepMsg) {
	for i := range m.Steps {
		if m.Steps[i].Name != msg.Step {
			continue
		}
		s := &m.Steps[i]
		s.State = msg.State
		switch msg.State {
		case StepActive:
			s.StartedAt = time.Now()
		case StepDone, StepFailed:
			s.Duration = msg.Duration
			s.Err = msg.Err
		}
		return
	}
}

func (m *Model) current() int {
	for i, s := range m.Steps {
		if s.State == StepActive {
			return i
		}
	}
	for i, s := range m.Steps {
		if s.State == StepPending {
			return i
		}
	}
	return -1
}

func (m *Model) updateETA() {
	idx := m.current()
	if idx < 0 {
		m.EstimatedRemaining = 0
		return
	}

	completed := make(map[string]time.Duration)
	names := make([]string, len(m.Steps))
	for i, s := range m.Steps {
		names[i] = s.Name
		if s.State == StepDone {
			completed[s.Name] = s.Duration
		}
	}

	var elapsed time.Duration
	if cur := m.Steps[idx]; cur.State == StepActive && !cur.StartedAt.IsZero() {
		elapsed = time.Since(cur.StartedAt)
	}
	m.PerformanceScale = benchmarks.PerformanceScale(completed, names[idx], elapsed)
	m.EstimatedRemaining = benchmarks.EstimateRemaining(names, idx, elapsed, m.PerformanceScale)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
