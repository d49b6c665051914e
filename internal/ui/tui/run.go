package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/lempress/internal/provisioning"
)

// RunPipelineTUI wraps a provisioning run with a Bubble Tea TUI. runFn
// receives the observer to pass to the pipeline; its error is returned once
// the TUI exits.
func RunPipelineTUI(
	site, variant string,
	steps []string,
	next provisioning.Observer,
	runFn func(observer provisioning.Observer) error,
) error {
	m := NewRunModel(site, variant, steps)
	p := tea.NewProgram(m)

	runErr := make(chan error, 1)
	go func() {
		err := runFn(NewObserver(next, programSender{p}))
		runErr <- err
		if err != nil {
			p.Send(ErrMsg{Err: err})
			return
		}
		p.Send(DoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	// The operator may quit the display early; the run still finishes.
	return <-runErr
}

type programSender struct{ p *tea.Program }

func (s programSender) Send(msg interface{}) { s.p.Send(msg) }
