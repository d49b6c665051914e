// Package tui provides a Bubble Tea-based terminal UI for provisioning runs.
package tui

import "time"

// StepMsg reports a step state change from the pipeline.
type StepMsg struct {
	Step     string
	State    StepState
	Duration time.Duration
	Err      string
}

// LogMsg carries one progress line printed by a step.
type LogMsg struct{ Line string }

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the operation is complete.
type DoneMsg struct{}
