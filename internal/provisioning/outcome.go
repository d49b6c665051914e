package provisioning

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStepTimeout marks a step that exceeded its time bound.
	ErrStepTimeout = errors.New("step timed out")
	// ErrDependencyNotSatisfied is returned when a step would run before a step it depends on succeeded.
	ErrDependencyNotSatisfied = errors.New("dependency not satisfied")
)

// Status is the terminal state of one step in a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed-out"
	StatusNotRun    Status = "not-run"
)

// StepOutcome records what happened to one step.
type StepOutcome struct {
	Step     string
	Status   Status
	Err      error
	Duration time.Duration
}

// Result holds one outcome per step of the pipeline, in order.
type Result struct {
	Outcomes []StepOutcome
	Duration time.Duration
}

// Succeeded reports whether every step succeeded.
func (r *Result) Succeeded() bool {
	for _, o := range r.Outcomes {
		if o.Status != StatusSucceeded {
			return false
		}
	}
	return true
}

// Outcome returns the outcome of the named step.
func (r *Result) Outcome(step string) (StepOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Step == step {
			return o, true
		}
	}
	return StepOutcome{}, false
}

// Executed returns the names of steps that ran, in order.
func (r *Result) Executed() []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.Status != StatusNotRun {
			names = append(names, o.Step)
		}
	}
	return names
}

// StepError is returned by Pipeline.Run when a step halts the run.
type StepError struct {
	Step   string
	Status Status
	Cause  error
}

func (e *StepError) Error() string {
	if e.Status == StatusTimedOut {
		return fmt.Sprintf("%s step timed out: %v", e.Step, e.Cause)
	}
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Cause)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}
