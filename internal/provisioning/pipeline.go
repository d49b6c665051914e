package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/lempress/internal/config"
)

// Pipeline is an ordered list of steps.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a pipeline that runs steps in the given order.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Steps returns the steps in run order.
func (p *Pipeline) Steps() []Step {
	return p.steps
}

// Names returns the step names in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Validate checks that names are unique and that every dependency appears
// earlier in the list.
func (p *Pipeline) Validate() error {
	seen := make(map[string]bool, len(p.steps))
	for _, s := range p.steps {
		name := s.Name()
		if name == "" {
			return errors.New("step with empty name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate step %q", name)
		}
		for _, dep := range s.DependsOn() {
			if !seen[dep] {
				return fmt.Errorf("step %q depends on %q, which is not declared before it", name, dep)
			}
		}
		seen[name] = true
	}
	return nil
}

// Run executes all steps sequentially. Each step is bounded by its timeout
// from ctx.Timeouts. The first failure halts the run: remaining steps are
// recorded as not run and a *StepError is returned.
func (p *Pipeline) Run(ctx *Context) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline: %w", err)
	}
	if ctx.Timeouts == nil {
		ctx.Timeouts = config.LoadTimeouts()
	}

	start := time.Now()
	total := len(p.steps)
	result := &Result{Outcomes: make([]StepOutcome, 0, total)}
	succeeded := make(map[string]bool, total)

	ctx.Observer.Printf("Starting provisioning with %d steps...", total)

	var runErr error
	for i, step := range p.steps {
		name := step.Name()
		if runErr != nil {
			result.Outcomes = append(result.Outcomes, StepOutcome{Step: name, Status: StatusNotRun})
			LogStepSkipped(ctx.Observer, name)
			continue
		}

		outcome := p.runStep(ctx, step, succeeded)
		result.Outcomes = append(result.Outcomes, outcome)
		ctx.Observer.Progress(name, i+1, total)

		if outcome.Status != StatusSucceeded {
			runErr = &StepError{Step: name, Status: outcome.Status, Cause: outcome.Err}
			continue
		}
		succeeded[name] = true
	}

	result.Duration = time.Since(start)
	if runErr != nil {
		ctx.Observer.Printf("Provisioning halted after %v", result.Duration.Round(time.Millisecond))
		return result, runErr
	}
	ctx.Observer.Printf("Provisioning completed in %v", result.Duration.Round(time.Millisecond))
	return result, nil
}

func (p *Pipeline) runStep(ctx *Context, step Step, succeeded map[string]bool) StepOutcome {
	name := step.Name()
	observer := ctx.Observer.WithFields(map[string]string{"step": name})

	for _, dep := range step.DependsOn() {
		if !succeeded[dep] {
			err := fmt.Errorf("%w: %s requires %s", ErrDependencyNotSatisfied, name, dep)
			LogStepFailed(observer, name, 0, err)
			return StepOutcome{Step: name, Status: StatusFailed, Err: err}
		}
	}

	bound := ctx.Timeouts.ForStep(name)
	stepCtx, cancel := context.WithTimeout(ctx.Context, bound)
	defer cancel()

	LogStepStart(observer, name)
	stepStart := time.Now()
	err := step.Provision(ctx.forStep(stepCtx, observer))
	elapsed := time.Since(stepStart)

	switch {
	case err == nil:
		LogStepComplete(observer, name, elapsed)
		return StepOutcome{Step: name, Status: StatusSucceeded, Duration: elapsed}
	case errors.Is(stepCtx.Err(), context.DeadlineExceeded) && ctx.Context.Err() == nil:
		cause := fmt.Errorf("%w after %v: %w", ErrStepTimeout, bound, err)
		LogStepTimedOut(observer, name, elapsed, cause)
		return StepOutcome{Step: name, Status: StatusTimedOut, Err: cause, Duration: elapsed}
	default:
		LogStepFailed(observer, name, elapsed, err)
		return StepOutcome{Step: name, Status: StatusFailed, Err: err, Duration: elapsed}
	}
}
