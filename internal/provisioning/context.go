package provisioning

import (
	"context"

	"github.com/imamik/lempress/internal/config"
)

// Context wraps all dependencies and state needed for a provisioning step.
type Context struct {
	context.Context
	Config   *config.Config
	Request  Request
	State    *State
	Services *Services
	Observer Observer
	Timeouts *config.Timeouts
	// RunLog exposes this run's log lines to the archive step. It may be nil.
	RunLog RunLogSource
}

// RunLogSource returns the log lines written by the current run.
type RunLogSource interface {
	Current() ([]byte, error)
}

// NewContext creates a new provisioning context.
func NewContext(ctx context.Context, cfg *config.Config, req Request, svc *Services, observer Observer) *Context {
	if observer == nil {
		observer = NewLogObserver(nil)
	}
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Request:  req,
		State:    NewState(),
		Services: svc,
		Observer: observer,
		Timeouts: config.LoadTimeouts(),
	}
}

// forStep returns a copy bound to the step's deadline and observer. State
// and Services stay shared.
func (c *Context) forStep(ctx context.Context, observer Observer) *Context {
	cp := *c
	cp.Context = ctx
	cp.Observer = observer
	return &cp
}
