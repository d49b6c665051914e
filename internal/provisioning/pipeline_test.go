package provisioning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/lempress/internal/config"
)

// stepFunc adapts a function to Step for testing.
type stepFunc struct {
	name string
	deps []string
	fn   func(ctx *Context) error
}

func (s stepFunc) Name() string                 { return s.name }
func (s stepFunc) DependsOn() []string          { return s.deps }
func (s stepFunc) Provision(ctx *Context) error { return s.fn(ctx) }

func recordingStep(name string, calls *[]string, err error, deps ...string) Step {
	return stepFunc{name: name, deps: deps, fn: func(*Context) error {
		*calls = append(*calls, name)
		return err
	}}
}

func newTestContext(t *testing.T) (*Context, *MockObserver) {
	t.Helper()
	obs := NewMockObserver()
	ctx := NewContext(context.Background(), config.Default(), Request{}, &Services{}, obs)
	ctx.Timeouts = &config.Timeouts{Step: time.Second}
	return ctx, obs
}

func TestPipeline_Run_AllSucceed(t *testing.T) {
	t.Parallel()
	var calls []string
	p := NewPipeline(
		recordingStep("packages.refresh", &calls, nil),
		recordingStep("packages.install", &calls, nil, "packages.refresh"),
		recordingStep("database.provision", &calls, nil, "packages.install"),
	)
	ctx, obs := newTestContext(t)

	result, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"packages.refresh", "packages.install", "database.provision"}, calls)
	assert.True(t, result.Succeeded())
	assert.Len(t, result.Outcomes, 3)
	assert.Equal(t, 3, obs.countType(EventStepCompleted))
}

func TestPipeline_Run_StopsOnError(t *testing.T) {
	t.Parallel()
	var calls []string
	cause := errors.New("nginx: [emerg] unknown directive")
	p := NewPipeline(
		recordingStep("packages.install", &calls, nil),
		recordingStep("webserver.vhost", &calls, cause),
		recordingStep("cms.deploy", &calls, nil),
		recordingStep("tls.issue", &calls, nil, "webserver.vhost"),
	)
	ctx, obs := newTestContext(t)

	result, err := p.Run(ctx)
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "webserver.vhost", stepErr.Step)
	assert.Equal(t, StatusFailed, stepErr.Status)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "webserver.vhost step failed: nginx: [emerg] unknown directive", err.Error())

	assert.Equal(t, []string{"packages.install", "webserver.vhost"}, calls)
	assert.Equal(t, []string{"packages.install", "webserver.vhost"}, result.Executed())
	assert.False(t, result.Succeeded())

	o, ok := result.Outcome("tls.issue")
	require.True(t, ok)
	assert.Equal(t, StatusNotRun, o.Status)
	assert.Equal(t, 2, obs.countType(EventStepSkipped))
	assert.Equal(t, 1, obs.countType(EventStepFailed))
}

func TestPipeline_Run_Timeout(t *testing.T) {
	t.Parallel()
	var calls []string
	slow := stepFunc{name: "tls.issue", fn: func(ctx *Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	p := NewPipeline(slow, recordingStep("tls.renewal", &calls, nil))
	ctx, obs := newTestContext(t)
	ctx.Timeouts = &config.Timeouts{Step: 20 * time.Millisecond}

	result, err := p.Run(ctx)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrStepTimeout)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StatusTimedOut, stepErr.Status)
	assert.Contains(t, err.Error(), "tls.issue step timed out")

	o, _ := result.Outcome("tls.issue")
	assert.Equal(t, StatusTimedOut, o.Status)
	assert.Empty(t, calls)
	assert.Equal(t, 1, obs.countType(EventStepTimedOut))
}

func TestPipeline_Run_CancelledIsNotTimeout(t *testing.T) {
	t.Parallel()
	parent, cancel := context.WithCancel(context.Background())
	step := stepFunc{name: "cms.deploy", fn: func(ctx *Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}}
	ctx, _ := newTestContext(t)
	ctx.Context = parent

	_, err := NewPipeline(step).Run(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStepTimeout)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_Run_StepSeesRequestAndSharedState(t *testing.T) {
	t.Parallel()
	write := stepFunc{name: "webserver.vhost", fn: func(ctx *Context) error {
		ctx.State.VirtualHostPath = "/etc/nginx/sites-available/" + ctx.Request.Domain.ASCII + ".conf"
		return nil
	}}
	var seen string
	read := stepFunc{name: "tls.issue", deps: []string{"webserver.vhost"}, fn: func(ctx *Context) error {
		seen = ctx.State.VirtualHostPath
		return nil
	}}
	ctx, _ := newTestContext(t)
	ctx.Request.Domain.ASCII = "example.com"

	_, err := NewPipeline(write, read).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/etc/nginx/sites-available/example.com.conf", seen)
}

func TestPipeline_Validate(t *testing.T) {
	t.Parallel()
	noop := func(*Context) error { return nil }
	tests := []struct {
		name    string
		steps   []Step
		wantErr string
	}{
		{"valid", []Step{stepFunc{name: "a", fn: noop}, stepFunc{name: "b", deps: []string{"a"}, fn: noop}}, ""},
		{"duplicate", []Step{stepFunc{name: "a", fn: noop}, stepFunc{name: "a", fn: noop}}, `duplicate step "a"`},
		{"dependency after", []Step{stepFunc{name: "b", deps: []string{"a"}, fn: noop}, stepFunc{name: "a", fn: noop}}, `step "b" depends on "a"`},
		{"missing dependency", []Step{stepFunc{name: "b", deps: []string{"x"}, fn: noop}}, `depends on "x"`},
		{"empty name", []Step{stepFunc{fn: noop}}, "empty name"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := NewPipeline(tt.steps...).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPipeline_Run_InvalidPipelineRunsNothing(t *testing.T) {
	t.Parallel()
	var calls []string
	p := NewPipeline(recordingStep("a", &calls, nil), recordingStep("a", &calls, nil))
	ctx, _ := newTestContext(t)

	_, err := p.Run(ctx)
	require.Error(t, err)
	assert.Empty(t, calls)
}

func TestPipeline_Run_Idempotent(t *testing.T) {
	t.Parallel()
	var calls []string
	p := NewPipeline(recordingStep("a", &calls, nil), recordingStep("b", &calls, nil, "a"))

	for i := 0; i < 2; i++ {
		ctx, _ := newTestContext(t)
		_, err := p.Run(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "a", "b"}, calls)
}

func TestPipeline_Names(t *testing.T) {
	t.Parallel()
	var calls []string
	p := NewPipeline(recordingStep("a", &calls, nil), recordingStep("b", &calls, nil))
	assert.Equal(t, []string{"a", "b"}, p.Names())
	assert.Len(t, p.Steps(), 2)
}
