package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/lempress/internal/config/wizard"
	"github.com/imamik/lempress/internal/precheck"
)

// MockPrompter is a mock implementation of wizard.Prompter.
// Input expectations are keyed by field key and default.
type MockPrompter struct {
	mock.Mock
}

func (m *MockPrompter) Input(ctx context.Context, field wizard.Field, def string) (string, error) {
	args := m.Called(field.Key, def)
	return args.String(0), args.Error(1)
}

func (m *MockPrompter) Confirm(ctx context.Context, title, description string) (bool, error) {
	args := m.Called(title)
	return args.Bool(0), args.Error(1)
}

// MockProbe is a mock implementation of precheck.Probe.
type MockProbe struct {
	mock.Mock
}

func (m *MockProbe) OSRelease(ctx context.Context) (precheck.OSInfo, error) {
	args := m.Called()
	return args.Get(0).(precheck.OSInfo), args.Error(1)
}

func (m *MockProbe) FreeBytes(ctx context.Context, path string) (uint64, error) {
	args := m.Called(path)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockProbe) Reachable(ctx context.Context, hostport string) error {
	args := m.Called(hostport)
	return args.Error(0)
}

func (m *MockProbe) EffectiveUID(ctx context.Context) (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

// HealthyProbe returns a MockProbe describing a supported, root-owned host
// with enough disk and network access.
func HealthyProbe() *MockProbe {
	p := &MockProbe{}
	p.On("OSRelease").Return(precheck.OSInfo{ID: "ubuntu", Version: "22.04"}, nil)
	p.On("FreeBytes", mock.Anything).Return(uint64(20_000_000_000), nil)
	p.On("Reachable", mock.Anything).Return(nil)
	p.On("EffectiveUID").Return(0, nil)
	return p
}
