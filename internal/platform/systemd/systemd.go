// Package systemd controls units with systemctl.
package systemd

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/lempress/internal/platform/shell"
	"github.com/imamik/lempress/internal/provisioning"
)

// Manager is a provisioning.ServiceManager.
type Manager struct {
	runner shell.Runner
}

var _ provisioning.ServiceManager = (*Manager)(nil)

func New(r shell.Runner) *Manager {
	return &Manager{runner: r}
}

// IsActive reports whether unit is running. Any non-zero exit from
// is-active means not active.
func (m *Manager) IsActive(ctx context.Context, unit string) (bool, error) {
	return m.query(ctx, "is-active", unit)
}

// IsEnabled reports whether unit starts at boot.
func (m *Manager) IsEnabled(ctx context.Context, unit string) (bool, error) {
	return m.query(ctx, "is-enabled", unit)
}

func (m *Manager) Start(ctx context.Context, unit string) error {
	return m.action(ctx, "start", unit)
}

func (m *Manager) Enable(ctx context.Context, unit string) error {
	return m.action(ctx, "enable", unit)
}

func (m *Manager) Restart(ctx context.Context, unit string) error {
	return m.action(ctx, "restart", unit)
}

func (m *Manager) Reload(ctx context.Context, unit string) error {
	return m.action(ctx, "reload-or-restart", unit)
}

func (m *Manager) query(ctx context.Context, verb, unit string) (bool, error) {
	_, err := m.runner.Run(ctx, shell.Cmd("systemctl", verb, "--quiet", unit))
	if err == nil {
		return true, nil
	}
	var exitErr *shell.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("failed to query %s: %w", unit, err)
}

func (m *Manager) action(ctx context.Context, verb, unit string) error {
	if _, err := m.runner.Run(ctx, shell.Cmd("systemctl", verb, unit)); err != nil {
		return fmt.Errorf("failed to %s %s: %w", verb, unit, err)
	}
	return nil
}
