// Package apt installs system packages with apt-get.
package apt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/imamik/lempress/internal/platform/shell"
	"github.com/imamik/lempress/internal/util/retry"
)

var env = []string{"DEBIAN_FRONTEND=noninteractive", "NEEDRESTART_MODE=a"}

// lockMarkers appear in apt-get output when another process holds the dpkg lock.
var lockMarkers = []string{
	"Could not get lock",
	"Unable to acquire the dpkg frontend lock",
	"dpkg was interrupted",
}

// Manager is a provisioning.PackageManager backed by apt-get.
type Manager struct {
	runner       shell.Runner
	maxRetries   int
	initialDelay time.Duration
}

// New creates a Manager that retries lock contention up to maxRetries times.
func New(r shell.Runner, maxRetries int, initialDelay time.Duration) *Manager {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	if initialDelay <= 0 {
		initialDelay = 2 * time.Second
	}
	return &Manager{runner: r, maxRetries: maxRetries, initialDelay: initialDelay}
}

// Refresh updates the package index.
func (m *Manager) Refresh(ctx context.Context) error {
	if err := m.run(ctx, shell.Cmd("apt-get", "update", "-q")); err != nil {
		return fmt.Errorf("failed to refresh package index: %w", err)
	}
	return nil
}

// Install installs packages. Already installed packages are left as they are.
func (m *Manager) Install(ctx context.Context, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}
	args := append([]string{"install", "-y", "-q", "--no-install-recommends"}, packages...)
	if err := m.run(ctx, shell.Cmd("apt-get", args...)); err != nil {
		return fmt.Errorf("failed to install %s: %w", strings.Join(packages, " "), err)
	}
	return nil
}

func (m *Manager) run(ctx context.Context, cmd shell.Command) error {
	cmd = cmd.WithEnv(env...)
	return retry.WithExponentialBackoff(ctx, func() error {
		_, err := m.runner.Run(ctx, cmd)
		return err
	},
		retry.WithMaxRetries(m.maxRetries),
		retry.WithInitialDelay(m.initialDelay),
		retry.WithRetryIf(IsLockContention),
	)
}

// IsLockContention reports whether err was caused by a held dpkg lock.
func IsLockContention(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range lockMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
