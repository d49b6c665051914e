// Package clamav updates ClamAV signatures and starts its daemon.
package clamav

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/lempress/internal/platform/shell"
	"github.com/imamik/lempress/internal/provisioning"
)

const (
	daemonUnit    = "clamav-daemon"
	freshclamUnit = "clamav-freshclam"
)

// Scanner is a provisioning.Antivirus.
type Scanner struct {
	runner shell.Runner
}

var _ provisioning.Antivirus = (*Scanner)(nil)

func New(r shell.Runner) *Scanner {
	return &Scanner{runner: r}
}

// UpdateSignatures runs freshclam once. The freshclam service holds the
// database lock, so it is stopped for the update and started again after.
func (s *Scanner) UpdateSignatures(ctx context.Context) error {
	if _, err := s.runner.Run(ctx, shell.Cmd("systemctl", "stop", freshclamUnit)); err != nil {
		return fmt.Errorf("failed to stop %s: %w", freshclamUnit, err)
	}
	res, err := s.runner.Run(ctx, shell.Cmd("freshclam", "--quiet"))
	// Exit 1 with "up-to-date" output means nothing to download.
	if err != nil && !(shell.ExitCode(err) == 1 && strings.Contains(res.Text(), "up-to-date")) {
		return fmt.Errorf("failed to update virus signatures: %w", err)
	}
	if _, err := s.runner.Run(ctx, shell.Cmd("systemctl", "enable", "--now", freshclamUnit)); err != nil {
		return fmt.Errorf("failed to start %s: %w", freshclamUnit, err)
	}
	return nil
}

func (s *Scanner) Start(ctx context.Context) error {
	if _, err := s.runner.Run(ctx, shell.Cmd("systemctl", "enable", "--now", daemonUnit)); err != nil {
		return fmt.Errorf("failed to start %s: %w", daemonUnit, err)
	}
	return nil
}
