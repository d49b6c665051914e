// Package fail2ban writes jail configuration and restarts the service.
package fail2ban

import (
	"context"
	"fmt"

	"github.com/imamik/lempress/internal/platform/shell"
	"github.com/imamik/lempress/internal/provisioning"
	"github.com/imamik/lempress/internal/templates"
)

const unit = "fail2ban"

// Service is a provisioning.IntrusionPrevention.
type Service struct {
	runner   shell.Runner
	files    *shell.Files
	jailPath string
}

var _ provisioning.IntrusionPrevention = (*Service)(nil)

// New creates a Service writing its jail to jailPath (a jail.d drop-in).
func New(r shell.Runner, jailPath string) *Service {
	return &Service{runner: r, files: shell.NewFiles(r), jailPath: jailPath}
}

// WriteJail renders cfg into the drop-in and checks it with fail2ban-client.
func (s *Service) WriteJail(ctx context.Context, cfg provisioning.JailConfig) error {
	if len(cfg.Jails) == 0 {
		return fmt.Errorf("no jails configured")
	}
	data, err := templates.Render(templates.Fail2banJail, cfg)
	if err != nil {
		return err
	}
	if err := s.files.WriteFile(ctx, s.jailPath, data, "0644"); err != nil {
		return err
	}
	if _, err := s.runner.Run(ctx, shell.Cmd("fail2ban-client", "-t")); err != nil {
		return fmt.Errorf("fail2ban configuration is invalid: %w", err)
	}
	return nil
}

func (s *Service) Restart(ctx context.Context) error {
	if _, err := s.runner.Run(ctx, shell.Cmd("systemctl", "enable", unit)); err != nil {
		return fmt.Errorf("failed to enable %s: %w", unit, err)
	}
	if _, err := s.runner.Run(ctx, shell.Cmd("systemctl", "restart", unit)); err != nil {
		return fmt.Errorf("failed to restart %s: %w", unit, err)
	}
	return nil
}
