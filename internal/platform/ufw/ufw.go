// Package ufw configures the Uncomplicated Firewall.
package ufw

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/lempress/internal/platform/shell"
	"github.com/imamik/lempress/internal/provisioning"
)

// Firewall is a provisioning.Firewall. ufw deduplicates rules itself, so
// Allow and Enable are safe to repeat.
type Firewall struct {
	runner shell.Runner
}

var _ provisioning.Firewall = (*Firewall)(nil)

func New(r shell.Runner) *Firewall {
	return &Firewall{runner: r}
}

// Allow opens an application profile ("Nginx Full") or a port spec ("9090/tcp").
func (f *Firewall) Allow(ctx context.Context, rule string) error {
	if strings.TrimSpace(rule) == "" {
		return fmt.Errorf("empty firewall rule")
	}
	if _, err := f.runner.Run(ctx, shell.Cmd("ufw", "allow", rule)); err != nil {
		return fmt.Errorf("failed to allow %s: %w", rule, err)
	}
	return nil
}

func (f *Firewall) Enable(ctx context.Context) error {
	if _, err := f.runner.Run(ctx, shell.Cmd("ufw", "--force", "enable")); err != nil {
		return fmt.Errorf("failed to enable firewall: %w", err)
	}
	return nil
}
