// Package panel manages the Cockpit web administration panel.
package panel

import (
	"context"
	"fmt"
	"path"

	"github.com/imamik/lempress/internal/platform/shell"
	"github.com/imamik/lempress/internal/provisioning"
)

// Cockpit is a provisioning.AdminPanel driven through a ServiceManager.
type Cockpit struct {
	runner  shell.Runner
	systemd provisioning.ServiceManager
	unit    string
	port    int
	certDir string
}

var _ provisioning.AdminPanel = (*Cockpit)(nil)

// New creates a Cockpit panel controlled through unit and listening on port.
func New(r shell.Runner, systemd provisioning.ServiceManager, unit string, port int, certDir string) *Cockpit {
	return &Cockpit{runner: r, systemd: systemd, unit: unit, port: port, certDir: certDir}
}

func (c *Cockpit) IsActive(ctx context.Context) (bool, error) {
	return c.systemd.IsActive(ctx, c.unit)
}

func (c *Cockpit) IsEnabled(ctx context.Context) (bool, error) {
	return c.systemd.IsEnabled(ctx, c.unit)
}

func (c *Cockpit) Start(ctx context.Context) error {
	return c.systemd.Start(ctx, c.unit)
}

func (c *Cockpit) Enable(ctx context.Context) error {
	return c.systemd.Enable(ctx, c.unit)
}

func (c *Cockpit) Port() int {
	return c.port
}

// InstallTLSCert links the site certificate into cockpit's certificate
// directory and restarts the listener to pick it up. cockpit-ws serves the
// alphabetically last certificate, so the links sort after the self-signed one.
func (c *Cockpit) InstallTLSCert(ctx context.Context, cert provisioning.CertificatePaths) error {
	links := []struct{ target, link string }{
		{cert.FullChain, path.Join(c.certDir, "zz-lempress.crt")},
		{cert.PrivateKey, path.Join(c.certDir, "zz-lempress.key")},
	}
	for _, l := range links {
		if _, err := c.runner.Run(ctx, shell.Cmd("ln", "-sfn", l.target, l.link)); err != nil {
			return fmt.Errorf("failed to install panel certificate: %w", err)
		}
	}
	if err := c.systemd.Restart(ctx, c.unit); err != nil {
		return fmt.Errorf("failed to restart panel: %w", err)
	}
	return nil
}
