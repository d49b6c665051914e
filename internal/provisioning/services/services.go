// Package services makes sure the long-running services the site depends
// on are enabled and running after provisioning.
package services

import (
	"fmt"

	"github.com/imamik/lempress/internal/provisioning"
)

const (
	phase = "services"

	VerifyStep = "services.verify"
)

// Verifier enables and starts PHP-FPM and the admin panel when they are not
// already. With panel.use_site_certificate it hands the site certificate to
// the panel.
type Verifier struct{}

func NewVerifier() *Verifier { return &Verifier{} }

func (v *Verifier) Name() string        { return VerifyStep }
func (v *Verifier) DependsOn() []string { return []string{"webserver.vhost"} }

func (v *Verifier) Provision(ctx *provisioning.Context) error {
	if err := ensureUnit(ctx, ctx.Config.PHP.FPMService()); err != nil {
		return err
	}
	if !ctx.Config.Panel.IsEnabled() {
		return nil
	}
	return ensurePanel(ctx)
}

func ensureUnit(ctx *provisioning.Context, unit string) error {
	sd := ctx.Services.Systemd
	enabled, err := sd.IsEnabled(ctx, unit)
	if err != nil {
		return err
	}
	if !enabled {
		if err := sd.Enable(ctx, unit); err != nil {
			return fmt.Errorf("failed to enable %s: %w", unit, err)
		}
	}
	active, err := sd.IsActive(ctx, unit)
	if err != nil {
		return err
	}
	if active {
		provisioning.LogResourceExists(ctx.Observer, VerifyStep, "service", unit)
		return nil
	}
	ctx.Observer.Printf("[%s] Starting %s...", phase, unit)
	if err := sd.Start(ctx, unit); err != nil {
		return fmt.Errorf("failed to start %s: %w", unit, err)
	}
	return nil
}

func ensurePanel(ctx *provisioning.Context) error {
	panel := ctx.Services.Panel
	enabled, err := panel.IsEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to query panel: %w", err)
	}
	if !enabled {
		if err := panel.Enable(ctx); err != nil {
			return fmt.Errorf("failed to enable panel: %w", err)
		}
	}
	active, err := panel.IsActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to query panel: %w", err)
	}
	if !active {
		ctx.Observer.Printf("[%s] Starting panel...", phase)
		if err := panel.Start(ctx); err != nil {
			return fmt.Errorf("failed to start panel: %w", err)
		}
	}

	cert := ctx.State.Certificate
	if ctx.Config.Panel.UseSiteCertificate && cert.FullChain != "" {
		if err := panel.InstallTLSCert(ctx, cert); err != nil {
			return fmt.Errorf("failed to install panel certificate: %w", err)
		}
	}

	ctx.State.PanelPort = panel.Port()
	ctx.State.PanelActive = true
	ctx.Observer.Printf("[%s] Panel listening on port %d", phase, ctx.State.PanelPort)
	return nil
}
