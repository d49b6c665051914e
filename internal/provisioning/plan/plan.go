// Package plan declares the ordered step lists of each run variant.
//
// The order is data: it is built here once, validated by the pipeline before
// anything runs and asserted by tests without executing a step.
package plan

import (
	"fmt"

	"github.com/imamik/lempress/internal/config"
	"github.com/imamik/lempress/internal/provisioning"
	"github.com/imamik/lempress/internal/provisioning/archive"
	"github.com/imamik/lempress/internal/provisioning/database"
	"github.com/imamik/lempress/internal/provisioning/packages"
	"github.com/imamik/lempress/internal/provisioning/reset"
	"github.com/imamik/lempress/internal/provisioning/security"
	"github.com/imamik/lempress/internal/provisioning/services"
	"github.com/imamik/lempress/internal/provisioning/site"
	"github.com/imamik/lempress/internal/provisioning/tls"
	"github.com/imamik/lempress/internal/provisioning/web"
)

// For returns the pipeline for the request's variant.
func For(cfg *config.Config, req provisioning.Request) (*provisioning.Pipeline, error) {
	switch req.Variant {
	case provisioning.VariantInstall:
		return Install(cfg, req), nil
	case provisioning.VariantAddSite:
		return AddSite(cfg, req), nil
	default:
		return nil, fmt.Errorf("unknown variant %q", req.Variant)
	}
}

// Install is the full host setup followed by the first site.
func Install(cfg *config.Config, req provisioning.Request) *provisioning.Pipeline {
	var steps []provisioning.Step
	if req.CleanInstall {
		steps = append(steps, reset.NewWiper())
	}
	steps = append(steps,
		site.NewReserver(),
		packages.NewRefresher(),
		packages.NewInstaller(),
		database.NewProvisioner(),
		web.NewVirtualHostProvisioner(),
		web.NewDeployProvisioner(),
		security.NewFirewallProvisioner(),
		security.NewIntrusionProvisioner(),
		security.NewAntivirusProvisioner(),
	)
	if cfg.DNS.IsEnabled() {
		steps = append(steps, tls.NewDNSProvisioner())
	}
	if cfg.TLS.IsEnabled() {
		steps = append(steps, tls.NewIssueProvisioner(), tls.NewRenewalProvisioner())
	}
	steps = append(steps,
		services.NewVerifier(),
		site.NewRegistrar(),
	)
	if cfg.Archive.IsEnabled() {
		steps = append(steps, archive.NewUploader())
	}
	return provisioning.NewPipeline(steps...)
}

// AddSite provisions one more site on a host that already runs the stack.
// The renewal job installed by Install covers every certificate on the host.
func AddSite(cfg *config.Config, _ provisioning.Request) *provisioning.Pipeline {
	steps := []provisioning.Step{
		site.NewReserver(),
		database.NewProvisioner(),
		web.NewVirtualHostProvisioner(),
		web.NewDeployProvisioner(),
	}
	if cfg.DNS.IsEnabled() {
		steps = append(steps, tls.NewDNSProvisioner())
	}
	if cfg.TLS.IsEnabled() {
		steps = append(steps, tls.NewIssueProvisioner())
	}
	steps = append(steps,
		services.NewVerifier(),
		site.NewRegistrar(),
	)
	if cfg.Archive.IsEnabled() {
		steps = append(steps, archive.NewUploader())
	}
	return provisioning.NewPipeline(steps...)
}
