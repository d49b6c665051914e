package web

import (
	"fmt"

	"github.com/imamik/lempress/internal/provisioning"
)

// DeployProvisioner unpacks WordPress, writes its configuration and fixes
// ownership. With cms.cli_install and an admin password it also runs the
// core install so the site is ready without the browser wizard.
type DeployProvisioner struct{}

func NewDeployProvisioner() *DeployProvisioner { return &DeployProvisioner{} }

func (p *DeployProvisioner) Name() string { return DeployStep }
func (p *DeployProvisioner) DependsOn() []string {
	return []string{"database.provision", VirtualHostStep}
}

func (p *DeployProvisioner) Provision(ctx *provisioning.Context) error {
	req := ctx.Request
	cms := ctx.Services.CMS

	ctx.Observer.Printf("[%s] Deploying WordPress into %s...", phase, req.DocumentRoot)
	if err := cms.Fetch(ctx, req.DocumentRoot); err != nil {
		return fmt.Errorf("failed to fetch WordPress: %w", err)
	}
	if err := cms.Configure(ctx, provisioning.CMSConfig{
		DocumentRoot: req.DocumentRoot,
		DBName:       req.DBName,
		DBUser:       req.DBUser,
		DBPassword:   req.DBPassword,
		DBHost:       "localhost",
	}); err != nil {
		return fmt.Errorf("failed to configure WordPress: %w", err)
	}
	if err := cms.SetPermissions(ctx, req.DocumentRoot); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if !ctx.Config.CMS.CLIInstall || req.AdminPassword == "" {
		ctx.Observer.Printf("[%s] WordPress deployed; finish setup in the browser", phase)
		return nil
	}

	opts := provisioning.CoreInstallOptions{
		DocumentRoot:  req.DocumentRoot,
		URL:           SiteURL(ctx),
		Title:         req.SiteTitle,
		AdminUser:     req.AdminUser,
		AdminPassword: req.AdminPassword,
		AdminEmail:    req.AdminEmail,
	}
	if err := cms.CoreInstall(ctx, opts); err != nil {
		return fmt.Errorf("failed to install WordPress core: %w", err)
	}
	ctx.Observer.Printf("[%s] WordPress installed for %s", phase, opts.URL)
	return nil
}

// SiteURL is the canonical ASCII URL of the site.
func SiteURL(ctx *provisioning.Context) string {
	scheme := "http"
	if ctx.Config.TLS.IsEnabled() {
		scheme = "https"
	}
	return scheme + "://" + ctx.Request.Domain.ASCII
}
