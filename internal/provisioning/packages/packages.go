// Package packages refreshes the package index and installs the LEMP stack.
package packages

import (
	"fmt"

	"github.com/imamik/lempress/internal/config"
	"github.com/imamik/lempress/internal/provisioning"
)

const (
	phase = "packages"

	RefreshStep = "packages.refresh"
	InstallStep = "packages.install"
)

// phpExtensions are the PHP modules WordPress needs beyond the FPM binary.
var phpExtensions = []string{"mysql", "curl", "gd", "mbstring", "xml", "zip", "intl"}

// List returns every package the install variant needs, in install order.
func List(cfg *config.Config) []string {
	pkgs := []string{"nginx", "mariadb-server", "php" + cfg.PHP.Version + "-fpm"}
	for _, ext := range phpExtensions {
		pkgs = append(pkgs, "php"+cfg.PHP.Version+"-"+ext)
	}
	pkgs = append(pkgs,
		"curl",
		"ufw",
		"fail2ban",
		"clamav",
		"clamav-daemon",
	)
	if cfg.TLS.IsEnabled() {
		pkgs = append(pkgs, "certbot", "python3-certbot-nginx")
	}
	if cfg.Panel.IsEnabled() {
		pkgs = append(pkgs, "cockpit")
	}
	return append(pkgs, cfg.Packages.Extra...)
}

// Refresher updates the package index.
type Refresher struct{}

func NewRefresher() *Refresher { return &Refresher{} }

func (r *Refresher) Name() string        { return RefreshStep }
func (r *Refresher) DependsOn() []string { return nil }

func (r *Refresher) Provision(ctx *provisioning.Context) error {
	ctx.Observer.Printf("[%s] Refreshing package index...", phase)
	if err := ctx.Services.Packages.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to refresh package index: %w", err)
	}
	return nil
}

// Installer installs the stack. Installing an installed package is a no-op
// for the package manager, so reruns are safe.
type Installer struct{}

func NewInstaller() *Installer { return &Installer{} }

func (i *Installer) Name() string        { return InstallStep }
func (i *Installer) DependsOn() []string { return []string{RefreshStep} }

func (i *Installer) Provision(ctx *provisioning.Context) error {
	pkgs := List(ctx.Config)
	ctx.Observer.Printf("[%s] Installing %d packages...", phase, len(pkgs))
	if err := ctx.Services.Packages.Install(ctx, pkgs...); err != nil {
		return fmt.Errorf("failed to install packages: %w", err)
	}
	ctx.Observer.Printf("[%s] Packages installed", phase)
	return nil
}
