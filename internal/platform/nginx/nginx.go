// Package nginx manages nginx site configuration.
package nginx

import (
	"context"
	"fmt"
	"path"

	"github.com/imamik/lempress/internal/platform/shell"
	"github.com/imamik/lempress/internal/provisioning"
	"github.com/imamik/lempress/internal/templates"
)

const defaultSite = "default"

// Proxy is a provisioning.ReverseProxy for nginx's sites-available and
// sites-enabled layout.
type Proxy struct {
	runner    shell.Runner
	files     *shell.Files
	available string
	enabled   string
}

var _ provisioning.ReverseProxy = (*Proxy)(nil)

func New(r shell.Runner, available, enabled string) *Proxy {
	return &Proxy{runner: r, files: shell.NewFiles(r), available: available, enabled: enabled}
}

// ConfigPath returns the sites-available path for id.
func (p *Proxy) ConfigPath(id string) string {
	return path.Join(p.available, id+".conf")
}

func (p *Proxy) linkPath(id string) string {
	return path.Join(p.enabled, id+".conf")
}

// Render returns the configuration text for vh.
func Render(vh provisioning.VirtualHost) ([]byte, error) {
	return templates.Render(templates.NginxVirtualHost, vh)
}

func (p *Proxy) WriteVirtualHost(ctx context.Context, vh provisioning.VirtualHost) (string, error) {
	conf, err := Render(vh)
	if err != nil {
		return "", err
	}
	target := p.ConfigPath(vh.ID)
	if err := p.files.WriteFile(ctx, target, conf, "0644"); err != nil {
		return "", err
	}
	return target, nil
}

func (p *Proxy) EnableSite(ctx context.Context, id string) error {
	return p.files.Symlink(ctx, p.ConfigPath(id), p.linkPath(id))
}

// DisableDefault removes the distribution's default site link if present.
func (p *Proxy) DisableDefault(ctx context.Context) error {
	if _, err := p.runner.Run(ctx, shell.Cmd("rm", "-f", path.Join(p.enabled, defaultSite))); err != nil {
		return fmt.Errorf("failed to disable default site: %w", err)
	}
	return nil
}

func (p *Proxy) ValidateConfig(ctx context.Context) error {
	if _, err := p.runner.Run(ctx, shell.Cmd("nginx", "-t")); err != nil {
		return fmt.Errorf("nginx configuration is invalid: %w", err)
	}
	return nil
}

func (p *Proxy) Reload(ctx context.Context) error {
	if _, err := p.runner.Run(ctx, shell.Cmd("systemctl", "reload-or-restart", "nginx")); err != nil {
		return fmt.Errorf("failed to reload nginx: %w", err)
	}
	return nil
}

// SiteExists reports whether a config file for id is present.
func (p *Proxy) SiteExists(ctx context.Context, id string) (bool, error) {
	return p.files.Exists(ctx, p.ConfigPath(id))
}

// RemoveSite deletes both the enabled link and the config file.
func (p *Proxy) RemoveSite(ctx context.Context, id string) error {
	if _, err := p.runner.Run(ctx, shell.Cmd("rm", "-f", p.linkPath(id), p.ConfigPath(id))); err != nil {
		return fmt.Errorf("failed to remove site %s: %w", id, err)
	}
	return nil
}
