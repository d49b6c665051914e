package web

import (
	"fmt"

	"github.com/imamik/lempress/internal/provisioning"
	"github.com/imamik/lempress/internal/util/naming"
)

const (
	phase = "web"

	VirtualHostStep = "webserver.vhost"
	DeployStep      = "cms.deploy"
)

// VirtualHostProvisioner creates the document root and activates the site.
// nginx is reloaded only after its configuration validates.
type VirtualHostProvisioner struct{}

func NewVirtualHostProvisioner() *VirtualHostProvisioner { return &VirtualHostProvisioner{} }

func (p *VirtualHostProvisioner) Name() string        { return VirtualHostStep }
func (p *VirtualHostProvisioner) DependsOn() []string { return []string{"site.reserve"} }

func (p *VirtualHostProvisioner) Provision(ctx *provisioning.Context) error {
	req := ctx.Request
	proxy := ctx.Services.Proxy
	vh := provisioning.VirtualHost{
		ID:           naming.VirtualHost(req.Domain),
		ServerNames:  req.Hostnames(),
		DocumentRoot: req.DocumentRoot,
		PHPSocket:    ctx.Config.PHP.Socket(),
	}

	if err := ctx.Services.Files.MkdirAll(ctx, req.DocumentRoot, ctx.Config.CMS.Owner); err != nil {
		return fmt.Errorf("failed to create document root %s: %w", req.DocumentRoot, err)
	}

	ctx.Observer.Printf("[%s] Writing virtual host %s for %v...", phase, vh.ID, req.DisplayHostnames())
	path, err := proxy.WriteVirtualHost(ctx, vh)
	if err != nil {
		return fmt.Errorf("failed to write virtual host: %w", err)
	}
	if err := proxy.EnableSite(ctx, vh.ID); err != nil {
		return fmt.Errorf("failed to enable site %s: %w", vh.ID, err)
	}
	// The stock default site would shadow the new server block on a fresh host.
	if req.Variant == provisioning.VariantInstall {
		if err := proxy.DisableDefault(ctx); err != nil {
			return fmt.Errorf("failed to disable default site: %w", err)
		}
	}
	if err := proxy.ValidateConfig(ctx); err != nil {
		return err
	}
	if err := proxy.Reload(ctx); err != nil {
		return fmt.Errorf("failed to reload nginx: %w", err)
	}

	ctx.State.VirtualHostPath = path
	ctx.State.PHPSocket = vh.PHPSocket
	ctx.Observer.Printf("[%s] Virtual host %s active", phase, path)
	return nil
}
