package site

import (
	"fmt"

	"github.com/imamik/lempress/internal/provisioning"
	"github.com/imamik/lempress/internal/registry"
	"github.com/imamik/lempress/internal/util/naming"
)

const phase = "site"

const (
	ReserveStep  = "site.reserve"
	RegisterStep = "site.register"
)

// Record builds the registry record the request will produce.
func Record(ctx *provisioning.Context) registry.SiteRecord {
	host := ctx.Config.Target.Host
	if host == "" {
		host = "localhost"
	}
	return registry.SiteRecord{
		Domain:       ctx.Request.Domain.ASCII,
		Display:      ctx.Request.Domain.Display,
		DocumentRoot: ctx.Request.DocumentRoot,
		VirtualHost:  naming.VirtualHost(ctx.Request.Domain),
		Database:     ctx.Request.DBName,
		DBUser:       ctx.Request.DBUser,
		Host:         host,
		TLS:          ctx.Config.TLS.IsEnabled(),
	}
}

// Reserver refuses to provision over resources another site owns.
type Reserver struct{}

func NewReserver() *Reserver { return &Reserver{} }

func (r *Reserver) Name() string        { return ReserveStep }
func (r *Reserver) DependsOn() []string { return nil }

// Provision checks the registry and, when adding a site, the host itself.
// An install accepts an existing record with identical resources so reruns
// stay idempotent.
func (r *Reserver) Provision(ctx *provisioning.Context) error {
	want := Record(ctx)
	reg := ctx.Services.Registry
	ctx.Observer.Printf("[%s] Reserving %s...", phase, ctx.Request.Domain.Display)

	existing, found, err := reg.Lookup(want.Domain)
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", want.Domain, err)
	}
	if found {
		if ctx.Request.Variant == provisioning.VariantAddSite || !existing.SameResources(want) {
			return fmt.Errorf("%w: %s", registry.ErrSiteExists, want.Domain)
		}
		provisioning.LogResourceExists(ctx.Observer, ReserveStep, "site", want.Domain)
	}

	owner, found, err := reg.FindByDatabase(want.Database)
	if err != nil {
		return fmt.Errorf("failed to look up database %s: %w", want.Database, err)
	}
	if found && owner.Domain != want.Domain {
		return fmt.Errorf("%w: %s is used by %s", registry.ErrDatabaseInUse, want.Database, owner.Domain)
	}

	owner, found, err = reg.FindByDBUser(want.DBUser)
	if err != nil {
		return fmt.Errorf("failed to look up database user %s: %w", want.DBUser, err)
	}
	if found && owner.Domain != want.Domain {
		return fmt.Errorf("%w: %s is used by %s", registry.ErrDatabaseUserInUse, want.DBUser, owner.Domain)
	}

	if ctx.Request.Variant == provisioning.VariantAddSite {
		if err := r.checkHost(ctx, want); err != nil {
			return err
		}
	}

	ctx.Observer.Printf("[%s] Reserved %s (database %s)", phase, want.Domain, want.Database)
	return nil
}

func (r *Reserver) checkHost(ctx *provisioning.Context, want registry.SiteRecord) error {
	exists, err := ctx.Services.Files.Exists(ctx, want.DocumentRoot)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", want.DocumentRoot, err)
	}
	if exists {
		return fmt.Errorf("%w: document root %s", registry.ErrResourceExists, want.DocumentRoot)
	}

	exists, err = ctx.Services.Proxy.SiteExists(ctx, want.VirtualHost)
	if err != nil {
		return fmt.Errorf("failed to check virtual host %s: %w", want.VirtualHost, err)
	}
	if exists {
		return fmt.Errorf("%w: virtual host %s", registry.ErrResourceExists, want.VirtualHost)
	}

	exists, err = ctx.Services.Database.DatabaseExists(ctx, want.Database)
	if err != nil {
		return fmt.Errorf("failed to check database %s: %w", want.Database, err)
	}
	if exists {
		return fmt.Errorf("%w: database %s", registry.ErrResourceExists, want.Database)
	}

	exists, err = ctx.Services.Database.UserExists(ctx, want.DBUser)
	if err != nil {
		return fmt.Errorf("failed to check database user %s: %w", want.DBUser, err)
	}
	if exists {
		return fmt.Errorf("%w: database user %s", registry.ErrResourceExists, want.DBUser)
	}
	return nil
}

// Registrar upserts the site record after every resource is in place.
type Registrar struct{}

func NewRegistrar() *Registrar { return &Registrar{} }

func (r *Registrar) Name() string        { return RegisterStep }
func (r *Registrar) DependsOn() []string { return []string{"cms.deploy"} }

func (r *Registrar) Provision(ctx *provisioning.Context) error {
	rec := Record(ctx)
	if err := ctx.Services.Registry.Register(rec); err != nil {
		return fmt.Errorf("failed to register %s: %w", rec.Domain, err)
	}
	provisioning.LogResourceCreated(ctx.Observer, RegisterStep, "site", rec.Domain)
	return nil
}
