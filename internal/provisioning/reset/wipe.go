// Package reset removes an existing installation of a site before a clean
// install. It is only part of the plan after the operator confirmed the wipe.
package reset

import (
	"fmt"

	"github.com/imamik/lempress/internal/provisioning"
	"github.com/imamik/lempress/internal/util/naming"
)

const (
	phase = "reset"

	// WipeStep is the step name.
	WipeStep = "reset.wipe"
)

// Wiper deletes the site's document root, nginx files, database, database
// user and registry record. Every removal tolerates an absent target. When no
// database server is running yet there is nothing to drop, so the database
// removals are skipped.
type Wiper struct{}

func NewWiper() *Wiper { return &Wiper{} }

func (w *Wiper) Name() string        { return WipeStep }
func (w *Wiper) DependsOn() []string { return nil }

func (w *Wiper) Provision(ctx *provisioning.Context) error {
	req := ctx.Request
	svc := ctx.Services
	ctx.Observer.Printf("[%s] Wiping existing installation of %s...", phase, req.Domain.Display)

	dbUp, err := svc.Database.Available(ctx)
	if err != nil {
		return err
	}

	vhost := naming.VirtualHost(req.Domain)
	type removal struct {
		kind string
		name string
		fn   func() error
	}
	removals := []removal{
		{"document root", req.DocumentRoot, func() error { return svc.Files.RemoveAll(ctx, req.DocumentRoot) }},
		{"virtual host", vhost, func() error { return svc.Proxy.RemoveSite(ctx, vhost) }},
	}
	if dbUp {
		removals = append(removals,
			removal{"database", req.DBName, func() error { return svc.Database.DropDatabase(ctx, req.DBName) }},
			removal{"database user", req.DBUser, func() error { return svc.Database.DropUser(ctx, req.DBUser) }},
		)
	} else {
		ctx.Observer.Printf("[%s] No database server running, skipping database %s and user %s", phase, req.DBName, req.DBUser)
	}
	removals = append(removals,
		removal{"registry record", req.Domain.ASCII, func() error { return svc.Registry.Remove(req.Domain.ASCII) }})

	for _, r := range removals {
		if err := r.fn(); err != nil {
			return fmt.Errorf("failed to remove %s %s: %w", r.kind, r.name, err)
		}
		ctx.State.Wiped = append(ctx.State.Wiped, r.kind+" "+r.name)
		provisioning.LogResourceDeleted(ctx.Observer, WipeStep, r.kind, r.name)
	}

	ctx.Observer.Printf("[%s] Removed %d resources of %s", phase, len(removals), req.Domain.Display)
	return nil
}
