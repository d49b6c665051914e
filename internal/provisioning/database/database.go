// Package database creates the site database and its dedicated user.
package database

import (
	"fmt"

	"github.com/imamik/lempress/internal/provisioning"
)

const (
	phase = "database"

	ProvisionStep = "database.provision"
)

// Provisioner ensures the database, the user and the grant. Each call is an
// upsert, and the password is reset to the requested one on every run.
type Provisioner struct{}

func NewProvisioner() *Provisioner { return &Provisioner{} }

func (p *Provisioner) Name() string        { return ProvisionStep }
func (p *Provisioner) DependsOn() []string { return []string{"site.reserve"} }

func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	req := ctx.Request
	db := ctx.Services.Database

	provisioning.LogResourceCreating(ctx.Observer, ProvisionStep, "database", req.DBName)
	if err := db.EnsureDatabase(ctx, req.DBName); err != nil {
		return fmt.Errorf("failed to create database %s: %w", req.DBName, err)
	}

	ctx.Observer.Printf("[%s] Ensuring user %s...", phase, req.DBUser)
	if err := db.EnsureUser(ctx, req.DBUser, req.DBPassword); err != nil {
		return fmt.Errorf("failed to create user %s: %w", req.DBUser, err)
	}
	if err := db.Grant(ctx, req.DBUser, req.DBName); err != nil {
		return fmt.Errorf("failed to grant %s on %s: %w", req.DBUser, req.DBName, err)
	}

	provisioning.LogResourceCreated(ctx.Observer, ProvisionStep, "database", req.DBName)
	return nil
}
