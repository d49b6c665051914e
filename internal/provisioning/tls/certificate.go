package tls

import (
	"fmt"
	"time"

	"github.com/imamik/lempress/internal/provisioning"
)

// IssueProvisioner obtains a certificate covering every hostname. The CA
// keeps an unexpired certificate, so reruns do not hit rate limits.
type IssueProvisioner struct{}

func NewIssueProvisioner() *IssueProvisioner { return &IssueProvisioner{} }

func (p *IssueProvisioner) Name() string        { return IssueStep }
func (p *IssueProvisioner) DependsOn() []string { return []string{"webserver.vhost"} }

func (p *IssueProvisioner) Provision(ctx *provisioning.Context) error {
	req := ctx.Request
	ctx.Observer.Printf("[%s] Requesting certificate for %v...", phase, req.DisplayHostnames())
	if err := ctx.Services.CA.Issue(ctx, req.Hostnames(), req.AdminEmail); err != nil {
		return fmt.Errorf("failed to issue certificate: %w", err)
	}
	ctx.State.Certificate = ctx.Services.CA.Paths(req.Domain.ASCII)
	ctx.Observer.Printf("[%s] Certificate stored at %s", phase, ctx.State.Certificate.FullChain)
	return nil
}

// RenewalProvisioner installs the renewal job.
type RenewalProvisioner struct{}

func NewRenewalProvisioner() *RenewalProvisioner { return &RenewalProvisioner{} }

func (p *RenewalProvisioner) Name() string        { return RenewalStep }
func (p *RenewalProvisioner) DependsOn() []string { return []string{IssueStep} }

func (p *RenewalProvisioner) Provision(ctx *provisioning.Context) error {
	schedule := ctx.Config.TLS.RenewalSchedule
	next, err := ctx.Services.CA.ScheduleAutoRenewal(ctx, schedule)
	if err != nil {
		return fmt.Errorf("failed to schedule renewal: %w", err)
	}
	ctx.State.NextRenewal = next
	ctx.Observer.Printf("[%s] Renewal scheduled (%s), next check %s", phase, schedule, next.Format(time.RFC3339))
	return nil
}
