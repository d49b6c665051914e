package tls

import (
	"errors"
	"fmt"
	"net"

	"github.com/imamik/lempress/internal/provisioning"
)

const (
	phase = "tls"

	DNSStep     = "dns.record"
	IssueStep   = "tls.issue"
	RenewalStep = "tls.renewal"
)

// ErrDNSNotConfigured is returned when dns.record runs without a provider.
var ErrDNSNotConfigured = errors.New("dns provider is not configured")

// DNSProvisioner upserts an A record for every hostname of the site.
type DNSProvisioner struct{}

func NewDNSProvisioner() *DNSProvisioner { return &DNSProvisioner{} }

func (p *DNSProvisioner) Name() string        { return DNSStep }
func (p *DNSProvisioner) DependsOn() []string { return []string{"site.reserve"} }

func (p *DNSProvisioner) Provision(ctx *provisioning.Context) error {
	if ctx.Services.DNS == nil {
		return ErrDNSNotConfigured
	}
	ip := ctx.Config.DNS.ServerIP
	if parsed := net.ParseIP(ip); parsed == nil || parsed.To4() == nil {
		return fmt.Errorf("invalid server IPv4 address %q", ip)
	}
	zone := ctx.Config.DNS.Zone

	for _, host := range ctx.Request.Hostnames() {
		ctx.Observer.Printf("[%s] Pointing %s at %s...", phase, host, ip)
		if err := ctx.Services.DNS.UpsertRecord(ctx, zone, "A", host, ip); err != nil {
			return fmt.Errorf("failed to upsert A record for %s: %w", host, err)
		}
	}

	ctx.State.ServerIP = ip
	ctx.State.DNSRecord = ctx.Request.Domain.ASCII
	return nil
}
