package security

import (
	"fmt"

	"github.com/imamik/lempress/internal/provisioning"
)

const (
	phase = "security"

	FirewallStep  = "firewall.configure"
	IntrusionStep = "intrusion.configure"
	AntivirusStep = "antivirus.configure"
)

// DefaultJails are the fail2ban jails enabled on every host.
var DefaultJails = []string{"sshd", "nginx-http-auth", "nginx-botsearch"}

// FirewallRules returns the ufw rules to allow: the configured profiles
// plus the panel port when the panel is enabled.
func FirewallRules(ctx *provisioning.Context) []string {
	rules := append([]string(nil), ctx.Config.Firewall.Rules...)
	if ctx.Config.Panel.IsEnabled() {
		rules = append(rules, fmt.Sprintf("%d/tcp", ctx.Services.Panel.Port()))
	}
	return rules
}

// FirewallProvisioner allows every rule before it enables ufw.
type FirewallProvisioner struct{}

func NewFirewallProvisioner() *FirewallProvisioner { return &FirewallProvisioner{} }

func (p *FirewallProvisioner) Name() string        { return FirewallStep }
func (p *FirewallProvisioner) DependsOn() []string { return []string{"packages.install"} }

func (p *FirewallProvisioner) Provision(ctx *provisioning.Context) error {
	rules := FirewallRules(ctx)
	ctx.Observer.Printf("[%s] Reconciling firewall with %d rules...", phase, len(rules))
	for _, rule := range rules {
		if err := ctx.Services.Firewall.Allow(ctx, rule); err != nil {
			return fmt.Errorf("failed to allow %q: %w", rule, err)
		}
	}
	if err := ctx.Services.Firewall.Enable(ctx); err != nil {
		return fmt.Errorf("failed to enable firewall: %w", err)
	}
	ctx.Observer.Printf("[%s] Firewall enabled", phase)
	return nil
}

// IntrusionProvisioner writes the fail2ban jail file and restarts fail2ban.
type IntrusionProvisioner struct{}

func NewIntrusionProvisioner() *IntrusionProvisioner { return &IntrusionProvisioner{} }

func (p *IntrusionProvisioner) Name() string        { return IntrusionStep }
func (p *IntrusionProvisioner) DependsOn() []string { return []string{"packages.install"} }

func (p *IntrusionProvisioner) Provision(ctx *provisioning.Context) error {
	f2b := ctx.Config.Fail2ban
	jail := provisioning.JailConfig{
		Jails:    DefaultJails,
		MaxRetry: f2b.MaxRetry,
		BanTime:  f2b.BanTime,
		FindTime: f2b.FindTime,
	}
	ctx.Observer.Printf("[%s] Configuring fail2ban jails %v...", phase, jail.Jails)
	if err := ctx.Services.Intrusion.WriteJail(ctx, jail); err != nil {
		return fmt.Errorf("failed to write jail: %w", err)
	}
	if err := ctx.Services.Intrusion.Restart(ctx); err != nil {
		return fmt.Errorf("failed to restart fail2ban: %w", err)
	}
	return nil
}

// AntivirusProvisioner fetches signatures and starts the ClamAV daemon. The
// daemon refuses to start without a signature database.
type AntivirusProvisioner struct{}

func NewAntivirusProvisioner() *AntivirusProvisioner { return &AntivirusProvisioner{} }

func (p *AntivirusProvisioner) Name() string        { return AntivirusStep }
func (p *AntivirusProvisioner) DependsOn() []string { return []string{"packages.install"} }

func (p *AntivirusProvisioner) Provision(ctx *provisioning.Context) error {
	ctx.Observer.Printf("[%s] Updating antivirus signatures...", phase)
	if err := ctx.Services.Antivirus.UpdateSignatures(ctx); err != nil {
		return fmt.Errorf("failed to update signatures: %w", err)
	}
	if err := ctx.Services.Antivirus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start antivirus: %w", err)
	}
	ctx.Observer.Printf("[%s] Antivirus running", phase)
	return nil
}
