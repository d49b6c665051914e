package tls

import (
	"errors"
	"testing"

	"github.com/imamik/lempress/internal/config"
	lptest "github.com/imamik/lempress/internal/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dnsConfig() *config.Config {
	cfg := config.Default()
	cfg.DNS.Zone = "example.com"
	cfg.DNS.ServerIP = "203.0.113.10"
	cfg.DNS.Token = "token"
	return cfg
}

func TestDNS_UpsertsEveryHostname(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices()
	fakes.DNSEnabled = true
	ctx := lptest.NewContext(dnsConfig(), lptest.NewRequestBuilder().Build(), fakes)

	require.NoError(t, NewDNSProvisioner().Provision(ctx))
	assert.Equal(t, []string{
		"dns.UpsertRecord example.com A example.com 203.0.113.10",
		"dns.UpsertRecord example.com A www.example.com 203.0.113.10",
	}, fakes.Calls())
	assert.Equal(t, "203.0.113.10", ctx.State.ServerIP)
}

func TestDNS_Errors(t *testing.T) {
	t.Parallel()

	ctx := lptest.NewContext(dnsConfig(), lptest.NewRequestBuilder().Build(), lptest.NewFakeServices())
	assert.ErrorIs(t, NewDNSProvisioner().Provision(ctx), ErrDNSNotConfigured)

	cfg := dnsConfig()
	cfg.DNS.ServerIP = "2001:db8::1"
	fakes := lptest.NewFakeServices()
	fakes.DNSEnabled = true
	ctx = lptest.NewContext(cfg, lptest.NewRequestBuilder().Build(), fakes)
	err := NewDNSProvisioner().Provision(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server IPv4 address")
	assert.Empty(t, fakes.Calls())
}

func TestIssue_Provision(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices()
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().WithDomain("тест.site").Build(), fakes)

	require.NoError(t, NewIssueProvisioner().Provision(ctx))
	assert.Equal(t, []string{
		"ca.Issue xn--e1aybc.site www.xn--e1aybc.site admin@xn--e1aybc.site",
	}, fakes.Calls())
	assert.Equal(t, "/etc/letsencrypt/live/xn--e1aybc.site/fullchain.pem", ctx.State.Certificate.FullChain)
}

func TestIssue_Failure(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices().FailOn("ca.Issue", errors.New("too many certificates already issued"))
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)

	require.Error(t, NewIssueProvisioner().Provision(ctx))
	assert.Empty(t, ctx.State.Certificate.FullChain)
}

func TestRenewal_Provision(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices()
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)

	require.NoError(t, NewRenewalProvisioner().Provision(ctx))
	assert.Equal(t, []string{"ca.ScheduleAutoRenewal 17 3 * * *"}, fakes.Calls())
	assert.True(t, ctx.State.NextRenewal.Equal(lptest.RenewalTime))
	assert.Equal(t, []string{IssueStep}, NewRenewalProvisioner().DependsOn())
}
