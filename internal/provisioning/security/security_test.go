package security

import (
	"errors"
	"testing"

	"github.com/imamik/lempress/internal/config"
	lptest "github.com/imamik/lempress/internal/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirewall_DefaultRules(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices()
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)

	require.NoError(t, NewFirewallProvisioner().Provision(ctx))
	assert.Equal(t, []string{
		"firewall.Allow OpenSSH",
		"firewall.Allow Nginx Full",
		"firewall.Allow 9090/tcp",
		"firewall.Enable",
	}, fakes.Calls())
}

func TestFirewall_PanelDisabled(t *testing.T) {
	t.Parallel()
	off := false
	cfg := config.Default()
	cfg.Panel.Enabled = &off
	ctx := lptest.NewContext(cfg, lptest.NewRequestBuilder().Build(), lptest.NewFakeServices())

	assert.Equal(t, []string{"OpenSSH", "Nginx Full"}, FirewallRules(ctx))
}

func TestFirewall_AllowFailureKeepsDisabled(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices().FailOn("firewall.Allow", errors.New("ERROR: Could not find a profile"))
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)

	require.Error(t, NewFirewallProvisioner().Provision(ctx))
	assert.False(t, fakes.Called("firewall.Enable"))
}

func TestIntrusion_Provision(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices()
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)

	require.NoError(t, NewIntrusionProvisioner().Provision(ctx))
	assert.Equal(t, []string{
		"intrusion.WriteJail sshd nginx-http-auth nginx-botsearch",
		"intrusion.Restart",
	}, fakes.Calls())
}

func TestAntivirus_Provision(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices()
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)

	require.NoError(t, NewAntivirusProvisioner().Provision(ctx))
	assert.Equal(t, []string{"antivirus.UpdateSignatures", "antivirus.Start"}, fakes.Calls())
}

func TestAntivirus_SignatureFailure(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices().FailOn("antivirus.UpdateSignatures", errors.New("mirror timeout"))
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)

	require.Error(t, NewAntivirusProvisioner().Provision(ctx))
	assert.False(t, fakes.Called("antivirus.Start"))
}

func TestDependsOnPackages(t *testing.T) {
	t.Parallel()
	for _, deps := range [][]string{
		NewFirewallProvisioner().DependsOn(),
		NewIntrusionProvisioner().DependsOn(),
		NewAntivirusProvisioner().DependsOn(),
	} {
		assert.Equal(t, []string{"packages.install"}, deps)
	}
}
