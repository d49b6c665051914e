package plan

import (
	"testing"

	"github.com/imamik/lempress/internal/config"
	"github.com/imamik/lempress/internal/provisioning"
	lptest "github.com/imamik/lempress/internal/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullConfig() *config.Config {
	cfg := config.Default()
	cfg.DNS.Zone = "example.com"
	cfg.DNS.ServerIP = "203.0.113.10"
	cfg.DNS.Token = "token"
	cfg.Archive.Bucket = "logs"
	return cfg
}

func TestInstall_Order(t *testing.T) {
	t.Parallel()
	req := lptest.NewRequestBuilder().WithCleanInstall().Build()
	p := Install(fullConfig(), req)

	assert.Equal(t, []string{
		"reset.wipe",
		"site.reserve",
		"packages.refresh",
		"packages.install",
		"database.provision",
		"webserver.vhost",
		"cms.deploy",
		"firewall.configure",
		"intrusion.configure",
		"antivirus.configure",
		"dns.record",
		"tls.issue",
		"tls.renewal",
		"services.verify",
		"site.register",
		"runlog.archive",
	}, p.Names())
	assert.NoError(t, p.Validate())
}

func TestInstall_DefaultsOmitOptionalSteps(t *testing.T) {
	t.Parallel()
	p := Install(config.Default(), lptest.NewRequestBuilder().Build())

	names := p.Names()
	assert.Equal(t, "site.reserve", names[0])
	assert.NotContains(t, names, "reset.wipe")
	assert.NotContains(t, names, "dns.record")
	assert.NotContains(t, names, "runlog.archive")
	assert.Contains(t, names, "tls.issue")
	assert.NoError(t, p.Validate())
}

func TestInstall_WithoutTLS(t *testing.T) {
	t.Parallel()
	off := false
	cfg := config.Default()
	cfg.TLS.Enabled = &off

	names := Install(cfg, lptest.NewRequestBuilder().Build()).Names()
	assert.NotContains(t, names, "tls.issue")
	assert.NotContains(t, names, "tls.renewal")
}

func TestAddSite_Order(t *testing.T) {
	t.Parallel()
	req := lptest.NewRequestBuilder().WithVariant(provisioning.VariantAddSite).Build()
	p := AddSite(fullConfig(), req)

	assert.Equal(t, []string{
		"site.reserve",
		"database.provision",
		"webserver.vhost",
		"cms.deploy",
		"dns.record",
		"tls.issue",
		"services.verify",
		"site.register",
		"runlog.archive",
	}, p.Names())
	assert.NoError(t, p.Validate())
}

func TestDependenciesPrecedeDependents(t *testing.T) {
	t.Parallel()
	off := false
	minimal := config.Default()
	minimal.TLS.Enabled = &off
	minimal.Panel.Enabled = &off

	for _, cfg := range []*config.Config{config.Default(), fullConfig(), minimal} {
		for _, req := range []provisioning.Request{
			lptest.NewRequestBuilder().Build(),
			lptest.NewRequestBuilder().WithCleanInstall().Build(),
			lptest.NewRequestBuilder().WithVariant(provisioning.VariantAddSite).Build(),
		} {
			p, err := For(cfg, req)
			require.NoError(t, err)
			assert.NoError(t, p.Validate(), "%s %v", req.Variant, p.Names())
		}
	}
}

func TestKeyOrderingConstraints(t *testing.T) {
	t.Parallel()
	names := Install(fullConfig(), lptest.NewRequestBuilder().WithCleanInstall().Build()).Names()
	index := func(name string) int {
		for i, n := range names {
			if n == name {
				return i
			}
		}
		t.Fatalf("step %s missing", name)
		return -1
	}

	assert.Less(t, index("reset.wipe"), index("packages.refresh"))
	assert.Less(t, index("webserver.vhost"), index("tls.issue"))
	assert.Less(t, index("database.provision"), index("cms.deploy"))
	assert.Less(t, index("dns.record"), index("tls.issue"))
	assert.Equal(t, len(names)-1, index("runlog.archive"))
}

func TestFor_UnknownVariant(t *testing.T) {
	t.Parallel()
	req := lptest.NewRequestBuilder().WithVariant("upgrade").Build()
	_, err := For(config.Default(), req)
	assert.Error(t, err)
}

func TestInstall_RunsTwiceAgainstFakes(t *testing.T) {
	t.Parallel()
	cfg := fullConfig()
	fakes := lptest.NewFakeServices()
	fakes.DNSEnabled = true
	fakes.ArchiveEnabled = true
	req := lptest.NewRequestBuilder().Build()

	for run := 0; run < 2; run++ {
		ctx := lptest.NewContext(cfg, req, fakes)
		result, err := Install(cfg, req).Run(ctx)
		require.NoError(t, err, "run %d", run)
		assert.True(t, result.Succeeded())
	}
	assert.Len(t, fakes.Registry.Records(), 1)
}

func TestInstall_CleanWipesBeforeRefresh(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	fakes := lptest.NewFakeServices()
	req := lptest.NewRequestBuilder().WithCleanInstall().Build()

	_, err := Install(cfg, req).Run(lptest.NewContext(cfg, req, fakes))
	require.NoError(t, err)
	assert.Less(t, fakes.Index("database.DropDatabase"), fakes.Index("packages.Refresh"))
	assert.Less(t, fakes.Index("files.RemoveAll"), fakes.Index("packages.Refresh"))
}

func TestAddSite_SecondRunRefused(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	fakes := lptest.NewFakeServices()
	req := lptest.NewRequestBuilder().WithVariant(provisioning.VariantAddSite).WithDomain("shop.example").Build()

	_, err := AddSite(cfg, req).Run(lptest.NewContext(cfg, req, fakes))
	require.NoError(t, err)

	fakes.Reset()
	result, err := AddSite(cfg, req).Run(lptest.NewContext(cfg, req, fakes))
	require.Error(t, err)
	outcome, ok := result.Outcome("site.reserve")
	require.True(t, ok)
	assert.Equal(t, provisioning.StatusFailed, outcome.Status)
	assert.False(t, fakes.Called("database.EnsureDatabase"))
}
