package packages

import (
	"errors"
	"testing"

	"github.com/imamik/lempress/internal/config"
	lptest "github.com/imamik/lempress/internal/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_Defaults(t *testing.T) {
	t.Parallel()
	pkgs := List(config.Default())

	assert.Equal(t, []string{"nginx", "mariadb-server", "php8.1-fpm"}, pkgs[:3])
	assert.Contains(t, pkgs, "php8.1-mysql")
	assert.Contains(t, pkgs, "python3-certbot-nginx")
	assert.Contains(t, pkgs, "clamav-daemon")
	assert.Contains(t, pkgs, "cockpit")
}

func TestList_Toggles(t *testing.T) {
	t.Parallel()
	off := false
	cfg := config.Default()
	cfg.TLS.Enabled = &off
	cfg.Panel.Enabled = &off
	cfg.PHP.Version = "8.3"
	cfg.Packages.Extra = []string{"redis-server"}

	pkgs := List(cfg)
	assert.NotContains(t, pkgs, "certbot")
	assert.NotContains(t, pkgs, "cockpit")
	assert.Contains(t, pkgs, "php8.3-fpm")
	assert.Equal(t, "redis-server", pkgs[len(pkgs)-1])
}

func TestSteps(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices()
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)

	require.NoError(t, NewRefresher().Provision(ctx))
	require.NoError(t, NewInstaller().Provision(ctx))

	calls := fakes.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "packages.Refresh", calls[0])
	assert.Contains(t, calls[1], "packages.Install nginx mariadb-server php8.1-fpm")
	assert.Equal(t, []string{RefreshStep}, NewInstaller().DependsOn())
}

func TestInstaller_Error(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices().FailOn("packages.Install", errors.New("Unable to locate package"))
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)

	err := NewInstaller().Provision(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to install packages")
}
