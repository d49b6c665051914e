package services

import (
	"errors"
	"testing"

	"github.com/imamik/lempress/internal/config"
	"github.com/imamik/lempress/internal/provisioning"
	lptest "github.com/imamik/lempress/internal/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_AlreadyRunning(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices()
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)

	require.NoError(t, NewVerifier().Provision(ctx))
	assert.Equal(t, []string{
		"systemd.IsEnabled php8.1-fpm",
		"systemd.IsActive php8.1-fpm",
		"panel.IsEnabled",
		"panel.IsActive",
	}, fakes.Calls())
	assert.Equal(t, 9090, ctx.State.PanelPort)
	assert.True(t, ctx.State.PanelActive)
}

func TestVerifier_StartsStoppedServices(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices().
		SetExisting("disabled:php8.1-fpm", true).
		SetExisting("inactive:php8.1-fpm", true).
		SetExisting("inactive:panel", true)
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)

	require.NoError(t, NewVerifier().Provision(ctx))
	assert.True(t, fakes.Called("systemd.Enable php8.1-fpm"))
	assert.True(t, fakes.Called("systemd.Start php8.1-fpm"))
	assert.True(t, fakes.Called("panel.Start"))
	assert.False(t, fakes.Called("panel.Enable"))

	// Second pass finds everything running.
	fakes.Reset()
	require.NoError(t, NewVerifier().Provision(ctx))
	assert.False(t, fakes.Called("systemd.Start"))
	assert.False(t, fakes.Called("panel.Start"))
}

func TestVerifier_PanelCertificate(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Panel.UseSiteCertificate = true
	fakes := lptest.NewFakeServices()
	ctx := lptest.NewContext(cfg, lptest.NewRequestBuilder().Build(), fakes)

	// No certificate issued yet: nothing to install.
	require.NoError(t, NewVerifier().Provision(ctx))
	assert.False(t, fakes.Called("panel.InstallTLSCert"))

	ctx.State.Certificate = provisioning.CertificatePaths{
		FullChain:  "/etc/letsencrypt/live/example.com/fullchain.pem",
		PrivateKey: "/etc/letsencrypt/live/example.com/privkey.pem",
	}
	require.NoError(t, NewVerifier().Provision(ctx))
	assert.True(t, fakes.Called("panel.InstallTLSCert /etc/letsencrypt/live/example.com/fullchain.pem"))
}

func TestVerifier_PanelDisabled(t *testing.T) {
	t.Parallel()
	off := false
	cfg := config.Default()
	cfg.Panel.Enabled = &off
	fakes := lptest.NewFakeServices()
	ctx := lptest.NewContext(cfg, lptest.NewRequestBuilder().Build(), fakes)

	require.NoError(t, NewVerifier().Provision(ctx))
	assert.False(t, fakes.Called("panel."))
	assert.Zero(t, ctx.State.PanelPort)
}

func TestVerifier_StartFailure(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices().
		SetExisting("inactive:php8.1-fpm", true).
		FailOn("systemd.Start", errors.New("Job for php8.1-fpm.service failed"))
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)

	err := NewVerifier().Provision(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start php8.1-fpm")
	assert.False(t, fakes.Called("panel."))
}
