package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/imamik/lempress/internal/config"
	"github.com/imamik/lempress/internal/provisioning"
	lptest "github.com/imamik/lempress/internal/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedState() *provisioning.State {
	state := provisioning.NewState()
	state.PanelPort = 9090
	state.PanelActive = true
	state.Certificate = provisioning.CertificatePaths{FullChain: "/etc/letsencrypt/live/xn--e1aybc.site/fullchain.pem"}
	state.NextRenewal = time.Date(2026, 10, 15, 3, 17, 0, 0, time.UTC)
	return state
}

func render(t *testing.T, s *Summary) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, s, false))
	return buf.String()
}

func TestNew_DisplayFormURLs(t *testing.T) {
	t.Parallel()
	req := lptest.NewRequestBuilder().WithDomain("тест.site").Build()
	out := render(t, New(config.Default(), req, completedState()))

	assert.Contains(t, out, "https://тест.site\n")
	assert.Contains(t, out, "https://www.тест.site\n")
	assert.Contains(t, out, "https://тест.site/wp-admin/")
	assert.Contains(t, out, "https://тест.site:9090/")
	assert.Contains(t, out, "/etc/letsencrypt/live/xn--e1aybc.site/fullchain.pem")
	assert.Contains(t, out, "Thu, 15 Oct 2026 03:17:00 UTC")
	assert.NotContains(t, out, "https://xn--e1aybc.site")
}

func TestNew_WithoutTLSOrPanel(t *testing.T) {
	t.Parallel()
	off := false
	cfg := config.Default()
	cfg.TLS.Enabled = &off
	req := lptest.NewRequestBuilder().WithoutWWW().Build()

	out := render(t, New(cfg, req, provisioning.NewState()))
	assert.Contains(t, out, "http://example.com\n")
	assert.NotContains(t, out, "www.")
	assert.NotContains(t, out, "Panel")
	assert.NotContains(t, out, "Certificate")
}

func TestPassword_Policies(t *testing.T) {
	t.Parallel()
	secret := provisioning.Secret("s3cret")
	assert.Equal(t, hiddenPassword, Password(config.PasswordHidden, secret))
	assert.Equal(t, hiddenPassword, Password("", secret))
	assert.Equal(t, "********", Password(config.PasswordMasked, secret))
	assert.Equal(t, "s3cret", Password(config.PasswordPlain, secret))
}

func TestRender_DefaultNeverPrintsPassword(t *testing.T) {
	t.Parallel()
	out := render(t, New(config.Default(), lptest.NewRequestBuilder().Build(), completedState()))
	assert.NotContains(t, out, "s3cret")
	assert.Contains(t, out, "wp_example_com")
	assert.Contains(t, out, "wpu_example_com")
}

func TestNew_RunSection(t *testing.T) {
	t.Parallel()
	state := completedState()
	state.DNSRecord = "example.com"
	state.ServerIP = "203.0.113.10"
	state.ArchiveKey = "runs/example.com/20261014T120000Z.log"

	out := render(t, New(config.Default(), lptest.NewRequestBuilder().Build(), state))
	assert.Contains(t, out, "example.com -> 203.0.113.10")
	assert.Contains(t, out, "runs/example.com/20261014T120000Z.log")
}

func TestRender_Styled(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, New(config.Default(), lptest.NewRequestBuilder().Build(), completedState()), true))
	assert.Contains(t, buf.String(), "example.com")
}
