package certbot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lptest "github.com/imamik/lempress/internal/testing"
)

func TestAuthority_Issue(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner()
	a := New(r, "/etc/cron.d", false)

	require.NoError(t, a.Issue(context.Background(), []string{"xn--e1aybc.site", "www.xn--e1aybc.site"}, "admin@xn--e1aybc.site"))
	assert.Equal(t, []string{
		"certbot --nginx --non-interactive --agree-tos --keep-until-expiring --redirect " +
			"--email admin@xn--e1aybc.site --cert-name xn--e1aybc.site -d xn--e1aybc.site -d www.xn--e1aybc.site",
	}, r.CommandLines())
}

func TestAuthority_IssueStaging(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner()
	require.NoError(t, New(r, "/etc/cron.d", true).Issue(context.Background(), []string{"example.com"}, "a@example.com"))
	assert.Contains(t, r.CommandLines()[0], "--staging")
}

func TestAuthority_IssueFailure(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().Fail("certbot", 1, "Challenge failed for domain example.com")
	a := New(r, "/etc/cron.d", false)

	err := a.Issue(context.Background(), []string{"example.com"}, "a@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to issue certificate for example.com")
	assert.Contains(t, err.Error(), "Challenge failed")

	assert.Error(t, a.Issue(context.Background(), nil, "a@example.com"))
}

func TestAuthority_Paths(t *testing.T) {
	t.Parallel()
	p := New(nil, "/etc/cron.d", false).Paths("example.com")
	assert.Equal(t, "/etc/letsencrypt/live/example.com/fullchain.pem", p.FullChain)
	assert.Equal(t, "/etc/letsencrypt/live/example.com/privkey.pem", p.PrivateKey)
}

func TestAuthority_ScheduleAutoRenewal(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner()
	a := New(r, "/etc/cron.d", false)
	a.now = func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) }

	next, err := a.ScheduleAutoRenewal(context.Background(), "17 3 * * *")
	require.NoError(t, err)
	assert.True(t, next.Equal(time.Date(2026, 10, 15, 3, 17, 0, 0, time.UTC)), "next run %s", next)

	cmds := r.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, "install -D -m 0644 /dev/stdin /etc/cron.d/lempress-certbot", cmds[0].String())
	assert.Contains(t, string(cmds[0].Stdin), "17 3 * * * root certbot renew --quiet")
}

func TestNextRun_Invalid(t *testing.T) {
	t.Parallel()
	for _, schedule := range []string{"every day", "@every 12h", "@daily", "TZ=UTC 17 3 * * *", "0 17 3 * * *"} {
		_, err := NextRun(schedule, time.Now())
		require.Error(t, err, schedule)
		assert.Contains(t, err.Error(), "invalid renewal schedule", schedule)
	}
}
