package fail2ban

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/lempress/internal/provisioning"
	lptest "github.com/imamik/lempress/internal/testing"
)

func TestService_WriteJail(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner()
	s := New(r, "/etc/fail2ban/jail.d/lempress.local")

	err := s.WriteJail(context.Background(), provisioning.JailConfig{
		Jails: []string{"sshd", "nginx-http-auth"}, MaxRetry: 5, BanTime: "1h", FindTime: "10m",
	})
	require.NoError(t, err)

	cmds := r.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, "install -D -m 0644 /dev/stdin /etc/fail2ban/jail.d/lempress.local", cmds[0].String())
	assert.Contains(t, string(cmds[0].Stdin), "bantime = 1h")
	assert.Contains(t, string(cmds[0].Stdin), "[nginx-http-auth]")
	assert.Equal(t, "fail2ban-client -t", cmds[1].String())
}

func TestService_WriteJailInvalid(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().Fail("fail2ban-client -t", 255, "ERROR  No file(s) found for glob /var/log/nginx/error.log")
	s := New(r, "/etc/fail2ban/jail.d/lempress.local")

	err := s.WriteJail(context.Background(), provisioning.JailConfig{Jails: []string{"nginx-http-auth"}, MaxRetry: 3, BanTime: "1h", FindTime: "10m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fail2ban configuration is invalid")

	assert.Error(t, s.WriteJail(context.Background(), provisioning.JailConfig{}))
}

func TestService_Restart(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner()
	require.NoError(t, New(r, "/x").Restart(context.Background()))
	assert.Equal(t, []string{"systemctl enable fail2ban", "systemctl restart fail2ban"}, r.CommandLines())
}
