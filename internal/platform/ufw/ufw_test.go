package ufw

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lptest "github.com/imamik/lempress/internal/testing"
)

func TestFirewall(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner()
	f := New(r)
	ctx := context.Background()

	require.NoError(t, f.Allow(ctx, "OpenSSH"))
	require.NoError(t, f.Allow(ctx, "Nginx Full"))
	require.NoError(t, f.Allow(ctx, "9090/tcp"))
	require.NoError(t, f.Enable(ctx))

	cmds := r.Commands()
	require.Len(t, cmds, 4)
	assert.Equal(t, []string{"allow", "Nginx Full"}, cmds[1].Args)
	assert.Equal(t, "ufw --force enable", cmds[3].String())
}

func TestFirewall_Errors(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().Fail("ufw allow", 1, "ERROR: Could not find a profile matching 'Nginx Fulll'")
	f := New(r)

	assert.Error(t, f.Allow(context.Background(), " "))
	err := f.Allow(context.Background(), "Nginx Fulll")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not find a profile")
}
