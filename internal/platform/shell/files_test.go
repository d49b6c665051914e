package shell_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/lempress/internal/platform/shell"
	lptest "github.com/imamik/lempress/internal/testing"
)

func TestFiles_Exists(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().Fail("test -e /var/www/missing", 1, "")
	f := shell.NewFiles(r)

	ok, err := f.Exists(context.Background(), "/var/www/present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Exists(context.Background(), "/var/www/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFiles_ExistsPropagatesOtherErrors(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().Fail("test -e", 255, "connection reset")
	_, err := shell.NewFiles(r).Exists(context.Background(), "/x")
	assert.Error(t, err)
}

func TestFiles_RemoveAllRefusesSystemPaths(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner()
	f := shell.NewFiles(r)

	for _, p := range []string{"/", "/var/www/", "/etc", "relative/path", ""} {
		assert.Error(t, f.RemoveAll(context.Background(), p), p)
	}
	assert.Empty(t, r.CommandLines())

	require.NoError(t, f.RemoveAll(context.Background(), "/var/www/example.com/"))
	assert.Equal(t, []string{"rm -rf -- /var/www/example.com"}, r.CommandLines())
}

func TestFiles_WriteFileUsesStdin(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner()
	f := shell.NewFiles(r)

	require.NoError(t, f.WriteFile(context.Background(), "/var/www/example.com/wp-config.php", []byte("<?php"), "0640"))
	require.Len(t, r.Commands(), 1)
	cmd := r.Commands()[0]
	assert.Equal(t, "install -D -m 0640 /dev/stdin /var/www/example.com/wp-config.php", cmd.String())
	assert.Equal(t, "<?php", string(cmd.Stdin))
}

func TestFiles_MkdirAllAndSymlink(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner()
	f := shell.NewFiles(r)

	require.NoError(t, f.MkdirAll(context.Background(), "/var/www/example.com", "www-data"))
	require.NoError(t, f.MkdirAll(context.Background(), "/etc/lempress", ""))
	require.NoError(t, f.Symlink(context.Background(), "/etc/nginx/sites-available/a.conf", "/etc/nginx/sites-enabled/a.conf"))

	assert.Equal(t, []string{
		"install -d -m 0755 -o www-data -g www-data /var/www/example.com",
		"install -d -m 0755 /etc/lempress",
		"ln -sfn /etc/nginx/sites-available/a.conf /etc/nginx/sites-enabled/a.conf",
	}, r.CommandLines())
}

func TestFiles_ReadFile(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().On("cat -- /etc/os-release", "ID=ubuntu\n", nil)
	data, err := shell.NewFiles(r).ReadFile(context.Background(), "/etc/os-release")
	require.NoError(t, err)
	assert.Equal(t, "ID=ubuntu\n", string(data))
}
