package wordpress

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/lempress/internal/provisioning"
	lptest "github.com/imamik/lempress/internal/testing"
)

var testOptions = Options{
	DownloadURL: "https://wordpress.org/latest.tar.gz",
	WPCLIURL:    "https://example.org/wp-cli.phar",
	Owner:       "www-data",
}

func TestInstaller_FetchFresh(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().Fail("test -e /var/www/example.com/wp-includes/version.php", 1, "")
	i := New(r, testOptions)

	require.NoError(t, i.Fetch(context.Background(), "/var/www/example.com"))
	assert.Equal(t, []string{
		"test -e /var/www/example.com/wp-includes/version.php",
		"install -d -m 0755 -o www-data -g www-data /var/www/example.com",
		"curl -fsSL -o /tmp/lempress-wordpress.tar.gz https://wordpress.org/latest.tar.gz",
		"tar -xzf /tmp/lempress-wordpress.tar.gz -C /var/www/example.com --strip-components=1",
		"rm -f /tmp/lempress-wordpress.tar.gz",
	}, r.CommandLines())
}

func TestInstaller_FetchExisting(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner()
	require.NoError(t, New(r, testOptions).Fetch(context.Background(), "/var/www/example.com"))
	assert.Len(t, r.Commands(), 1)
}

func TestInstaller_FetchDownloadFailure(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().
		Fail("test -e", 1, "").
		Fail("curl", 22, "curl: (22) The requested URL returned error: 503")
	err := New(r, testOptions).Fetch(context.Background(), "/var/www/example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download WordPress")
	assert.False(t, r.Ran("tar"))
}

func TestInstaller_Configure(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().Fail("test -e /var/www/example.com/wp-config.php", 1, "")
	i := New(r, testOptions)

	err := i.Configure(context.Background(), provisioning.CMSConfig{
		DocumentRoot: "/var/www/example.com",
		DBName:       "wp_example_com",
		DBUser:       "wpu_example_com",
		DBPassword:   provisioning.Secret("s3cret"),
		DBHost:       "localhost",
	})
	require.NoError(t, err)

	cmds := r.Commands()
	require.Len(t, cmds, 2)
	write := cmds[1]
	assert.Equal(t, "install -D -m 0640 /dev/stdin /var/www/example.com/wp-config.php", write.String())
	conf := string(write.Stdin)
	assert.Contains(t, conf, "define( 'DB_NAME', 'wp_example_com' );")
	assert.Contains(t, conf, "define( 'DB_PASSWORD', 's3cret' );")
	assert.Contains(t, conf, "define( 'NONCE_SALT', '")
	assert.NotContains(t, write.String(), "s3cret")
}

const existingConfig = `<?php
define( 'DB_NAME', 'wp_example_com' );
define( 'DB_USER', 'wpu_example_com' );
define( 'DB_PASSWORD', 'old-password' );
define( 'DB_HOST', 'localhost' );
define( 'DB_CHARSET', 'utf8mb4' );
define( 'AUTH_KEY', 'kept-salt' );
require_once ABSPATH . 'wp-settings.php';
`

func existingCMSConfig(password string) provisioning.CMSConfig {
	return provisioning.CMSConfig{
		DocumentRoot: "/var/www/example.com",
		DBName:       "wp_example_com",
		DBUser:       "wpu_example_com",
		DBPassword:   provisioning.Secret(password),
		DBHost:       "localhost",
	}
}

func TestInstaller_ConfigureKeepsMatchingConfig(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().On("cat -- /var/www/example.com/wp-config.php", existingConfig, nil)
	require.NoError(t, New(r, testOptions).Configure(context.Background(), existingCMSConfig("old-password")))
	assert.False(t, r.Ran("install"))
}

func TestInstaller_ConfigureRewritesChangedPassword(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().On("cat -- /var/www/example.com/wp-config.php", existingConfig, nil)
	require.NoError(t, New(r, testOptions).Configure(context.Background(), existingCMSConfig("new$pa'ss")))

	cmds := r.Commands()
	write := cmds[len(cmds)-1]
	assert.Equal(t, "install -D -m 0640 /dev/stdin /var/www/example.com/wp-config.php", write.String())
	conf := string(write.Stdin)
	assert.Contains(t, conf, `define( 'DB_PASSWORD', 'new$pa\'ss' );`)
	assert.NotContains(t, conf, "old-password")
	assert.Contains(t, conf, "define( 'AUTH_KEY', 'kept-salt' );")
	assert.Contains(t, conf, "define( 'DB_CHARSET', 'utf8mb4' );")
}

func TestInstaller_ConfigureRejectsForeignConfig(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().On("cat -- /var/www/example.com/wp-config.php", "<?php\n// hand-written\n", nil)
	err := New(r, testOptions).Configure(context.Background(), existingCMSConfig("pw"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not define every database setting")
	assert.False(t, r.Ran("install"))
}

func TestInstaller_SetPermissions(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner()
	require.NoError(t, New(r, testOptions).SetPermissions(context.Background(), "/var/www/example.com"))

	cmds := r.Commands()
	require.Len(t, cmds, 4)
	assert.Equal(t, "chown -R www-data:www-data /var/www/example.com", cmds[0].String())
	assert.Equal(t, []string{"/var/www/example.com", "-type", "f", "-exec", "chmod", "644", "{}", "+"}, cmds[2].Args)
	assert.Equal(t, "chmod 640 /var/www/example.com/wp-config.php", cmds[3].String())
}

func TestInstaller_CoreInstall(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().
		Fail("test -x /usr/local/bin/wp", 1, "").
		Fail("/usr/local/bin/wp core is-installed", 1, "")
	i := New(r, testOptions)

	err := i.CoreInstall(context.Background(), provisioning.CoreInstallOptions{
		DocumentRoot:  "/var/www/example.com",
		URL:           "https://example.com",
		Title:         "My Site",
		AdminUser:     "admin",
		AdminPassword: provisioning.Secret("adm1n-pass"),
		AdminEmail:    "admin@example.com",
	})
	require.NoError(t, err)

	assert.True(t, r.Ran("curl -fsSL -o /usr/local/bin/wp https://example.org/wp-cli.phar"))
	cmds := r.Commands()
	install := cmds[len(cmds)-1]
	assert.Equal(t, "core", install.Args[0])
	assert.Equal(t, "install", install.Args[1])
	assert.Contains(t, install.Args, "--title=My Site")
	assert.Equal(t, "adm1n-pass\n", string(install.Stdin))
	for _, c := range r.CommandLines() {
		assert.False(t, strings.Contains(c, "adm1n-pass"), "password leaked into %q", c)
	}
}

func TestInstaller_CoreInstallAlreadyInstalled(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner()
	require.NoError(t, New(r, testOptions).CoreInstall(context.Background(), provisioning.CoreInstallOptions{DocumentRoot: "/var/www/example.com"}))
	assert.Equal(t, []string{
		"test -x /usr/local/bin/wp",
		"/usr/local/bin/wp core is-installed --path=/var/www/example.com --allow-root",
	}, r.CommandLines())
}
