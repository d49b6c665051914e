// Package wordpress deploys WordPress into a document root.
package wordpress

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"

	"github.com/imamik/lempress/internal/platform/shell"
	"github.com/imamik/lempress/internal/provisioning"
	"github.com/imamik/lempress/internal/templates"
	"github.com/imamik/lempress/internal/util/keygen"
)

const (
	wpCLIPath    = "/usr/local/bin/wp"
	archivePath  = "/tmp/lempress-wordpress.tar.gz"
	configFile   = "wp-config.php"
	versionProbe = "wp-includes/version.php"
)

// Options configures an Installer.
type Options struct {
	DownloadURL string
	WPCLIURL    string
	// Owner is the user and group the web server runs as.
	Owner string
}

// Installer is a provisioning.CMSInstaller.
type Installer struct {
	runner shell.Runner
	files  *shell.Files
	opts   Options
}

var _ provisioning.CMSInstaller = (*Installer)(nil)

func New(r shell.Runner, opts Options) *Installer {
	return &Installer{runner: r, files: shell.NewFiles(r), opts: opts}
}

// Fetch downloads and extracts the WordPress release. A document root that
// already holds WordPress core is left as it is.
func (i *Installer) Fetch(ctx context.Context, documentRoot string) error {
	present, err := i.files.Exists(ctx, path.Join(documentRoot, versionProbe))
	if err != nil {
		return err
	}
	if present {
		return nil
	}

	if err := i.files.MkdirAll(ctx, documentRoot, i.opts.Owner); err != nil {
		return err
	}
	if _, err := i.runner.Run(ctx, shell.Cmd("curl", "-fsSL", "-o", archivePath, i.opts.DownloadURL)); err != nil {
		return fmt.Errorf("failed to download WordPress: %w", err)
	}
	if _, err := i.runner.Run(ctx, shell.Cmd("tar", "-xzf", archivePath, "-C", documentRoot, "--strip-components=1")); err != nil {
		return fmt.Errorf("failed to extract WordPress: %w", err)
	}
	if _, err := i.runner.Run(ctx, shell.Cmd("rm", "-f", archivePath)); err != nil {
		return fmt.Errorf("failed to remove WordPress archive: %w", err)
	}
	return nil
}

// credentialLine matches one database define in wp-config.php.
var credentialLine = regexp.MustCompile(`(?m)^define\(\s*'(DB_NAME|DB_USER|DB_PASSWORD|DB_HOST)'\s*,.*\);[ \t]*$`)

type configData struct {
	DBName     string
	DBUser     string
	DBPassword string
	DBHost     string
	Salts      []keygen.Salt
}

// Configure writes wp-config.php with fresh salts. An existing config only
// gets its database credentials updated, so salts and sessions survive
// reruns while the config always matches the database account.
func (i *Installer) Configure(ctx context.Context, cfg provisioning.CMSConfig) error {
	target := path.Join(cfg.DocumentRoot, configFile)
	present, err := i.files.Exists(ctx, target)
	if err != nil {
		return err
	}
	if present {
		return i.updateCredentials(ctx, target, cfg)
	}

	salts, err := keygen.GenerateSalts()
	if err != nil {
		return fmt.Errorf("failed to generate salts: %w", err)
	}
	data, err := templates.Render(templates.WordPressConfig, configData{
		DBName:     cfg.DBName,
		DBUser:     cfg.DBUser,
		DBPassword: cfg.DBPassword.Reveal(),
		DBHost:     cfg.DBHost,
		Salts:      salts,
	})
	if err != nil {
		return err
	}
	return i.files.WriteFile(ctx, target, data, "0640")
}

func (i *Installer) updateCredentials(ctx context.Context, target string, cfg provisioning.CMSConfig) error {
	current, err := i.files.ReadFile(ctx, target)
	if err != nil {
		return err
	}
	values := map[string]string{
		"DB_NAME":     cfg.DBName,
		"DB_USER":     cfg.DBUser,
		"DB_PASSWORD": cfg.DBPassword.Reveal(),
		"DB_HOST":     cfg.DBHost,
	}
	seen := make(map[string]bool, len(values))
	updated := credentialLine.ReplaceAllFunc(current, func(line []byte) []byte {
		key := string(credentialLine.FindSubmatch(line)[1])
		seen[key] = true
		return []byte(fmt.Sprintf("define( '%s', %s );", key, templates.QuotePHP(values[key])))
	})
	if len(seen) != len(values) {
		return fmt.Errorf("%s does not define every database setting, remove it or use a clean install", target)
	}
	if bytes.Equal(updated, current) {
		return nil
	}
	return i.files.WriteFile(ctx, target, updated, "0640")
}

// SetPermissions hands the tree to the web server user with 755/644 modes.
// wp-config.php stays 640.
func (i *Installer) SetPermissions(ctx context.Context, documentRoot string) error {
	owner := i.opts.Owner + ":" + i.opts.Owner
	cmds := []shell.Command{
		shell.Cmd("chown", "-R", owner, documentRoot),
		shell.Cmd("find", documentRoot, "-type", "d", "-exec", "chmod", "755", "{}", "+"),
		shell.Cmd("find", documentRoot, "-type", "f", "-exec", "chmod", "644", "{}", "+"),
		shell.Cmd("chmod", "640", path.Join(documentRoot, configFile)),
	}
	for _, c := range cmds {
		if _, err := i.runner.Run(ctx, c); err != nil {
			return fmt.Errorf("failed to set permissions on %s: %w", documentRoot, err)
		}
	}
	return nil
}

// CoreInstall runs the WordPress installer through wp-cli unless the site
// is already installed. The admin password is passed on stdin.
func (i *Installer) CoreInstall(ctx context.Context, opts provisioning.CoreInstallOptions) error {
	if err := i.ensureCLI(ctx); err != nil {
		return err
	}

	pathFlag := "--path=" + opts.DocumentRoot
	if _, err := i.runner.Run(ctx, shell.Cmd(wpCLIPath, "core", "is-installed", pathFlag, "--allow-root")); err == nil {
		return nil
	} else if shell.ExitCode(err) != 1 {
		return fmt.Errorf("failed to query WordPress install state: %w", err)
	}

	cmd := shell.Cmd(wpCLIPath, "core", "install",
		pathFlag,
		"--url="+opts.URL,
		"--title="+opts.Title,
		"--admin_user="+opts.AdminUser,
		"--admin_email="+opts.AdminEmail,
		"--prompt=admin_password",
		"--skip-email",
		"--allow-root",
	).WithStdin([]byte(opts.AdminPassword.Reveal() + "\n"))
	if _, err := i.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("failed to install WordPress core: %w", err)
	}
	return nil
}

func (i *Installer) ensureCLI(ctx context.Context) error {
	if _, err := i.runner.Run(ctx, shell.Cmd("test", "-x", wpCLIPath)); err == nil {
		return nil
	}
	if _, err := i.runner.Run(ctx, shell.Cmd("curl", "-fsSL", "-o", wpCLIPath, i.opts.WPCLIURL)); err != nil {
		return fmt.Errorf("failed to download wp-cli: %w", err)
	}
	if _, err := i.runner.Run(ctx, shell.Cmd("chmod", "0755", wpCLIPath)); err != nil {
		return fmt.Errorf("failed to install wp-cli: %w", err)
	}
	return nil
}
