package handlers

import (
	"errors"
	"fmt"
	"os"

	"github.com/imamik/lempress/internal/config"
	"github.com/imamik/lempress/internal/platform/apt"
	"github.com/imamik/lempress/internal/platform/certbot"
	"github.com/imamik/lempress/internal/platform/clamav"
	"github.com/imamik/lempress/internal/platform/cloudflare"
	"github.com/imamik/lempress/internal/platform/fail2ban"
	"github.com/imamik/lempress/internal/platform/mysql"
	"github.com/imamik/lempress/internal/platform/nginx"
	"github.com/imamik/lempress/internal/platform/panel"
	"github.com/imamik/lempress/internal/platform/s3"
	"github.com/imamik/lempress/internal/platform/shell"
	"github.com/imamik/lempress/internal/platform/ssh"
	"github.com/imamik/lempress/internal/platform/systemd"
	"github.com/imamik/lempress/internal/platform/ufw"
	"github.com/imamik/lempress/internal/platform/wordpress"
	"github.com/imamik/lempress/internal/provisioning"
)

// target is where commands run: the local machine or an SSH host.
type target struct {
	shell.Runner
	// dial reaches sockets on the target; nil for the local machine.
	dial mysql.DialFunc
	// closers are released in reverse order by Close.
	closers []func() error
}

// Close releases the connection and every collaborator opened on it.
func (t *target) Close() error {
	var errs []error
	for i := len(t.closers) - 1; i >= 0; i-- {
		errs = append(errs, t.closers[i]())
	}
	t.closers = nil
	return errors.Join(errs...)
}

// connectTarget returns a runner for the configured target. SSH connections
// are established lazily on the first command.
func connectTarget(cfg *config.Config, timeouts *config.Timeouts) (*target, error) {
	if !cfg.Target.IsRemote() {
		return &target{Runner: shell.LocalRunner{}}, nil
	}

	// #nosec G304
	key, err := os.ReadFile(cfg.Target.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH private key: %w", err)
	}
	client, err := ssh.NewClient(&ssh.Config{
		Host:           cfg.Target.Host,
		Port:           cfg.Target.Port,
		User:           cfg.Target.User,
		PrivateKey:     key,
		KnownHostsPath: cfg.Target.KnownHostsPath,
		DialTimeout:    timeouts.SSHDial,
		MaxRetries:     timeouts.RetryMaxAttempts,
		RetryDelay:     timeouts.RetryInitialDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH client: %w", err)
	}
	return &target{Runner: client, dial: client.Dial, closers: []func() error{client.Close}}, nil
}

// buildServices wires every collaborator onto t. The DNS provider and the
// archiver are only created when configured.
func buildServices(cfg *config.Config, t *target, reg provisioning.SiteRegistry, timeouts *config.Timeouts) (*provisioning.Services, error) {
	db, err := mysql.Open(cfg.Database.DSN, t.dial)
	if err != nil {
		return nil, err
	}
	t.closers = append(t.closers, db.Close)

	sd := systemd.New(t)
	svc := &provisioning.Services{
		Packages:  apt.New(t, timeouts.RetryMaxAttempts, timeouts.RetryInitialDelay),
		Database:  db,
		Proxy:     nginx.New(t, cfg.Paths.NginxAvailable, cfg.Paths.NginxEnabled),
		CA:        certbot.New(t, cfg.Paths.CronDir, cfg.TLS.Staging),
		Firewall:  ufw.New(t),
		Intrusion: fail2ban.New(t, cfg.Paths.Fail2banJail),
		Antivirus: clamav.New(t),
		CMS: wordpress.New(t, wordpress.Options{
			DownloadURL: cfg.CMS.DownloadURL,
			WPCLIURL:    cfg.CMS.WPCLIURL,
			Owner:       cfg.CMS.Owner,
		}),
		Systemd:  sd,
		Panel:    panel.New(t, sd, cfg.Panel.Service, cfg.Panel.Port, cfg.Panel.CertDir),
		Files:    shell.NewFiles(t),
		Registry: reg,
	}

	if cfg.DNS.IsEnabled() {
		svc.DNS = cloudflare.NewClient(cfg.DNS.Token)
	}
	if cfg.Archive.IsEnabled() {
		a := cfg.Archive
		client, err := s3.NewClient(a.Endpoint, a.Region, a.Bucket, a.AccessKey, a.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive client: %w", err)
		}
		svc.Archiver = client
	}
	return svc, nil
}
