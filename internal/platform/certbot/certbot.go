// Package certbot issues Let's Encrypt certificates with certbot's nginx
// plugin and schedules their renewal through cron.d.
package certbot

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/imamik/lempress/internal/config"
	"github.com/imamik/lempress/internal/platform/shell"
	"github.com/imamik/lempress/internal/provisioning"
	"github.com/imamik/lempress/internal/templates"
)

const (
	liveDir      = "/etc/letsencrypt/live"
	cronFileName = "lempress-certbot"
)

// Authority is a provisioning.CertificateAuthority.
type Authority struct {
	runner  shell.Runner
	files   *shell.Files
	cronDir string
	staging bool
	now     func() time.Time
}

var _ provisioning.CertificateAuthority = (*Authority)(nil)

// New creates an Authority that writes its renewal job into cronDir.
// Staging requests certificates from the Let's Encrypt staging environment.
func New(r shell.Runner, cronDir string, staging bool) *Authority {
	return &Authority{runner: r, files: shell.NewFiles(r), cronDir: cronDir, staging: staging, now: time.Now}
}

// Issue obtains a certificate for domains and installs it into the nginx
// site. An existing certificate that is not due for renewal is reinstalled
// rather than reissued.
func (a *Authority) Issue(ctx context.Context, domains []string, email string) error {
	if len(domains) == 0 {
		return fmt.Errorf("no domains to certify")
	}
	args := []string{
		"--nginx", "--non-interactive", "--agree-tos",
		"--keep-until-expiring", "--redirect",
		"--email", email,
		"--cert-name", domains[0],
	}
	if a.staging {
		args = append(args, "--staging")
	}
	for _, d := range domains {
		args = append(args, "-d", d)
	}
	if _, err := a.runner.Run(ctx, shell.Cmd("certbot", args...)); err != nil {
		return fmt.Errorf("failed to issue certificate for %s: %w", domains[0], err)
	}
	return nil
}

func (a *Authority) Paths(domain string) provisioning.CertificatePaths {
	dir := path.Join(liveDir, domain)
	return provisioning.CertificatePaths{
		FullChain:  path.Join(dir, "fullchain.pem"),
		PrivateKey: path.Join(dir, "privkey.pem"),
	}
}

// CronPath is where the renewal job is written.
func (a *Authority) CronPath() string {
	return path.Join(a.cronDir, cronFileName)
}

// ScheduleAutoRenewal writes the renewal cron job and returns when it first runs.
func (a *Authority) ScheduleAutoRenewal(ctx context.Context, schedule string) (time.Time, error) {
	next, err := NextRun(schedule, a.now())
	if err != nil {
		return time.Time{}, err
	}
	job, err := templates.Render(templates.CertbotRenewal, struct{ Schedule string }{schedule})
	if err != nil {
		return time.Time{}, err
	}
	if err := a.files.WriteFile(ctx, a.CronPath(), job, "0644"); err != nil {
		return time.Time{}, err
	}
	return next, nil
}

// NextRun returns the first activation of a standard five-field cron
// schedule after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	sched, err := config.ParseCronSchedule(schedule)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid renewal schedule %q: %w", schedule, err)
	}
	return sched.Next(from), nil
}
