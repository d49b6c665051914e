package config

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/robfig/cron/v3"
)

var phpVersion = regexp.MustCompile(`^\d+\.\d+$`)

// cronFields parses exactly the five fields a cron.d line takes. Descriptors
// such as "@every 12h" are rejected.
var cronFields = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseCronSchedule parses a schedule that can be written verbatim into
// /etc/cron.d. Time zone prefixes are rejected because cron.d lines always
// run in the system time zone.
func ParseCronSchedule(spec string) (cron.Schedule, error) {
	s := strings.TrimSpace(spec)
	if strings.HasPrefix(s, "TZ=") || strings.HasPrefix(s, "CRON_TZ=") {
		return nil, fmt.Errorf("time zone prefixes are not supported in cron.d")
	}
	return cronFields.Parse(s)
}

// Validate checks the configuration for common errors and returns a detailed error if validation fails.
func (c *Config) Validate() error {
	if c.OS.ID == "" || c.OS.Version == "" {
		return fmt.Errorf("os.id and os.version are required")
	}

	if err := c.validatePreconditions(); err != nil {
		return fmt.Errorf("preconditions validation failed: %w", err)
	}

	if !phpVersion.MatchString(c.PHP.Version) {
		return fmt.Errorf("php.version %q must look like 8.1", c.PHP.Version)
	}

	if _, err := mysql.ParseDSN(c.Database.DSN); err != nil {
		return fmt.Errorf("database.dsn is invalid: %w", err)
	}

	if _, err := ParseCronSchedule(c.TLS.RenewalSchedule); err != nil {
		return fmt.Errorf("tls.renewal_schedule %q is invalid: %w", c.TLS.RenewalSchedule, err)
	}

	if err := c.validateTarget(); err != nil {
		return fmt.Errorf("target validation failed: %w", err)
	}

	if c.Panel.Port < 1 || c.Panel.Port > 65535 {
		return fmt.Errorf("panel.port %d is out of range", c.Panel.Port)
	}

	if c.Fail2ban.MaxRetry < 1 {
		return fmt.Errorf("fail2ban.max_retry must be positive")
	}

	if c.DNS.ServerIP != "" && net.ParseIP(c.DNS.ServerIP) == nil {
		return fmt.Errorf("dns.server_ip %q is not an IP address", c.DNS.ServerIP)
	}

	if c.Archive.IsEnabled() && c.Archive.Region == "" && c.Archive.Endpoint == "" {
		return fmt.Errorf("archive.region or archive.endpoint is required when archive.bucket is set")
	}

	switch c.Report.PasswordPolicy {
	case PasswordHidden, PasswordMasked, PasswordPlain:
	default:
		return fmt.Errorf("report.password_policy %q must be one of hidden, masked, plain", c.Report.PasswordPolicy)
	}

	return nil
}

func (c *Config) validatePreconditions() error {
	p := c.Preconditions
	if p.MinFreeBytes < MinFreeBytes {
		return fmt.Errorf("min_free_bytes %d is below the supported minimum of %d", p.MinFreeBytes, MinFreeBytes)
	}
	if p.DiskPath == "" {
		return fmt.Errorf("disk_path is required")
	}
	if _, _, err := net.SplitHostPort(p.NetworkHost); err != nil {
		return fmt.Errorf("network_host %q must be host:port: %w", p.NetworkHost, err)
	}
	return nil
}

func (c *Config) validateTarget() error {
	t := c.Target
	if !t.IsRemote() {
		if t.PrivateKeyPath != "" {
			return fmt.Errorf("private_key_path requires host")
		}
		return nil
	}
	if t.PrivateKeyPath == "" {
		return fmt.Errorf("private_key_path is required for remote targets")
	}
	if t.Port < 1 || t.Port > 65535 {
		return fmt.Errorf("port %d is out of range", t.Port)
	}
	return nil
}
