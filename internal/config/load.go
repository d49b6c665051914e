package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the config file at path. A missing file at the default path
// yields the defaults; a missing file anywhere else is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) && path == DefaultConfigPath {
		cfg = Default()
		cfg.applyEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
		return cfg, nil
	}
	return cfg, err
}

// LoadFile reads and parses the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, applies defaults and environment overrides, and
// validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.OS.ID, DefaultOSID)
	setDefault(&c.OS.Version, DefaultOSVersion)

	if c.Preconditions.MinFreeBytes == 0 {
		c.Preconditions.MinFreeBytes = MinFreeBytes
	}
	setDefault(&c.Preconditions.DiskPath, DefaultDiskPath)
	setDefault(&c.Preconditions.NetworkHost, DefaultNetworkHost)

	setDefault(&c.Paths.WebRoot, DefaultWebRoot)
	setDefault(&c.Paths.NginxAvailable, DefaultNginxAvailable)
	setDefault(&c.Paths.NginxEnabled, DefaultNginxEnabled)
	setDefault(&c.Paths.LogFile, DefaultLogFile)
	setDefault(&c.Paths.Registry, DefaultRegistry)
	setDefault(&c.Paths.CronDir, DefaultCronDir)
	setDefault(&c.Paths.Fail2banJail, DefaultFail2banJail)

	setDefault(&c.PHP.Version, DefaultPHPVersion)
	setDefault(&c.Database.DSN, DefaultDSN)

	setDefault(&c.CMS.DownloadURL, DefaultDownloadURL)
	setDefault(&c.CMS.WPCLIURL, DefaultWPCLIURL)
	setDefault(&c.CMS.Owner, DefaultWebOwner)
	setDefault(&c.CMS.SiteTitle, DefaultSiteTitle)
	setDefault(&c.CMS.AdminUser, DefaultAdminUser)

	setDefault(&c.TLS.RenewalSchedule, DefaultRenewalSchedule)

	if len(c.Firewall.Rules) == 0 {
		c.Firewall.Rules = append([]string(nil), DefaultFirewallRules...)
	}

	if c.Fail2ban.MaxRetry == 0 {
		c.Fail2ban.MaxRetry = DefaultMaxRetry
	}
	setDefault(&c.Fail2ban.BanTime, DefaultBanTime)
	setDefault(&c.Fail2ban.FindTime, DefaultFindTime)

	setDefault(&c.Panel.Service, DefaultPanelService)
	if c.Panel.Port == 0 {
		c.Panel.Port = DefaultPanelPort
	}
	setDefault(&c.Panel.CertDir, DefaultPanelCertDir)

	if c.Target.IsRemote() {
		if c.Target.Port == 0 {
			c.Target.Port = DefaultSSHPort
		}
		setDefault(&c.Target.User, DefaultSSHUser)
	}

	if c.Report.PasswordPolicy == "" {
		c.Report.PasswordPolicy = PasswordHidden
	}
}

func (c *Config) applyEnv() {
	c.DNS.Token = os.Getenv(EnvCloudflare)
	c.Archive.AccessKey = os.Getenv(EnvS3AccessKey)
	c.Archive.SecretKey = os.Getenv(EnvS3SecretKey)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
