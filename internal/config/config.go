package config

// Config is the operator-facing provisioning configuration. Every field has
// a default, so an absent config file is valid.
type Config struct {
	Target        TargetConfig        `yaml:"target"`
	OS            OSConfig            `yaml:"os"`
	Preconditions PreconditionsConfig `yaml:"preconditions"`
	Paths         PathsConfig         `yaml:"paths"`
	PHP           PHPConfig           `yaml:"php"`
	Packages      PackagesConfig      `yaml:"packages"`
	Database      DatabaseConfig      `yaml:"database"`
	CMS           CMSConfig           `yaml:"cms"`
	TLS           TLSConfig           `yaml:"tls"`
	Firewall      FirewallConfig      `yaml:"firewall"`
	Fail2ban      Fail2banConfig      `yaml:"fail2ban"`
	Panel         PanelConfig         `yaml:"panel"`
	DNS           DNSConfig           `yaml:"dns"`
	Archive       ArchiveConfig       `yaml:"archive"`
	Report        ReportConfig        `yaml:"report"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// TargetConfig selects the host to provision. An empty Host means the local machine.
type TargetConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	PrivateKeyPath string `yaml:"private_key_path"`
	// KnownHostsPath enables host key verification when set.
	KnownHostsPath string `yaml:"known_hosts_path"`
}

// IsRemote reports whether commands run over SSH.
func (t TargetConfig) IsRemote() bool {
	return t.Host != ""
}

// OSConfig names the only supported operating system release.
type OSConfig struct {
	ID      string `yaml:"id"`
	Version string `yaml:"version"`
}

type PreconditionsConfig struct {
	MinFreeBytes uint64 `yaml:"min_free_bytes"`
	DiskPath     string `yaml:"disk_path"`
	NetworkHost  string `yaml:"network_host"`
}

type PathsConfig struct {
	WebRoot        string `yaml:"web_root"`
	NginxAvailable string `yaml:"nginx_available"`
	NginxEnabled   string `yaml:"nginx_enabled"`
	LogFile        string `yaml:"log_file"`
	Registry       string `yaml:"registry"`
	CronDir        string `yaml:"cron_dir"`
	Fail2banJail   string `yaml:"fail2ban_jail"`
}

type PHPConfig struct {
	Version string `yaml:"version"`
}

// FPMService is the systemd unit of the configured PHP-FPM.
func (p PHPConfig) FPMService() string {
	return "php" + p.Version + "-fpm"
}

// Socket is the PHP-FPM pool socket nginx proxies to.
func (p PHPConfig) Socket() string {
	return "/run/php/php" + p.Version + "-fpm.sock"
}

type PackagesConfig struct {
	Extra []string `yaml:"extra"`
}

// DatabaseConfig holds the administrative connection used to create
// per-site databases and users.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type CMSConfig struct {
	DownloadURL string `yaml:"download_url"`
	CLIInstall  bool   `yaml:"cli_install"`
	SiteTitle   string `yaml:"site_title"`
	AdminUser   string `yaml:"admin_user"`
	WPCLIURL    string `yaml:"wp_cli_url"`
	Owner       string `yaml:"owner"`
}

type TLSConfig struct {
	Enabled         *bool  `yaml:"enabled"`
	Staging         bool   `yaml:"staging"`
	WWWAlias        *bool  `yaml:"www_alias"`
	RenewalSchedule string `yaml:"renewal_schedule"`
}

func (t TLSConfig) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

func (t TLSConfig) WithWWW() bool {
	return t.WWWAlias == nil || *t.WWWAlias
}

type FirewallConfig struct {
	Rules []string `yaml:"rules"`
}

type Fail2banConfig struct {
	MaxRetry int    `yaml:"max_retry"`
	BanTime  string `yaml:"ban_time"`
	FindTime string `yaml:"find_time"`
}

type PanelConfig struct {
	Enabled            *bool  `yaml:"enabled"`
	Service            string `yaml:"service"`
	Port               int    `yaml:"port"`
	UseSiteCertificate bool   `yaml:"use_site_certificate"`
	CertDir            string `yaml:"cert_dir"`
}

func (p PanelConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// DNSConfig enables Cloudflare record management when a token is present.
type DNSConfig struct {
	Zone     string `yaml:"zone"`
	ServerIP string `yaml:"server_ip"`
	Token    string `yaml:"-"`
}

func (d DNSConfig) IsEnabled() bool {
	return d.Token != "" && d.Zone != ""
}

// ArchiveConfig enables run log upload to S3-compatible storage when a
// bucket is configured.
type ArchiveConfig struct {
	Bucket    string `yaml:"bucket"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

func (a ArchiveConfig) IsEnabled() bool {
	return a.Bucket != ""
}

type ReportConfig struct {
	PasswordPolicy PasswordPolicy `yaml:"password_policy"`
}

type MetricsConfig struct {
	// TextfilePath is written in node_exporter textfile format after each run.
	TextfilePath string `yaml:"textfile_path"`
}
