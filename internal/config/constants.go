package config

// PasswordPolicy controls how the Reporter prints the database password.
type PasswordPolicy string

const (
	PasswordHidden PasswordPolicy = "hidden"
	PasswordMasked PasswordPolicy = "masked"
	PasswordPlain  PasswordPolicy = "plain"
)

// Defaults for a stock Ubuntu 22.04 host.
const (
	DefaultConfigPath = "/etc/lempress/lempress.yaml"

	DefaultOSID      = "ubuntu"
	DefaultOSVersion = "22.04"

	// MinFreeBytes is the smallest free-space threshold the checker accepts.
	MinFreeBytes uint64 = 2_000_000 * 1024

	DefaultDiskPath    = "/"
	DefaultNetworkHost = "wordpress.org:443"

	DefaultWebRoot        = "/var/www"
	DefaultNginxAvailable = "/etc/nginx/sites-available"
	DefaultNginxEnabled   = "/etc/nginx/sites-enabled"
	DefaultLogFile        = "/var/log/lempress.log"
	DefaultRegistry       = "/var/lib/lempress/sites.yaml"
	DefaultCronDir        = "/etc/cron.d"
	DefaultFail2banJail   = "/etc/fail2ban/jail.d/lempress.local"

	DefaultPHPVersion  = "8.1"
	DefaultDSN         = "root@unix(/run/mysqld/mysqld.sock)/"
	DefaultDownloadURL = "https://wordpress.org/latest.tar.gz"
	DefaultWPCLIURL    = "https://raw.githubusercontent.com/wp-cli/builds/gh-pages/phar/wp-cli.phar"
	DefaultWebOwner    = "www-data"
	DefaultSiteTitle   = "My WordPress Site"
	DefaultAdminUser   = "admin"

	DefaultRenewalSchedule = "17 3 * * *"

	DefaultMaxRetry = 5
	DefaultBanTime  = "1h"
	DefaultFindTime = "10m"

	DefaultPanelService = "cockpit.socket"
	DefaultPanelPort    = 9090
	DefaultPanelCertDir = "/etc/cockpit/ws-certs.d"

	DefaultSSHPort = 22
	DefaultSSHUser = "root"
)

// DefaultFirewallRules are the ufw application profiles opened on every host.
var DefaultFirewallRules = []string{"OpenSSH", "Nginx Full"}

// Environment variables carrying secrets. Secrets are never read from the
// config file.
const (
	EnvDBPassword    = "LEMPRESS_DB_PASSWORD"
	EnvAdminPassword = "LEMPRESS_ADMIN_PASSWORD"
	EnvCloudflare    = "CLOUDFLARE_API_TOKEN"
	EnvS3AccessKey   = "LEMPRESS_S3_ACCESS_KEY"
	EnvS3SecretKey   = "LEMPRESS_S3_SECRET_KEY"
	EnvConfigPath    = "LEMPRESS_CONFIG"
)
