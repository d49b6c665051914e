package provisioning

import (
	"context"
	"time"

	"github.com/imamik/lempress/internal/registry"
)

// Step defines one provisioning action.
type Step interface {
	// Name returns the stable "<group>.<action>" name of this step.
	Name() string

	// DependsOn names the steps that must have succeeded before this one runs.
	DependsOn() []string

	// Provision executes the step. It must be idempotent: rerunning it
	// against an already-provisioned host succeeds without changing it.
	Provision(ctx *Context) error
}

// Logger is the minimal logging surface steps use.
type Logger interface {
	Printf(format string, v ...interface{})
}

// PackageManager installs system packages.
type PackageManager interface {
	Refresh(ctx context.Context) error
	Install(ctx context.Context, packages ...string) error
}

// Database manages per-site databases and users.
type Database interface {
	EnsureDatabase(ctx context.Context, name string) error
	EnsureUser(ctx context.Context, user string, password Secret) error
	Grant(ctx context.Context, user, database string) error
	DatabaseExists(ctx context.Context, name string) (bool, error)
	UserExists(ctx context.Context, user string) (bool, error)
	// Available reports whether the database server accepts connections.
	// A server that is not installed or not running is not an error.
	Available(ctx context.Context) (bool, error)
	DropDatabase(ctx context.Context, name string) error
	DropUser(ctx context.Context, user string) error
}

// VirtualHost is the reverse proxy configuration of one site.
type VirtualHost struct {
	ID           string
	ServerNames  []string
	DocumentRoot string
	PHPSocket    string
}

// ReverseProxy manages nginx site configuration.
type ReverseProxy interface {
	// WriteVirtualHost renders and writes the site config, returning its path.
	WriteVirtualHost(ctx context.Context, vh VirtualHost) (string, error)
	EnableSite(ctx context.Context, id string) error
	DisableDefault(ctx context.Context) error
	ValidateConfig(ctx context.Context) error
	Reload(ctx context.Context) error
	SiteExists(ctx context.Context, id string) (bool, error)
	RemoveSite(ctx context.Context, id string) error
}

// CertificatePaths locate an issued certificate on the target.
type CertificatePaths struct {
	FullChain  string
	PrivateKey string
}

// CertificateAuthority issues and renews TLS certificates.
type CertificateAuthority interface {
	Issue(ctx context.Context, domains []string, email string) error
	Paths(domain string) CertificatePaths
	// ScheduleAutoRenewal installs the renewal job and returns its next run.
	ScheduleAutoRenewal(ctx context.Context, schedule string) (time.Time, error)
}

// Firewall manages host packet filtering.
type Firewall interface {
	Allow(ctx context.Context, rule string) error
	Enable(ctx context.Context) error
}

// JailConfig configures brute-force protection.
type JailConfig struct {
	Jails    []string
	MaxRetry int
	BanTime  string
	FindTime string
}

// IntrusionPrevention manages fail2ban.
type IntrusionPrevention interface {
	WriteJail(ctx context.Context, cfg JailConfig) error
	Restart(ctx context.Context) error
}

// Antivirus manages ClamAV.
type Antivirus interface {
	UpdateSignatures(ctx context.Context) error
	Start(ctx context.Context) error
}

// CMSConfig is what the CMS needs to reach its database.
type CMSConfig struct {
	DocumentRoot string
	DBName       string
	DBUser       string
	DBPassword   Secret
	DBHost       string
}

// CoreInstallOptions drives the optional command-line core install.
type CoreInstallOptions struct {
	DocumentRoot  string
	URL           string
	Title         string
	AdminUser     string
	AdminPassword Secret
	AdminEmail    string
}

// CMSInstaller deploys WordPress into a document root.
type CMSInstaller interface {
	Fetch(ctx context.Context, documentRoot string) error
	Configure(ctx context.Context, cfg CMSConfig) error
	SetPermissions(ctx context.Context, documentRoot string) error
	CoreInstall(ctx context.Context, opts CoreInstallOptions) error
}

// ServiceManager controls system services.
type ServiceManager interface {
	IsActive(ctx context.Context, unit string) (bool, error)
	IsEnabled(ctx context.Context, unit string) (bool, error)
	Start(ctx context.Context, unit string) error
	Enable(ctx context.Context, unit string) error
	Restart(ctx context.Context, unit string) error
	Reload(ctx context.Context, unit string) error
}

// AdminPanel manages the web administration panel.
type AdminPanel interface {
	IsActive(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
	Start(ctx context.Context) error
	Enable(ctx context.Context) error
	InstallTLSCert(ctx context.Context, cert CertificatePaths) error
	Port() int
}

// FileSystem inspects and removes paths on the target.
type FileSystem interface {
	Exists(ctx context.Context, path string) (bool, error)
	MkdirAll(ctx context.Context, path, owner string) error
	RemoveAll(ctx context.Context, path string) error
}

// DNSProvider manages DNS records.
type DNSProvider interface {
	UpsertRecord(ctx context.Context, zone, recordType, name, content string) error
}

// Archiver stores run artifacts off-host.
type Archiver interface {
	Upload(ctx context.Context, key string, data []byte) error
}

// SiteRegistry records provisioned sites.
type SiteRegistry interface {
	Lookup(domain string) (registry.SiteRecord, bool, error)
	FindByDatabase(name string) (registry.SiteRecord, bool, error)
	FindByDBUser(user string) (registry.SiteRecord, bool, error)
	Register(rec registry.SiteRecord) error
	Remove(domain string) error
}

// Services bundles every collaborator a run may use. Optional collaborators
// (DNS, Archiver) are nil when disabled.
type Services struct {
	Packages  PackageManager
	Database  Database
	Proxy     ReverseProxy
	CA        CertificateAuthority
	Firewall  Firewall
	Intrusion IntrusionPrevention
	Antivirus Antivirus
	CMS       CMSInstaller
	Systemd   ServiceManager
	Panel     AdminPanel
	Files     FileSystem
	DNS       DNSProvider
	Archiver  Archiver
	Registry  SiteRegistry
}
