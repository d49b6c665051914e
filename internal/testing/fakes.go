package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/imamik/lempress/internal/provisioning"
	"github.com/imamik/lempress/internal/registry"
)

// RenewalTime is the next renewal the fake certificate authority reports.
var RenewalTime = time.Date(2026, 10, 15, 3, 17, 0, 0, time.UTC)

// FakeServices provides recording fakes for every collaborator interface.
// All fakes append to one call log so tests can assert global ordering and
// the absence of calls.
type FakeServices struct {
	mu       sync.Mutex
	calls    []string
	errors   map[string]error
	existing map[string]bool

	Registry *FakeRegistry
	// DNSEnabled and ArchiveEnabled control whether the optional collaborators are wired.
	DNSEnabled     bool
	ArchiveEnabled bool
	Uploaded       map[string][]byte
	PanelPort      int
}

func NewFakeServices() *FakeServices {
	f := &FakeServices{
		errors:    make(map[string]error),
		existing:  make(map[string]bool),
		Uploaded:  make(map[string][]byte),
		PanelPort: 9090,
	}
	f.Registry = &FakeRegistry{parent: f, records: make(map[string]registry.SiteRecord)}
	return f
}

// FailOn makes the named call (e.g. "proxy.ValidateConfig") return err.
func (f *FakeServices) FailOn(call string, err error) *FakeServices {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[call] = err
	return f
}

// SetExisting marks a path, "db:<name>", "user:<name>" or "site:<id>" as
// already present. "db-server:down" makes the database server unavailable.
func (f *FakeServices) SetExisting(key string, exists bool) *FakeServices {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existing[key] = exists
	return f
}

// Calls returns the recorded calls as "<collaborator>.<Method> <detail>".
func (f *FakeServices) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Index returns the position of the first call starting with prefix, or -1.
func (f *FakeServices) Index(prefix string) int {
	for i, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			return i
		}
	}
	return -1
}

// Called reports whether any call starts with prefix.
func (f *FakeServices) Called(prefix string) bool {
	return f.Index(prefix) >= 0
}

// Reset clears the call log, keeping configured errors and state.
func (f *FakeServices) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeServices) call(name string, detail ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := name
	if len(detail) > 0 {
		entry += " " + strings.Join(detail, " ")
	}
	f.calls = append(f.calls, entry)
	return f.errors[name]
}

func (f *FakeServices) exists(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[key]
}

func (f *FakeServices) setExists(key string, v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existing[key] = v
}

// Services returns the collaborator bundle backed by these fakes.
func (f *FakeServices) Services() *provisioning.Services {
	svc := &provisioning.Services{
		Packages:  fakePackages{f},
		Database:  fakeDatabase{f},
		Proxy:     fakeProxy{f},
		CA:        fakeCA{f},
		Firewall:  fakeFirewall{f},
		Intrusion: fakeIntrusion{f},
		Antivirus: fakeAntivirus{f},
		CMS:       fakeCMS{f},
		Systemd:   fakeSystemd{f},
		Panel:     fakePanel{f},
		Files:     fakeFiles{f},
		Registry:  f.Registry,
	}
	if f.DNSEnabled {
		svc.DNS = fakeDNS{f}
	}
	if f.ArchiveEnabled {
		svc.Archiver = fakeArchiver{f}
	}
	return svc
}

type fakePackages struct{ f *FakeServices }

func (p fakePackages) Refresh(context.Context) error { return p.f.call("packages.Refresh") }
func (p fakePackages) Install(_ context.Context, pkgs ...string) error {
	return p.f.call("packages.Install", pkgs...)
}

type fakeDatabase struct{ f *FakeServices }

func (d fakeDatabase) EnsureDatabase(_ context.Context, name string) error {
	if err := d.f.call("database.EnsureDatabase", name); err != nil {
		return err
	}
	d.f.setExists("db:"+name, true)
	return nil
}
func (d fakeDatabase) EnsureUser(_ context.Context, user string, _ provisioning.Secret) error {
	if err := d.f.call("database.EnsureUser", user); err != nil {
		return err
	}
	d.f.setExists("user:"+user, true)
	return nil
}
func (d fakeDatabase) Grant(_ context.Context, user, db string) error {
	return d.f.call("database.Grant", user, db)
}
func (d fakeDatabase) DatabaseExists(_ context.Context, name string) (bool, error) {
	if err := d.f.call("database.DatabaseExists", name); err != nil {
		return false, err
	}
	return d.f.exists("db:" + name), nil
}
func (d fakeDatabase) UserExists(_ context.Context, user string) (bool, error) {
	if err := d.f.call("database.UserExists", user); err != nil {
		return false, err
	}
	return d.f.exists("user:" + user), nil
}
func (d fakeDatabase) Available(context.Context) (bool, error) {
	if err := d.f.call("database.Available"); err != nil {
		return false, err
	}
	return !d.f.exists("db-server:down"), nil
}
func (d fakeDatabase) DropDatabase(_ context.Context, name string) error {
	d.f.setExists("db:"+name, false)
	return d.f.call("database.DropDatabase", name)
}
func (d fakeDatabase) DropUser(_ context.Context, user string) error {
	d.f.setExists("user:"+user, false)
	return d.f.call("database.DropUser", user)
}

type fakeProxy struct{ f *FakeServices }

func (p fakeProxy) WriteVirtualHost(_ context.Context, vh provisioning.VirtualHost) (string, error) {
	if err := p.f.call("proxy.WriteVirtualHost", vh.ID); err != nil {
		return "", err
	}
	p.f.setExists("site:"+vh.ID, true)
	return "/etc/nginx/sites-available/" + vh.ID + ".conf", nil
}
func (p fakeProxy) EnableSite(_ context.Context, id string) error {
	return p.f.call("proxy.EnableSite", id)
}
func (p fakeProxy) DisableDefault(context.Context) error { return p.f.call("proxy.DisableDefault") }
func (p fakeProxy) ValidateConfig(context.Context) error { return p.f.call("proxy.ValidateConfig") }
func (p fakeProxy) Reload(context.Context) error         { return p.f.call("proxy.Reload") }
func (p fakeProxy) SiteExists(_ context.Context, id string) (bool, error) {
	if err := p.f.call("proxy.SiteExists", id); err != nil {
		return false, err
	}
	return p.f.exists("site:" + id), nil
}
func (p fakeProxy) RemoveSite(_ context.Context, id string) error {
	p.f.setExists("site:"+id, false)
	return p.f.call("proxy.RemoveSite", id)
}

type fakeCA struct{ f *FakeServices }

func (c fakeCA) Issue(_ context.Context, domains []string, email string) error {
	return c.f.call("ca.Issue", append(append([]string(nil), domains...), email)...)
}
func (c fakeCA) Paths(domain string) provisioning.CertificatePaths {
	return provisioning.CertificatePaths{
		FullChain:  "/etc/letsencrypt/live/" + domain + "/fullchain.pem",
		PrivateKey: "/etc/letsencrypt/live/" + domain + "/privkey.pem",
	}
}
func (c fakeCA) ScheduleAutoRenewal(_ context.Context, schedule string) (time.Time, error) {
	if err := c.f.call("ca.ScheduleAutoRenewal", schedule); err != nil {
		return time.Time{}, err
	}
	return RenewalTime, nil
}

type fakeFirewall struct{ f *FakeServices }

func (w fakeFirewall) Allow(_ context.Context, rule string) error {
	return w.f.call("firewall.Allow", rule)
}
func (w fakeFirewall) Enable(context.Context) error { return w.f.call("firewall.Enable") }

type fakeIntrusion struct{ f *FakeServices }

func (i fakeIntrusion) WriteJail(_ context.Context, cfg provisioning.JailConfig) error {
	return i.f.call("intrusion.WriteJail", cfg.Jails...)
}
func (i fakeIntrusion) Restart(context.Context) error { return i.f.call("intrusion.Restart") }

type fakeAntivirus struct{ f *FakeServices }

func (a fakeAntivirus) UpdateSignatures(context.Context) error {
	return a.f.call("antivirus.UpdateSignatures")
}
func (a fakeAntivirus) Start(context.Context) error { return a.f.call("antivirus.Start") }

type fakeCMS struct{ f *FakeServices }

func (c fakeCMS) Fetch(_ context.Context, root string) error { return c.f.call("cms.Fetch", root) }
func (c fakeCMS) Configure(_ context.Context, cfg provisioning.CMSConfig) error {
	return c.f.call("cms.Configure", cfg.DocumentRoot, cfg.DBName)
}
func (c fakeCMS) SetPermissions(_ context.Context, root string) error {
	return c.f.call("cms.SetPermissions", root)
}
func (c fakeCMS) CoreInstall(_ context.Context, opts provisioning.CoreInstallOptions) error {
	return c.f.call("cms.CoreInstall", opts.URL)
}

type fakeSystemd struct{ f *FakeServices }

func (s fakeSystemd) IsActive(_ context.Context, unit string) (bool, error) {
	if err := s.f.call("systemd.IsActive", unit); err != nil {
		return false, err
	}
	return !s.f.exists("inactive:" + unit), nil
}
func (s fakeSystemd) IsEnabled(_ context.Context, unit string) (bool, error) {
	if err := s.f.call("systemd.IsEnabled", unit); err != nil {
		return false, err
	}
	return !s.f.exists("disabled:" + unit), nil
}
func (s fakeSystemd) Start(_ context.Context, unit string) error {
	s.f.setExists("inactive:"+unit, false)
	return s.f.call("systemd.Start", unit)
}
func (s fakeSystemd) Enable(_ context.Context, unit string) error {
	s.f.setExists("disabled:"+unit, false)
	return s.f.call("systemd.Enable", unit)
}
func (s fakeSystemd) Restart(_ context.Context, unit string) error {
	return s.f.call("systemd.Restart", unit)
}

func (s fakeSystemd) Reload(_ context.Context, unit string) error {
	return s.f.call("systemd.Reload", unit)
}

type fakePanel struct{ f *FakeServices }

func (p fakePanel) IsActive(context.Context) (bool, error) {
	if err := p.f.call("panel.IsActive"); err != nil {
		return false, err
	}
	return !p.f.exists("inactive:panel"), nil
}
func (p fakePanel) IsEnabled(context.Context) (bool, error) {
	if err := p.f.call("panel.IsEnabled"); err != nil {
		return false, err
	}
	return !p.f.exists("disabled:panel"), nil
}
func (p fakePanel) Start(context.Context) error {
	p.f.setExists("inactive:panel", false)
	return p.f.call("panel.Start")
}
func (p fakePanel) Enable(context.Context) error {
	p.f.setExists("disabled:panel", false)
	return p.f.call("panel.Enable")
}
func (p fakePanel) InstallTLSCert(_ context.Context, cert provisioning.CertificatePaths) error {
	return p.f.call("panel.InstallTLSCert", cert.FullChain)
}
func (p fakePanel) Port() int { return p.f.PanelPort }

type fakeFiles struct{ f *FakeServices }

func (fs fakeFiles) Exists(_ context.Context, path string) (bool, error) {
	if err := fs.f.call("files.Exists", path); err != nil {
		return false, err
	}
	return fs.f.exists(path), nil
}
func (fs fakeFiles) MkdirAll(_ context.Context, path, owner string) error {
	return fs.f.call("files.MkdirAll", path)
}
func (fs fakeFiles) RemoveAll(_ context.Context, path string) error {
	fs.f.setExists(path, false)
	return fs.f.call("files.RemoveAll", path)
}

type fakeDNS struct{ f *FakeServices }

func (d fakeDNS) UpsertRecord(_ context.Context, zone, recordType, name, content string) error {
	return d.f.call("dns.UpsertRecord", zone, recordType, name, content)
}

type fakeArchiver struct{ f *FakeServices }

func (a fakeArchiver) Upload(_ context.Context, key string, data []byte) error {
	if err := a.f.call("archiver.Upload", key); err != nil {
		return err
	}
	a.f.mu.Lock()
	a.f.Uploaded[key] = data
	a.f.mu.Unlock()
	return nil
}

// FakeRegistry is an in-memory SiteRegistry with the same conflict rules as
// the file-backed registry.
type FakeRegistry struct {
	parent  *FakeServices
	mu      sync.Mutex
	records map[string]registry.SiteRecord
}

// Seed adds a record without recording a call.
func (r *FakeRegistry) Seed(rec registry.SiteRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Domain] = rec
}

// Records returns a copy of the stored records.
func (r *FakeRegistry) Records() map[string]registry.SiteRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]registry.SiteRecord, len(r.records))
	for k, v := range r.records {
		out[k] = v
	}
	return out
}

func (r *FakeRegistry) Lookup(domain string) (registry.SiteRecord, bool, error) {
	if err := r.parent.call("registry.Lookup", domain); err != nil {
		return registry.SiteRecord{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[domain]
	return rec, ok, nil
}

func (r *FakeRegistry) FindByDatabase(name string) (registry.SiteRecord, bool, error) {
	if err := r.parent.call("registry.FindByDatabase", name); err != nil {
		return registry.SiteRecord{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Database == name {
			return rec, true, nil
		}
	}
	return registry.SiteRecord{}, false, nil
}

func (r *FakeRegistry) FindByDBUser(user string) (registry.SiteRecord, bool, error) {
	if err := r.parent.call("registry.FindByDBUser", user); err != nil {
		return registry.SiteRecord{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.DBUser == user {
			return rec, true, nil
		}
	}
	return registry.SiteRecord{}, false, nil
}

func (r *FakeRegistry) Register(rec registry.SiteRecord) error {
	if err := r.parent.call("registry.Register", rec.Domain); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.records[rec.Domain]; ok && !existing.SameResources(rec) {
		return fmt.Errorf("%w: %s", registry.ErrSiteExists, rec.Domain)
	}
	for _, other := range r.records {
		if other.Domain == rec.Domain {
			continue
		}
		if rec.Database != "" && other.Database == rec.Database {
			return fmt.Errorf("%w: %s is used by %s", registry.ErrDatabaseInUse, rec.Database, other.Domain)
		}
		if rec.DBUser != "" && other.DBUser == rec.DBUser {
			return fmt.Errorf("%w: %s is used by %s", registry.ErrDatabaseUserInUse, rec.DBUser, other.Domain)
		}
	}
	r.records[rec.Domain] = rec
	return nil
}

func (r *FakeRegistry) Remove(domain string) error {
	if err := r.parent.call("registry.Remove", domain); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, domain)
	return nil
}
