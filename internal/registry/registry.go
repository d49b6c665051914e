package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrSiteExists is returned when a domain is already registered.
	ErrSiteExists = errors.New("site already registered")
	// ErrDatabaseInUse is returned when another site owns the database name.
	ErrDatabaseInUse = errors.New("database already used by another site")
	// ErrDatabaseUserInUse is returned when another site owns the database user.
	ErrDatabaseUserInUse = errors.New("database user already used by another site")
	// ErrResourceExists is returned when an unregistered site resource is already on disk.
	ErrResourceExists = errors.New("site resource already exists")
	// ErrLocked is returned when another run holds the registry lock.
	ErrLocked = errors.New("registry is locked by another run")
)

// SiteRecord is one provisioned site.
type SiteRecord struct {
	Domain       string    `yaml:"domain"`
	Display      string    `yaml:"display"`
	DocumentRoot string    `yaml:"document_root"`
	VirtualHost  string    `yaml:"virtual_host"`
	Database     string    `yaml:"database"`
	DBUser       string    `yaml:"db_user"`
	Host         string    `yaml:"host"`
	TLS          bool      `yaml:"tls"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// SameResources reports whether two records address the same on-host resources.
func (r SiteRecord) SameResources(other SiteRecord) bool {
	return r.Domain == other.Domain &&
		r.DocumentRoot == other.DocumentRoot &&
		r.VirtualHost == other.VirtualHost &&
		r.Database == other.Database &&
		r.DBUser == other.DBUser
}

type document struct {
	Version int          `yaml:"version"`
	Sites   []SiteRecord `yaml:"sites"`
}

// Registry is a YAML file of SiteRecords keyed by ASCII domain.
// Methods are safe for concurrent use within one process; Lock serializes
// separate processes.
type Registry struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// Open returns a registry backed by path. The file is created on first write.
func Open(path string) *Registry {
	return &Registry{path: path, now: time.Now}
}

// Path returns the registry file path.
func (r *Registry) Path() string {
	return r.path
}

// Lock takes the exclusive cross-process lock, waiting until ctx is done.
// The returned function releases it.
func (r *Registry) Lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}
	lockPath := r.path + ".lock"
	for {
		unlock, err := tryLock(lockPath)
		if err == nil {
			return unlock, nil
		}
		if !errors.Is(err, errWouldBlock) {
			return nil, fmt.Errorf("failed to lock %s: %w", lockPath, err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrLocked, lockPath, ctx.Err())
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// List returns all records sorted by domain.
func (r *Registry) List() ([]SiteRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	return doc.Sites, nil
}

// Lookup returns the record for an ASCII domain.
func (r *Registry) Lookup(domain string) (SiteRecord, bool, error) {
	return r.find(func(s SiteRecord) bool { return s.Domain == domain })
}

// FindByDatabase returns the record owning a database name.
func (r *Registry) FindByDatabase(name string) (SiteRecord, bool, error) {
	return r.find(func(s SiteRecord) bool { return s.Database == name })
}

// FindByDBUser returns the record owning a database user.
func (r *Registry) FindByDBUser(user string) (SiteRecord, bool, error) {
	return r.find(func(s SiteRecord) bool { return s.DBUser == user })
}

func (r *Registry) find(match func(SiteRecord) bool) (SiteRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return SiteRecord{}, false, err
	}
	for _, s := range doc.Sites {
		if match(s) {
			return s, true, nil
		}
	}
	return SiteRecord{}, false, nil
}

// Register inserts rec, or refreshes an existing record with the same
// resources. A record for the same domain with different resources, or a
// database or database user owned by another domain, is rejected.
func (r *Registry) Register(rec SiteRecord) error {
	if rec.Domain == "" {
		return errors.New("record domain is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}

	now := r.now().UTC()
	idx := -1
	for i, s := range doc.Sites {
		switch {
		case s.Domain == rec.Domain:
			if !s.SameResources(rec) {
				return fmt.Errorf("%w: %s", ErrSiteExists, rec.Domain)
			}
			idx = i
		case rec.Database != "" && s.Database == rec.Database:
			return fmt.Errorf("%w: %s is used by %s", ErrDatabaseInUse, rec.Database, s.Domain)
		case rec.DBUser != "" && s.DBUser == rec.DBUser:
			return fmt.Errorf("%w: %s is used by %s", ErrDatabaseUserInUse, rec.DBUser, s.Domain)
		}
	}

	if idx >= 0 {
		rec.CreatedAt = doc.Sites[idx].CreatedAt
		rec.UpdatedAt = now
		doc.Sites[idx] = rec
	} else {
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		doc.Sites = append(doc.Sites, rec)
	}
	return r.save(doc)
}

// Remove deletes the record for domain. Removing an unknown domain is a no-op.
func (r *Registry) Remove(domain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	kept := doc.Sites[:0]
	removed := false
	for _, s := range doc.Sites {
		if s.Domain == domain {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	if !removed {
		return nil
	}
	doc.Sites = kept
	return r.save(doc)
}

func (r *Registry) load() (*document, error) {
	// #nosec G304
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &document{Version: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", r.path, err)
	}
	sort.Slice(doc.Sites, func(i, j int) bool { return doc.Sites[i].Domain < doc.Sites[j].Domain })
	return &doc, nil
}

// save writes doc to path+".tmp", fsyncs it and renames it into place.
func (r *Registry) save(doc *document) error {
	doc.Version = 1
	sort.Slice(doc.Sites, func(i, j int) bool { return doc.Sites[i].Domain < doc.Sites[j].Domain })

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	tmp := r.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to sync registry: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace registry: %w", err)
	}
	return syncDir(dir)
}
