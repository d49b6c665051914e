package naming

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// ErrInvalidDomain is returned when a domain cannot be normalized.
var ErrInvalidDomain = errors.New("invalid domain")

// maxIdentifier is the MySQL limit for user names.
const maxIdentifier = 32

// hashLen is the number of hex digits appended to a truncated identifier.
const hashLen = 6

var (
	asciiHost   = regexp.MustCompile(`^[a-z0-9.-]+$`)
	label       = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
	nonIdentity = regexp.MustCompile(`[^a-z0-9_]+`)
)

// Domain is a site domain in both its human-readable and its ASCII form.
type Domain struct {
	// Display is the form the operator typed, lowercased.
	Display string
	// ASCII is the Punycode form used for every path, identifier and request.
	ASCII string
}

func (d Domain) String() string {
	return d.ASCII
}

// IsInternational reports whether the display form differs from the ASCII form.
func (d Domain) IsInternational() bool {
	return d.Display != d.ASCII
}

// ParseDomain normalizes raw operator input into a Domain. Input containing
// characters outside the ASCII host set is converted to Punycode.
func ParseDomain(raw string) (Domain, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/"), ".")
	if s == "" {
		return Domain{}, fmt.Errorf("%w: empty", ErrInvalidDomain)
	}

	ascii := s
	if !asciiHost.MatchString(s) {
		converted, err := idna.Lookup.ToASCII(s)
		if err != nil {
			return Domain{}, fmt.Errorf("%w: %q: %v", ErrInvalidDomain, raw, err)
		}
		ascii = converted
	}

	if err := validateHost(ascii); err != nil {
		return Domain{}, fmt.Errorf("%w: %q: %v", ErrInvalidDomain, raw, err)
	}

	display := s
	if ascii != s {
		// Normalize the display form through the same profile so "ТЕСТ.site"
		// and "тест.site" resolve to one record.
		if u, err := idna.Lookup.ToUnicode(ascii); err == nil {
			display = u
		}
	}

	return Domain{Display: display, ASCII: ascii}, nil
}

// MustParseDomain is ParseDomain for constants in tests and defaults.
func MustParseDomain(raw string) Domain {
	d, err := ParseDomain(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func validateHost(host string) error {
	if len(host) > 253 {
		return errors.New("longer than 253 characters")
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return errors.New("must contain at least one dot")
	}
	for _, l := range labels {
		if !label.MatchString(l) {
			return fmt.Errorf("invalid label %q", l)
		}
	}
	return nil
}

// Naming functions for per-site resources. Every name is derived from the
// ASCII domain so reruns address the same resources.

func DocumentRoot(webRoot string, d Domain) string {
	return path.Join(webRoot, d.ASCII)
}

func VirtualHost(d Domain) string {
	return d.ASCII
}

func VirtualHostFile(dir string, d Domain) string {
	return path.Join(dir, VirtualHost(d)+".conf")
}

// Database returns the default database name for a domain, e.g. wp_example_com.
func Database(d Domain) string {
	return identifier("wp_", d)
}

// DatabaseUser returns the default database user for a domain.
func DatabaseUser(d Domain) string {
	return identifier("wpu_", d)
}

func AdminEmail(d Domain) string {
	return "admin@" + d.ASCII
}

func RunLogArchiveKey(prefix string, d Domain, stamp string) string {
	return path.Join(prefix, d.ASCII, stamp+".log")
}

// identifier derives a MySQL identifier from d. Names longer than the
// MySQL limit are cut and suffixed with a hash of the full domain, so two
// domains sharing a long prefix never map to the same identifier.
func identifier(prefix string, d Domain) string {
	id := nonIdentity.ReplaceAllString(strings.ReplaceAll(d.ASCII, "-", "_"), "_")
	id = prefix + strings.Trim(id, "_")
	if len(id) <= maxIdentifier {
		return id
	}
	sum := sha256.Sum256([]byte(d.ASCII))
	id = strings.TrimRight(id[:maxIdentifier-hashLen-1], "_")
	return id + "_" + hex.EncodeToString(sum[:])[:hashLen]
}
