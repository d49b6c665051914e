package provisioning

import (
	"errors"
	"fmt"

	"github.com/imamik/lempress/internal/util/naming"
)

// Variant selects which step list a run uses.
type Variant string

const (
	VariantInstall Variant = "install"
	VariantAddSite Variant = "add-site"
)

const secretMask = "********"

// Secret is a string that never prints its value. Use Reveal at the point of use.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return secretMask
}

func (s Secret) GoString() string {
	return `provisioning.Secret("` + s.String() + `")`
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Reveal returns the cleartext value.
func (s Secret) Reveal() string {
	return string(s)
}

// Request is the validated input of one run. It is passed by value and never
// modified after construction.
type Request struct {
	Variant      Variant
	Domain       naming.Domain
	WithWWW      bool
	DocumentRoot string

	DBName     string
	DBUser     string
	DBPassword Secret
	AdminEmail string

	CleanInstall bool

	// CMS administrator account, used only by the CLI core install.
	SiteTitle     string
	AdminUser     string
	AdminPassword Secret
}

// Hostnames returns the ASCII names the site answers to.
func (r Request) Hostnames() []string {
	names := []string{r.Domain.ASCII}
	if r.WithWWW {
		names = append(names, "www."+r.Domain.ASCII)
	}
	return names
}

// DisplayHostnames returns the human-readable names for output.
func (r Request) DisplayHostnames() []string {
	names := []string{r.Domain.Display}
	if r.WithWWW {
		names = append(names, "www."+r.Domain.Display)
	}
	return names
}

// Validate checks that every field a step relies on is present.
func (r Request) Validate() error {
	var errs []error
	if r.Variant != VariantInstall && r.Variant != VariantAddSite {
		errs = append(errs, fmt.Errorf("unknown variant %q", r.Variant))
	}
	if r.Domain.ASCII == "" {
		errs = append(errs, errors.New("domain is required"))
	}
	if r.DocumentRoot == "" {
		errs = append(errs, errors.New("document root is required"))
	}
	if r.DBName == "" || r.DBUser == "" {
		errs = append(errs, errors.New("database name and user are required"))
	}
	if r.DBPassword == "" {
		errs = append(errs, errors.New("database password is required"))
	}
	if r.AdminEmail == "" {
		errs = append(errs, errors.New("admin email is required"))
	}
	if r.CleanInstall && r.Variant == VariantAddSite {
		errs = append(errs, errors.New("clean install is not available when adding a site"))
	}
	return errors.Join(errs...)
}
