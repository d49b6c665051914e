package wizard

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/imamik/lempress/internal/util/naming"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9_]{1,32}$`)

// Prompter asks the operator for one value at a time.
type Prompter interface {
	// Input returns the raw answer for field. An empty answer means "use the default".
	Input(ctx context.Context, field Field, def string) (string, error)
	// Confirm asks a yes/no question; anything but an explicit yes is false.
	Confirm(ctx context.Context, title, description string) (bool, error)
}

// Answers holds raw operator input. Empty fields are resolved by the Collector.
type Answers struct {
	Domain     string
	DBName     string
	DBUser     string
	DBPassword string
	AdminEmail string
}

// Result is the validated, normalized input.
type Result struct {
	Domain     naming.Domain
	DBName     string
	DBUser     string
	DBPassword string
	AdminEmail string
}

// Field describes one collected value.
type Field struct {
	Key         string
	Title       string
	Description string
	Secret      bool

	get      func(*Answers) *string
	fallback func(Result) string
	missing  error
	validate func(string) error
}

// Fields returns the collected fields in prompt order. Defaults of later
// fields derive from the normalized domain.
func Fields() []Field {
	return []Field{
		{
			Key:         "domain",
			Title:       "Domain",
			Description: "Site domain, international names are converted to Punycode",
			get:         func(a *Answers) *string { return &a.Domain },
			missing:     ErrDomainRequired,
			validate: func(s string) error {
				_, err := naming.ParseDomain(s)
				return err
			},
		},
		{
			Key:         "db_name",
			Title:       "Database name",
			Description: "Created if it does not exist",
			get:         func(a *Answers) *string { return &a.DBName },
			fallback:    func(r Result) string { return naming.Database(r.Domain) },
			validate:    validateIdentifier,
		},
		{
			Key:         "db_user",
			Title:       "Database user",
			Description: "Granted all privileges on the site database",
			get:         func(a *Answers) *string { return &a.DBUser },
			fallback:    func(r Result) string { return naming.DatabaseUser(r.Domain) },
			validate:    validateIdentifier,
		},
		{
			Key:         "db_password",
			Title:       "Database password",
			Description: "Required, there is no default",
			Secret:      true,
			get:         func(a *Answers) *string { return &a.DBPassword },
			missing:     ErrPasswordRequired,
			validate:    validatePassword,
		},
		{
			Key:         "admin_email",
			Title:       "Administrator email",
			Description: "Used for certificate registration and the CMS admin account",
			get:         func(a *Answers) *string { return &a.AdminEmail },
			fallback:    func(r Result) string { return naming.AdminEmail(r.Domain) },
			validate:    validateEmail,
		},
	}
}

// Collector resolves Answers into a Result, prompting for anything missing.
type Collector struct {
	prompter    Prompter
	interactive bool
}

// NewCollector returns a Collector. A nil prompter or interactive=false
// disables prompting: missing values take their defaults or fail.
func NewCollector(p Prompter, interactive bool) *Collector {
	return &Collector{prompter: p, interactive: interactive && p != nil}
}

// Collect resolves each field from preset, then the prompt, then the default.
// An empty required value fails immediately; nothing is re-prompted.
func (c *Collector) Collect(ctx context.Context, preset Answers) (*Result, error) {
	answers := preset
	result := &Result{}

	for _, f := range Fields() {
		value := normalize(*f.get(&answers), f.Secret)

		def := ""
		if f.fallback != nil {
			def = f.fallback(*result)
		}

		if value == "" && c.interactive {
			answer, err := c.prompter.Input(ctx, f, def)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Key, err)
			}
			value = normalize(answer, f.Secret)
		}

		if value == "" {
			value = def
		}
		if value == "" {
			if f.missing != nil {
				return nil, f.missing
			}
			return nil, fmt.Errorf("%s: %w", f.Key, ErrValueRequired)
		}

		if err := f.validate(value); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", f.Key, err)
		}
		*f.get(&answers) = value

		if f.Key == "domain" {
			d, _ := naming.ParseDomain(value)
			result.Domain = d
		}
	}

	result.DBName = answers.DBName
	result.DBUser = answers.DBUser
	result.DBPassword = answers.DBPassword
	result.AdminEmail = answers.AdminEmail
	return result, nil
}

// ConfirmCleanInstall asks before the destructive reset. Non-interactive
// collectors never confirm.
func (c *Collector) ConfirmCleanInstall(ctx context.Context, d naming.Domain) (bool, error) {
	if !c.interactive {
		return false, nil
	}
	return c.prompter.Confirm(ctx,
		fmt.Sprintf("Wipe existing installation of %s?", d.Display),
		"Deletes the web root, the nginx site configuration, the database and its user. This cannot be undone.")
}

// normalize trims input. Secrets keep inner and edge spaces unless they are
// blank altogether.
func normalize(s string, secret bool) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if secret {
		return strings.TrimRight(s, "\r\n")
	}
	return strings.TrimSpace(s)
}

func validateIdentifier(s string) error {
	if !identifierRegex.MatchString(s) {
		return errIdentifierInvalid
	}
	return nil
}

func validateEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return errEmailInvalid
	}
	return nil
}

func validatePassword(s string) error {
	if strings.ContainsAny(s, "\r\n'\"\\") {
		return errPasswordInvalid
	}
	return nil
}
