package testing

import (
	"github.com/imamik/lempress/internal/config"
	"github.com/imamik/lempress/internal/provisioning"
	"github.com/imamik/lempress/internal/util/naming"
)

// RequestBuilder provides a fluent interface for constructing test requests.
// Each method returns a new builder (immutable) for chaining.
type RequestBuilder struct {
	req provisioning.Request
}

// NewRequestBuilder creates a RequestBuilder for example.com with defaults
// matching config.Default().
func NewRequestBuilder() *RequestBuilder {
	return (&RequestBuilder{req: provisioning.Request{
		Variant:    provisioning.VariantInstall,
		WithWWW:    true,
		DBPassword: "s3cret",
		SiteTitle:  config.DefaultSiteTitle,
		AdminUser:  config.DefaultAdminUser,
	}}).WithDomain("example.com")
}

// WithDomain sets the domain and every name derived from it.
func (b *RequestBuilder) WithDomain(raw string) *RequestBuilder {
	nb := b.clone()
	d := naming.MustParseDomain(raw)
	nb.req.Domain = d
	nb.req.DocumentRoot = naming.DocumentRoot(config.DefaultWebRoot, d)
	nb.req.DBName = naming.Database(d)
	nb.req.DBUser = naming.DatabaseUser(d)
	nb.req.AdminEmail = naming.AdminEmail(d)
	return nb
}

func (b *RequestBuilder) WithVariant(v provisioning.Variant) *RequestBuilder {
	nb := b.clone()
	nb.req.Variant = v
	return nb
}

func (b *RequestBuilder) WithCleanInstall() *RequestBuilder {
	nb := b.clone()
	nb.req.CleanInstall = true
	return nb
}

func (b *RequestBuilder) WithoutWWW() *RequestBuilder {
	nb := b.clone()
	nb.req.WithWWW = false
	return nb
}

func (b *RequestBuilder) WithDatabase(name, user string) *RequestBuilder {
	nb := b.clone()
	nb.req.DBName = name
	nb.req.DBUser = user
	return nb
}

func (b *RequestBuilder) WithAdminPassword(p string) *RequestBuilder {
	nb := b.clone()
	nb.req.AdminPassword = provisioning.Secret(p)
	return nb
}

// Build returns the Request.
func (b *RequestBuilder) Build() provisioning.Request {
	return b.req
}

func (b *RequestBuilder) clone() *RequestBuilder {
	return &RequestBuilder{req: b.req}
}
