package provisioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/lempress/internal/util/naming"
)

func validRequest() Request {
	return Request{
		Variant:      VariantInstall,
		Domain:       naming.MustParseDomain("тест.site"),
		WithWWW:      true,
		DocumentRoot: "/var/www/xn--e1aybc.site",
		DBName:       "wp_xn_e1aybc_site",
		DBUser:       "wpu_xn_e1aybc_site",
		DBPassword:   "pw",
		AdminEmail:   "admin@xn--e1aybc.site",
	}
}

func TestRequest_Hostnames(t *testing.T) {
	t.Parallel()
	r := validRequest()
	assert.Equal(t, []string{"xn--e1aybc.site", "www.xn--e1aybc.site"}, r.Hostnames())
	assert.Equal(t, []string{"тест.site", "www.тест.site"}, r.DisplayHostnames())

	r.WithWWW = false
	assert.Equal(t, []string{"xn--e1aybc.site"}, r.Hostnames())
}

func TestRequest_Validate(t *testing.T) {
	t.Parallel()
	require.NoError(t, validRequest().Validate())

	r := validRequest()
	r.DBPassword = ""
	r.Variant = "upgrade"
	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database password is required")
	assert.Contains(t, err.Error(), `unknown variant "upgrade"`)

	r = validRequest()
	r.Variant = VariantAddSite
	r.CleanInstall = true
	assert.ErrorContains(t, r.Validate(), "clean install is not available")
}
