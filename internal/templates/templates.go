// Package templates renders the configuration files written to the target.
//
// Templates are embedded at build time and executed with text/template.
// Missing keys are errors, so a renamed field never produces a silently
// broken config.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"strings"
	"text/template"
)

//go:embed files
var filesFS embed.FS

// Template names.
const (
	NginxVirtualHost = "nginx/vhost.conf"
	Fail2banJail     = "fail2ban/jail.local"
	WordPressConfig  = "wordpress/wp-config.php"
	CertbotRenewal   = "certbot/renew.cron"
)

var funcs = template.FuncMap{
	"join": strings.Join,
	"php":  QuotePHP,
}

// QuotePHP quotes s as a single-quoted PHP string literal.
func QuotePHP(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

// Render executes the named template with data.
func Render(name string, data any) ([]byte, error) {
	filePath := path.Join("files", name+".tmpl")
	content, err := filesFS.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Names lists every embedded template.
func Names() []string {
	return []string{NginxVirtualHost, Fail2banJail, WordPressConfig, CertbotRenewal}
}
