// Package report renders the summary printed after a fully successful run.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/lempress/internal/config"
	"github.com/imamik/lempress/internal/provisioning"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	labelStyle   = lipgloss.NewStyle().Foreground(colorDim)
	valueStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

const hiddenPassword = "(hidden, see wp-config.php)"

// Line is one labelled value of the summary.
type Line struct {
	Label string
	Value string
}

// Section groups related lines.
type Section struct {
	Title string
	Lines []Line
}

// Summary is what the reporter prints. Build it with New.
type Summary struct {
	Title    string
	Sections []Section
}

// New assembles the summary of a completed run. Host names are shown in
// their display form.
func New(cfg *config.Config, req provisioning.Request, state *provisioning.State) *Summary {
	scheme := "http"
	if cfg.TLS.IsEnabled() {
		scheme = "https"
	}

	site := Section{Title: "Site"}
	for _, host := range req.DisplayHostnames() {
		site.Lines = append(site.Lines, Line{"URL", scheme + "://" + host})
	}
	site.Lines = append(site.Lines,
		Line{"Admin", scheme + "://" + req.Domain.Display + "/wp-admin/"},
		Line{"Document root", req.DocumentRoot},
	)

	db := Section{Title: "Database", Lines: []Line{
		{"Name", req.DBName},
		{"User", req.DBUser},
		{"Password", Password(cfg.Report.PasswordPolicy, req.DBPassword)},
	}}

	s := &Summary{
		Title:    "lempress: " + req.Domain.Display + " is ready",
		Sections: []Section{site, db},
	}

	if state.PanelActive {
		s.Sections = append(s.Sections, Section{Title: "Panel", Lines: []Line{
			{"URL", fmt.Sprintf("https://%s:%d/", req.Domain.Display, state.PanelPort)},
			{"Port", fmt.Sprintf("%d", state.PanelPort)},
		}})
	}

	if state.Certificate.FullChain != "" {
		tls := Section{Title: "TLS", Lines: []Line{{"Certificate", state.Certificate.FullChain}}}
		if !state.NextRenewal.IsZero() {
			tls.Lines = append(tls.Lines, Line{"Next renewal check", state.NextRenewal.UTC().Format(time.RFC1123)})
		}
		s.Sections = append(s.Sections, tls)
	}

	var extra []Line
	if state.DNSRecord != "" {
		extra = append(extra, Line{"DNS", state.DNSRecord + " -> " + state.ServerIP})
	}
	if state.ArchiveKey != "" {
		extra = append(extra, Line{"Run log", state.ArchiveKey})
	}
	if len(state.Wiped) > 0 {
		extra = append(extra, Line{"Wiped", strings.Join(state.Wiped, ", ")})
	}
	if len(extra) > 0 {
		s.Sections = append(s.Sections, Section{Title: "Run", Lines: extra})
	}
	return s
}

// Password applies the display policy. Unknown policies hide the value.
func Password(policy config.PasswordPolicy, secret provisioning.Secret) string {
	switch policy {
	case config.PasswordPlain:
		return secret.Reveal()
	case config.PasswordMasked:
		return secret.String()
	default:
		return hiddenPassword
	}
}

// Render writes the summary, styled when styled is true.
func Render(w io.Writer, s *Summary, styled bool) error {
	title, section, label, value := plain, plain, plain, plain
	if styled {
		title, section, label, value = titleStyle.Render, sectionStyle.Render, labelStyle.Render, valueStyle.Render
	}

	width := 0
	for _, sec := range s.Sections {
		for _, l := range sec.Lines {
			width = max(width, len(l.Label))
		}
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(title("  " + s.Title))
	b.WriteString("\n")
	for _, sec := range s.Sections {
		b.WriteString("\n")
		b.WriteString(section("  " + sec.Title))
		b.WriteString("\n")
		for _, l := range sec.Lines {
			fmt.Fprintf(&b, "    %s  %s\n", label(fmt.Sprintf("%-*s", width, l.Label)), value(l.Value))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func plain(s ...string) string {
	return strings.Join(s, " ")
}
