package handlers

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/imamik/lempress/internal/registry"
)

// Sites lists the sites recorded in the registry.
func Sites(configPath string) error {
	cfg, err := loadConfigFor(configPath)
	if err != nil {
		return err
	}

	reg := openRegistry(cfg.Paths.Registry)
	records, err := reg.List()
	if err != nil {
		return fmt.Errorf("failed to read registry: %w", err)
	}
	if len(records) == 0 {
		_, err := fmt.Fprintf(stdout, "No sites recorded in %s\n", reg.Path())
		return err
	}
	return writeSites(stdout, records)
}

func writeSites(w io.Writer, records []registry.SiteRecord) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("DOMAIN", "DISPLAY", "DATABASE", "USER", "ROOT", "HOST", "TLS", "UPDATED")
	for _, r := range records {
		tls := "no"
		if r.TLS {
			tls = "yes"
		}
		t.Row(r.Domain, r.Display, r.Database, r.DBUser, r.DocumentRoot, r.Host, tls,
			r.UpdatedAt.UTC().Format(time.DateOnly))
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}
