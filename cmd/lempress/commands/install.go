package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/lempress/cmd/lempress/handlers"
)

// Install returns the command that provisions the full stack and the first site.
//
// Environment variables:
//
//	LEMPRESS_DB_PASSWORD: database password when --db-password-stdin is not set
//	LEMPRESS_ADMIN_PASSWORD: WordPress admin password for cms.cli_install
//	CLOUDFLARE_API_TOKEN: enables DNS records when dns.zone is set
func Install() *cobra.Command {
	var opts handlers.ProvisionOptions

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the web stack and the first site",
		Long: `Install nginx, MariaDB, PHP-FPM, WordPress, certificates, firewall,
fail2ban, ClamAV and the admin panel, then print the site summary.

Preconditions (OS release, disk space, network, root) are checked before
anything is changed. The run stops at the first failed step; rerunning is
safe because every step skips what already exists.

Examples:
  # Prompt for everything
  sudo lempress install

  # Scripted
  echo "$PASS" | sudo lempress install --domain example.com --db-password-stdin --non-interactive

  # Wipe the previous installation of the domain first
  sudo lempress install --domain example.com --clean`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Install(cmd.Context(), opts)
		},
	}

	bindInputFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "Remove the web root, nginx site, database and user of the domain before installing")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Confirm --clean without prompting")

	return cmd
}
