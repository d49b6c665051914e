package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/lempress/cmd/lempress/handlers"
)

// AddSite returns the command that adds one more site to a provisioned host.
func AddSite() *cobra.Command {
	var opts handlers.ProvisionOptions

	cmd := &cobra.Command{
		Use:   "add-site",
		Short: "Add another site to a provisioned host",
		Long: `Create the database, nginx virtual host, WordPress files and certificate
of one more site. The domain must not be registered yet, and its web root,
nginx site file and database must not exist. Existing sites are never
touched.

Examples:
  sudo lempress add-site --domain shop.example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.AddSite(cmd.Context(), opts)
		},
	}

	bindInputFlags(cmd, &opts)

	return cmd
}
