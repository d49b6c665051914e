package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/lempress/cmd/lempress/handlers"
)

// Sites returns the command that lists registered sites.
func Sites() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sites",
		Short: "List provisioned sites",
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Sites(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: /etc/lempress/lempress.yaml)")

	return cmd
}
