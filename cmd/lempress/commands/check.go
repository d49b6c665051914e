package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/lempress/cmd/lempress/handlers"
)

// Check returns the command that runs the precondition checks only.
func Check() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the host can be provisioned",
		Long: `Run the precondition checks (OS release, free disk space, network,
root privilege) against the configured target without changing anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Check(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: /etc/lempress/lempress.yaml)")

	return cmd
}
