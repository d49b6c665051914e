// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the lempress CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lempress",
		Short:         "Provision nginx, MariaDB, PHP and WordPress on one host",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Provisioning commands
	cmd.AddCommand(Install())
	cmd.AddCommand(AddSite())

	// Inspection/utility commands
	cmd.AddCommand(Check())
	cmd.AddCommand(Sites())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
