package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/lempress/cmd/lempress/handlers"
)

// bindInputFlags registers the flags shared by install and add-site.
func bindInputFlags(cmd *cobra.Command, opts *handlers.ProvisionOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: /etc/lempress/lempress.yaml)")
	f.StringVar(&opts.Answers.Domain, "domain", "", "Site domain; international names are converted to Punycode")
	f.StringVar(&opts.Answers.DBName, "db-name", "", "Database name (default: derived from the domain)")
	f.StringVar(&opts.Answers.DBUser, "db-user", "", "Database user (default: derived from the domain)")
	f.StringVar(&opts.Answers.AdminEmail, "admin-email", "", "Administrator email (default: admin@<domain>)")
	f.BoolVar(&opts.PasswordStdin, "db-password-stdin", false, "Read the database password from the first line of stdin")
	f.BoolVar(&opts.NonInteractive, "non-interactive", false, "Never prompt; missing values take defaults or fail")
	f.BoolVar(&opts.TUI, "tui", false, "Show live step progress in a terminal UI")
	f.BoolVar(&opts.ShowPassword, "show-password", false, "Print the database password in the summary")
}
