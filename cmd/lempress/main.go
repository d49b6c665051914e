// Package main is the entry point for the lempress CLI.
//
// lempress provisions a single Ubuntu host with nginx, MariaDB, PHP-FPM,
// WordPress, Let's Encrypt certificates, ufw, fail2ban, ClamAV and the
// Cockpit panel, then prints how to reach the new site.
//
// Commands: install, add-site, check, sites.
//
// For detailed usage information, run:
//
//	lempress --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/lempress/cmd/lempress/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	commands.SetVersionInfo(version, commit, date)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
