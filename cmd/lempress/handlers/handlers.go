// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/imamik/lempress/internal/config"
	"github.com/imamik/lempress/internal/config/wizard"
	"github.com/imamik/lempress/internal/platform/shell"
	"github.com/imamik/lempress/internal/precheck"
	"github.com/imamik/lempress/internal/provisioning"
	"github.com/imamik/lempress/internal/registry"
	"github.com/imamik/lempress/internal/runlog"
)

// ErrCleanInstallDeclined is returned when the operator does not confirm the
// destructive reset. Nothing has been changed when it is returned.
var ErrCleanInstallDeclined = errors.New("clean install declined, nothing was changed")

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig loads the configuration file, falling back to defaults.
	loadConfig = config.Load

	// loadTimeouts reads step and probe bounds from the environment.
	loadTimeouts = config.LoadTimeouts

	// openRunLog opens the append-only run log.
	openRunLog = func(path string, console io.Writer) (runLog, error) {
		return runlog.Open(path, console)
	}

	// openRegistry opens the site registry file.
	openRegistry = func(path string) siteRegistry {
		return registry.Open(path)
	}

	// newTarget connects a command runner to the configured host.
	newTarget = connectTarget

	// newProbe creates the precondition probe for the target.
	newProbe = func(cfg *config.Config, r shell.Runner) precheck.Probe {
		if cfg.Target.IsRemote() {
			return precheck.NewRemoteProbe(r)
		}
		return precheck.LocalProbe{}
	}

	// newServices wires every collaborator onto the target.
	newServices = buildServices

	// newPrompter returns the interactive prompter. Forms are used on a
	// terminal; piped input is read line by line from in.
	newPrompter = func(in io.Reader, out io.Writer) wizard.Prompter {
		if isTerminal(stdin) {
			return wizard.HuhPrompter{}
		}
		return wizard.NewLinePrompter(in, out)
	}

	// Standard streams (for testing injection).
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// runLog is the part of runlog.RunLog the handlers use.
type runLog interface {
	provisioning.RunLogSource
	Printf(format string, v ...interface{})
	Logger() *log.Logger
	Path() string
	Close() error
}

// siteRegistry is the file-backed registry as the handlers use it.
type siteRegistry interface {
	provisioning.SiteRegistry
	Lock(ctx context.Context) (func(), error)
	List() ([]registry.SiteRecord, error)
	Path() string
}

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// loadConfigFor resolves the config path from the flag or LEMPRESS_CONFIG.
func loadConfigFor(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
