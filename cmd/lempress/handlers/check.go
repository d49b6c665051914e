package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/lempress/internal/precheck"
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// Check runs the precondition battery against the configured target without
// changing anything, and prints one line per check.
func Check(ctx context.Context, configPath string) error {
	cfg, err := loadConfigFor(configPath)
	if err != nil {
		return err
	}
	timeouts := loadTimeouts()

	t, err := newTarget(cfg, timeouts)
	if err != nil {
		return err
	}
	defer func() { _ = t.Close() }()

	checker := precheck.NewChecker(newProbe(cfg, t), cfg, timeouts.Probe)
	results, runErr := checker.Run(ctx)
	if results != nil {
		if err := renderChecks(stdout, checker.Names(), results, isTerminal(stdout)); err != nil {
			return err
		}
	}
	return runErr
}

// renderChecks prints every check in order. Checks after the first failure
// did not run and are shown as skipped.
func renderChecks(w io.Writer, names []string, results *precheck.Results, styled bool) error {
	pass, fail, dim := fmt.Sprint, fmt.Sprint, fmt.Sprint
	if styled {
		pass = func(a ...any) string { return passStyle.Render(fmt.Sprint(a...)) }
		fail = func(a ...any) string { return failStyle.Render(fmt.Sprint(a...)) }
		dim = func(a ...any) string { return dimStyle.Render(fmt.Sprint(a...)) }
	}

	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}

	var b strings.Builder
	for i, name := range names {
		label := fmt.Sprintf("%-*s", width, name)
		if i >= len(results.Results) {
			fmt.Fprintf(&b, "  %s  %s  %s\n", dim("[--]"), label, dim("not run"))
			continue
		}
		r := results.Results[i]
		if r.Passed {
			fmt.Fprintf(&b, "  %s  %s  %s\n", pass("[OK]"), label, dim(r.Reason))
		} else {
			fmt.Fprintf(&b, "  %s  %s  %s\n", fail("[!!]"), label, r.Reason)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
