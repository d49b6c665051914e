// Package precheck verifies that a host can be provisioned before anything
// on it is changed.
package precheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/lempress/internal/config"
)

// Sentinel causes, one per check.
var (
	ErrUnsupportedOS         = errors.New("unsupported operating system")
	ErrInsufficientDisk      = errors.New("insufficient free disk space")
	ErrNoNetwork             = errors.New("network unreachable")
	ErrInsufficientPrivilege = errors.New("insufficient privilege")
)

// OSInfo identifies an operating system release.
type OSInfo struct {
	ID      string
	Version string
}

func (o OSInfo) String() string {
	return o.ID + " " + o.Version
}

// Probe reads host facts.
type Probe interface {
	OSRelease(ctx context.Context) (OSInfo, error)
	FreeBytes(ctx context.Context, path string) (uint64, error)
	Reachable(ctx context.Context, hostport string) error
	EffectiveUID(ctx context.Context) (int, error)
}

// Result is the outcome of a single check.
type Result struct {
	Check  string
	Passed bool
	Reason string
	Err    error
}

// CheckError is returned when a check fails. It wraps one of the sentinel causes.
type CheckError struct {
	Check  string
	Reason string
	Err    error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("precondition %s failed: %s", e.Check, e.Reason)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// Results contains the outcome of every check that ran.
type Results struct {
	Results []Result
}

// Passed returns true if every check that ran passed.
func (r *Results) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Error returns the first failure as a *CheckError, or nil.
func (r *Results) Error() error {
	for _, res := range r.Results {
		if !res.Passed {
			return &CheckError{Check: res.Check, Reason: res.Reason, Err: res.Err}
		}
	}
	return nil
}

type check struct {
	name string
	run  func(ctx context.Context) (reason string, err error)
}

// Checker runs the fixed, ordered battery of preconditions.
type Checker struct {
	probe   Probe
	cfg     *config.Config
	timeout time.Duration
}

// NewChecker creates a Checker. A zero timeout bounds each probe at 10s.
func NewChecker(probe Probe, cfg *config.Config, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Checker{probe: probe, cfg: cfg, timeout: timeout}
}

// Names lists the checks in the order they run.
func (c *Checker) Names() []string {
	checks := c.checks()
	names := make([]string, len(checks))
	for i, ch := range checks {
		names[i] = ch.name
	}
	return names
}

// Run executes checks in order and stops at the first failure. No check is
// retried. The returned error is the failing *CheckError.
func (c *Checker) Run(ctx context.Context) (*Results, error) {
	results := &Results{}
	for _, ch := range c.checks() {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		reason, err := ch.run(checkCtx)
		cancel()

		if err != nil {
			results.Results = append(results.Results, Result{Check: ch.name, Reason: reason, Err: err})
			return results, results.Error()
		}
		results.Results = append(results.Results, Result{Check: ch.name, Passed: true, Reason: reason})
	}
	return results, nil
}

func (c *Checker) checks() []check {
	p := c.cfg.Preconditions
	return []check{
		{name: "os", run: c.checkOS},
		{name: "disk", run: func(ctx context.Context) (string, error) { return c.checkDisk(ctx, p.DiskPath, p.MinFreeBytes) }},
		{name: "network", run: func(ctx context.Context) (string, error) { return c.checkNetwork(ctx, p.NetworkHost) }},
		{name: "privilege", run: c.checkPrivilege},
	}
}

func (c *Checker) checkOS(ctx context.Context) (string, error) {
	want := OSInfo{ID: c.cfg.OS.ID, Version: c.cfg.OS.Version}
	got, err := c.probe.OSRelease(ctx)
	if err != nil {
		return fmt.Sprintf("cannot read OS release: %v", err), fmt.Errorf("%w: %w", ErrUnsupportedOS, err)
	}
	if got != want {
		return fmt.Sprintf("found %s, requires %s", got, want), ErrUnsupportedOS
	}
	return got.String(), nil
}

func (c *Checker) checkDisk(ctx context.Context, path string, min uint64) (string, error) {
	free, err := c.probe.FreeBytes(ctx, path)
	if err != nil {
		return fmt.Sprintf("cannot read free space on %s: %v", path, err), fmt.Errorf("%w: %w", ErrInsufficientDisk, err)
	}
	if free < min {
		return fmt.Sprintf("%s has %d KB free, requires %d KB", path, free/1024, min/1024), ErrInsufficientDisk
	}
	return fmt.Sprintf("%s has %d KB free", path, free/1024), nil
}

func (c *Checker) checkNetwork(ctx context.Context, hostport string) (string, error) {
	if err := c.probe.Reachable(ctx, hostport); err != nil {
		return fmt.Sprintf("cannot reach %s: %v", hostport, err), fmt.Errorf("%w: %w", ErrNoNetwork, err)
	}
	return fmt.Sprintf("%s reachable", hostport), nil
}

func (c *Checker) checkPrivilege(ctx context.Context) (string, error) {
	uid, err := c.probe.EffectiveUID(ctx)
	if err != nil {
		return fmt.Sprintf("cannot read effective uid: %v", err), fmt.Errorf("%w: %w", ErrInsufficientPrivilege, err)
	}
	if uid != 0 {
		return fmt.Sprintf("running as uid %d, requires root", uid), ErrInsufficientPrivilege
	}
	return "running as root", nil
}
