package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/imamik/lempress/internal/config"
	"github.com/imamik/lempress/internal/config/wizard"
	"github.com/imamik/lempress/internal/metrics"
	"github.com/imamik/lempress/internal/precheck"
	"github.com/imamik/lempress/internal/provisioning"
	"github.com/imamik/lempress/internal/provisioning/plan"
	"github.com/imamik/lempress/internal/report"
	"github.com/imamik/lempress/internal/ui/tui"
	"github.com/imamik/lempress/internal/util/naming"
)

// ProvisionOptions carries the flags shared by install and add-site.
type ProvisionOptions struct {
	ConfigPath string
	Variant    provisioning.Variant

	// Answers preset from flags; empty fields are prompted for or defaulted.
	Answers wizard.Answers
	// PasswordStdin reads the database password from the first line of stdin.
	PasswordStdin bool

	Clean bool
	Yes   bool

	NonInteractive bool
	TUI            bool
	ShowPassword   bool
}

// Install provisions the full stack and the first site.
func Install(ctx context.Context, opts ProvisionOptions) error {
	opts.Variant = provisioning.VariantInstall
	return Provision(ctx, opts)
}

// AddSite provisions one more site on a host that already runs the stack.
func AddSite(ctx context.Context, opts ProvisionOptions) error {
	opts.Variant = provisioning.VariantAddSite
	opts.Clean = false
	return Provision(ctx, opts)
}

// Provision runs one provisioning invocation end to end:
//  1. Loads configuration and opens the append-only run log
//  2. Collects and validates the operator input
//  3. Runs the precondition checks against the target
//  4. Asks for confirmation before a clean install
//  5. Locks the site registry for the rest of the run
//  6. Runs the step list of the variant, halting on the first failure
//  7. Prints the summary after full success
//
// Nothing on the target is changed before step 6. Every error is written to
// the run log before it is returned.
func Provision(ctx context.Context, opts ProvisionOptions) (err error) {
	cfg, err := loadConfigFor(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.ShowPassword {
		cfg.Report.PasswordPolicy = config.PasswordPlain
	}
	timeouts := loadTimeouts()

	var console io.Writer = stdout
	if opts.TUI {
		console = nil
	}
	rl, err := openRunLog(cfg.Paths.LogFile, console)
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()
	defer func() {
		if err != nil {
			rl.Printf("ERROR: %v", err)
		}
	}()
	observer := provisioning.NewLogObserver(rl.Logger())

	in := bufio.NewReader(stdin)
	req, err := collectRequest(ctx, cfg, opts, in)
	if err != nil {
		return err
	}
	rl.Printf("Provisioning %s (%s) as %s", req.Domain.Display, req.Domain.ASCII, req.Variant)

	t, err := newTarget(cfg, timeouts)
	if err != nil {
		return err
	}
	defer func() { _ = t.Close() }()

	if err := runPreconditions(ctx, cfg, t, timeouts, rl); err != nil {
		return err
	}

	if req.CleanInstall {
		if err := confirmCleanInstall(ctx, opts, req, in); err != nil {
			return err
		}
		rl.Printf("Clean install of %s confirmed", req.Domain.ASCII)
	}

	reg := openRegistry(cfg.Paths.Registry)
	unlock, err := reg.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	svc, err := newServices(cfg, t, reg, timeouts)
	if err != nil {
		return err
	}

	pipeline, err := plan.For(cfg, req)
	if err != nil {
		return err
	}
	pctx := provisioning.NewContext(ctx, cfg, req, svc, observer)
	pctx.Timeouts = timeouts
	pctx.RunLog = rl

	result, err := runPipeline(pctx, pipeline, opts.TUI)
	recordMetrics(cfg, req, result, err, rl)
	if err != nil {
		return err
	}

	rl.Printf("Run log: %s", rl.Path())
	return report.Render(stdout, report.New(cfg, req, pctx.State), isTerminal(stdout))
}

// collectRequest resolves the operator input into an immutable Request.
func collectRequest(ctx context.Context, cfg *config.Config, opts ProvisionOptions, in *bufio.Reader) (provisioning.Request, error) {
	answers := opts.Answers
	if answers.DBPassword == "" {
		if opts.PasswordStdin {
			line, err := in.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return provisioning.Request{}, fmt.Errorf("failed to read password from stdin: %w", err)
			}
			answers.DBPassword = strings.TrimRight(line, "\r\n")
		} else {
			answers.DBPassword = os.Getenv(config.EnvDBPassword)
		}
	}

	collector := wizard.NewCollector(newPrompter(in, stderr), !opts.NonInteractive)
	res, err := collector.Collect(ctx, answers)
	if err != nil {
		return provisioning.Request{}, err
	}

	req := provisioning.Request{
		Variant:       opts.Variant,
		Domain:        res.Domain,
		WithWWW:       cfg.TLS.WithWWW(),
		DocumentRoot:  naming.DocumentRoot(cfg.Paths.WebRoot, res.Domain),
		DBName:        res.DBName,
		DBUser:        res.DBUser,
		DBPassword:    provisioning.Secret(res.DBPassword),
		AdminEmail:    res.AdminEmail,
		CleanInstall:  opts.Clean,
		SiteTitle:     cfg.CMS.SiteTitle,
		AdminUser:     cfg.CMS.AdminUser,
		AdminPassword: provisioning.Secret(os.Getenv(config.EnvAdminPassword)),
	}
	if err := req.Validate(); err != nil {
		return provisioning.Request{}, fmt.Errorf("invalid request: %w", err)
	}
	return req, nil
}

// runPreconditions runs the checker and logs every result.
func runPreconditions(ctx context.Context, cfg *config.Config, t *target, timeouts *config.Timeouts, rl runLog) error {
	checker := precheck.NewChecker(newProbe(cfg, t), cfg, timeouts.Probe)
	results, err := checker.Run(ctx)
	if results != nil {
		for _, r := range results.Results {
			status := "ok"
			if !r.Passed {
				status = "FAILED"
			}
			rl.Printf("[precheck] %s: %s (%s)", r.Check, status, r.Reason)
		}
	}
	return err
}

// confirmCleanInstall gates the destructive reset. Anything but an explicit
// yes returns ErrCleanInstallDeclined.
func confirmCleanInstall(ctx context.Context, opts ProvisionOptions, req provisioning.Request, in io.Reader) error {
	if opts.Yes {
		return nil
	}
	collector := wizard.NewCollector(newPrompter(in, stderr), !opts.NonInteractive)
	ok, err := collector.ConfirmCleanInstall(ctx, req.Domain)
	if err != nil {
		return fmt.Errorf("failed to confirm clean install: %w", err)
	}
	if !ok {
		return ErrCleanInstallDeclined
	}
	return nil
}

func runPipeline(pctx *provisioning.Context, pipeline *provisioning.Pipeline, useTUI bool) (*provisioning.Result, error) {
	if !useTUI {
		return pipeline.Run(pctx)
	}

	var result *provisioning.Result
	err := tui.RunPipelineTUI(
		pctx.Request.Domain.Display,
		string(pctx.Request.Variant),
		pipeline.Names(),
		pctx.Observer,
		func(observer provisioning.Observer) error {
			pctx.Observer = observer
			var runErr error
			result, runErr = pipeline.Run(pctx)
			return runErr
		},
	)
	return result, err
}

// recordMetrics writes the node_exporter textfile when configured. A failure
// to write metrics never fails the run.
func recordMetrics(cfg *config.Config, req provisioning.Request, result *provisioning.Result, runErr error, rl runLog) {
	if cfg.Metrics.TextfilePath == "" {
		return
	}
	rec := metrics.NewRecorder()
	rec.Record(req, result, runErr)
	if err := rec.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
		rl.Printf("WARNING: %v", err)
	}
}
