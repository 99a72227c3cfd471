package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/compatinfo"
	"github.com/rlch/compatinfo/logging"
	"github.com/rlch/compatinfo/printer"
	"github.com/rlch/compatinfo/runner"
)

// Report command errors.
var (
	ErrTooManyArgs   = errors.New("report reads at most one file")
	ErrUnknownFormat = errors.New("unknown output format")
)

// Output formats.
const (
	formatPrinter = "printer"
	formatDots    = "dots"
	formatJSON    = "json"
	formatLive    = "live"
)

func reportCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Report a `go test -json` run",
		ArgsUsage: "[file]",
		Description: "Reads test2json events from file, or stdin when no file is given,\n" +
			"and reports them one suite per package.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "show suite results and warnings",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "show every test with its full name",
			},
			&cli.StringFlag{
				Name:  "colors",
				Usage: "colorize output (never, auto, always)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "output format (printer, dots, json, live)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "output results as JSON (same as --format json)",
			},
			&cli.StringFlag{
				Name:    "log-dir",
				Usage:   "also write every record to <dir>/ResultPrinter.log",
				Sources: cli.EnvVars("COMPATINFO_LOG_DIR"),
			},
			&cli.StringFlag{
				Name:  "log-file-level",
				Usage: "lowest level written to the log file",
			},
			&cli.BoolFlag{
				Name:  "notify",
				Usage: "send the run result as a desktop notification",
			},
			&cli.StringFlag{
				Name:    "webhook",
				Usage:   "POST the run result to this URL",
				Sources: cli.EnvVars("COMPATINFO_WEBHOOK"),
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "write run metrics in the Prometheus text format",
			},
			&cli.IntFlag{
				Name:  "max-failures",
				Usage: "stop after this many failures and errors (0: no limit)",
			},
			&cli.DurationFlag{
				Name:  "risky",
				Usage: "mark passing tests slower than this as risky",
			},
		},
		Action: a.runReport,
	}
}

// reportOptions are the report settings after merging flags over config.
type reportOptions struct {
	verbose     bool
	debug       bool
	colors      printer.ColorMode
	format      string
	logFile     string
	logLevel    logging.Level
	notify      bool
	webhook     compatinfo.WebhookConfig
	metricsFile string
	maxFailures int
	risky       time.Duration
	suiteNaming printer.SuiteNaming
}

func (a *app) reportOptions(cmd *cli.Command) (reportOptions, error) {
	cfg := a.cfg.Report

	opts := reportOptions{
		verbose:     cmd.Bool("verbose") || cfg.Verbose,
		debug:       cmd.Bool("debug") || cfg.Debug,
		format:      firstNonEmpty(cmd.String("format"), cfg.Format, formatPrinter),
		notify:      cmd.Bool("notify") || cfg.Notify,
		webhook:     cfg.Webhook,
		metricsFile: firstNonEmpty(cmd.String("metrics-file"), cfg.MetricsFile),
		maxFailures: cfg.MaxFailures,
		logLevel:    logging.DebugLevel,
		suiteNaming: printer.DefaultSuiteNaming(),
	}

	if cmd.Bool("json") {
		opts.format = formatJSON
	}

	switch opts.format {
	case formatPrinter, formatDots, formatJSON, formatLive:
	default:
		return opts, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.format)
	}

	var err error

	opts.colors, err = printer.ParseColorMode(firstNonEmpty(cmd.String("colors"), cfg.Colors))
	if err != nil {
		return opts, err
	}

	if dir := firstNonEmpty(cmd.String("log-dir"), a.cfg.ResolveDir(cfg.LogDir)); dir != "" {
		opts.logFile = filepath.Join(dir, printer.Channel+".log")
	}

	if level := firstNonEmpty(cmd.String("log-file-level"), cfg.LogLevel); level != "" {
		opts.logLevel, err = logging.ParseLevel(level)
		if err != nil {
			return opts, err
		}
	}

	if url := cmd.String("webhook"); url != "" {
		opts.webhook = compatinfo.WebhookConfig{URL: url, Headers: cfg.Webhook.Headers}
	}

	if cmd.IsSet("max-failures") {
		opts.maxFailures = int(cmd.Int("max-failures"))
	}

	opts.risky = cmd.Duration("risky")
	if !cmd.IsSet("risky") && cfg.Risky != "" {
		opts.risky, err = time.ParseDuration(cfg.Risky)
		if err != nil {
			return opts, fmt.Errorf("%w: report.risky: %w", compatinfo.ErrInvalidConfig, err)
		}
	}

	if cfg.SuiteNaming.Prefix != "" {
		opts.suiteNaming.Prefix = cfg.SuiteNaming.Prefix
	}

	if cfg.SuiteNaming.Marker != "" {
		opts.suiteNaming.Marker = cfg.SuiteNaming.Marker
	}

	return opts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

func (a *app) runReport(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) > 1 {
		return ErrTooManyArgs
	}

	opts, err := a.reportOptions(cmd)
	if err != nil {
		return err
	}

	in := cmd.Root().Reader
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		in = f
	}

	stdout := cmd.Root().Writer
	stderr := cmd.Root().ErrWriter

	output, closeOutput, err := a.outputHandler(opts, stdout, stderr)
	if err != nil {
		return err
	}
	defer closeOutput()

	handlers := []runner.Handler{runner.NewResultHandler(), output}

	var metrics *runner.MetricsHandler
	if opts.metricsFile != "" {
		metrics = runner.NewMetricsHandler()
		handlers = append(handlers, metrics)
	}

	// Last, so the failure that stops the run is still reported.
	if opts.maxFailures > 0 {
		handlers = append(handlers, runner.NewStopOnFailHandler(opts.maxFailures))
	}

	handler := runner.NewMultiHandler(handlers...)
	result := runner.NewResult()

	decoder := runner.NewDecoder(in, runner.WithRiskyThreshold(opts.risky))

	err = decoder.Decode(ctx, handler, result)
	stopped := errors.Is(err, runner.ErrMaxFailures)

	if err != nil && !stopped {
		return err
	}

	result.Finish()

	if err := handler.Summary(result); err != nil {
		return err
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}

		a.logger.Debug("wrote metrics", zap.String("path", opts.metricsFile))
	}

	if stopped {
		a.logger.Info("run stopped", zap.Int("maxFailures", opts.maxFailures))
	}

	if stopped || !result.Ok() {
		return cli.Exit("", 1)
	}

	return nil
}

// outputHandler builds the handler rendering the run. The returned func
// releases what the handler holds open.
func (a *app) outputHandler(opts reportOptions, stdout, stderr io.Writer) (runner.Handler, func(), error) {
	if opts.format != formatPrinter {
		f, err := runner.NewFormatter(opts.format, stdout)
		if err != nil {
			return nil, nil, err
		}

		return runner.NewFormatHandler(f, stderr), func() {}, nil
	}

	printerOpts := []printer.Option{
		printer.WithOutput(stdout),
		printer.WithErrorOutput(stderr),
		printer.WithVerbose(opts.verbose),
		printer.WithDebug(opts.debug),
		printer.WithColors(opts.colors),
		printer.WithSuiteNaming(opts.suiteNaming),
		printer.WithLogger(a.logger.Named("printer")),
	}

	if opts.logFile != "" {
		printerOpts = append(printerOpts, printer.WithLogFile(opts.logFile,
			logging.FileLevel(opts.logLevel),
			logging.FileFields(zap.String("run", uuid.NewString())),
		))
	}

	if opts.notify {
		printerOpts = append(printerOpts, printer.WithNotifier(func() (logging.Notifier, error) {
			return logging.NewDesktop("")
		}))
	}

	if opts.webhook.URL != "" {
		webhook := opts.webhook
		printerOpts = append(printerOpts, printer.WithNotifier(func() (logging.Notifier, error) {
			return logging.NewWebhook(webhook.URL, logging.WithHeaders(webhook.Headers))
		}))
	}

	p, err := printer.New(printerOpts...)
	if err != nil {
		return nil, nil, err
	}

	closePrinter := func() {
		if err := p.Close(); err != nil {
			a.logger.Warn("closing printer", zap.Error(err))
		}
	}

	return p.Handler(), closePrinter, nil
}
