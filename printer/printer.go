package printer

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/rlch/compatinfo/logging"
	"github.com/rlch/compatinfo/runner"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Channel is the logger name records are written under.
const Channel = "ResultPrinter"

// DefaultNotifyTitle heads every notification.
const DefaultNotifyTitle = "compatinfo reference"

// NotifierFactory builds an optional notifier. It may fail when the
// notification service is not available on this machine.
type NotifierFactory func() (logging.Notifier, error)

// Option configures a Printer.
type Option func(*config)

type config struct {
	out         io.Writer
	verbose     bool
	debug       bool
	colors      ColorMode
	naming      SuiteNaming
	logFile     string
	fileOpts    []logging.FileOption
	notifiers   []NotifierFactory
	notifyTitle string
	logger      *zap.Logger
	now         func() time.Time
	memory      func() uint64
	errOut      io.Writer
}

// WithOutput sets the console stream. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.out = w }
}

// WithVerbose shows suite results and warnings on the console.
func WithVerbose(verbose bool) Option {
	return func(c *config) { c.verbose = verbose }
}

// WithDebug shows every test on the console, with full labels.
func WithDebug(debug bool) Option {
	return func(c *config) { c.debug = debug }
}

// WithColors sets the color mode. Defaults to auto.
func WithColors(m ColorMode) Option {
	return func(c *config) { c.colors = m }
}

// WithSuiteNaming replaces the default reference suite naming.
func WithSuiteNaming(n SuiteNaming) Option {
	return func(c *config) { c.naming = n }
}

// WithLogFile also writes every record to a rotating log file.
func WithLogFile(path string, opts ...logging.FileOption) Option {
	return func(c *config) {
		c.logFile = path
		c.fileOpts = opts
	}
}

// WithNotifier adds an optional notification destination receiving the run
// footer. A factory that fails is skipped.
func WithNotifier(f NotifierFactory) Option {
	return func(c *config) { c.notifiers = append(c.notifiers, f) }
}

// WithNotifyTitle sets the notification title.
func WithNotifyTitle(title string) Option {
	return func(c *config) { c.notifyTitle = title }
}

// WithLogger sets the logger for diagnostics about the printer itself.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithClock sets the time source for records.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithMemory sets the source of the memory figure in the run header, in
// bytes. Defaults to the memory obtained from the OS by the runtime.
func WithMemory(memory func() uint64) Option {
	return func(c *config) { c.memory = memory }
}

// WithErrorOutput sets where destination write failures are reported.
func WithErrorOutput(w io.Writer) Option {
	return func(c *config) { c.errOut = w }
}

func runtimeMemory() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return ms.Sys
}

// Printer turns lifecycle callbacks into log records.
//
// It implements runner.Listener; Handler adapts it to a runner.Handler.
type Printer struct {
	logger *logging.Logger
	plain  *Formatter
	naming SuiteNaming
	memory func() uint64
}

var _ runner.Listener = (*Printer)(nil)

// New creates a Printer. The console accepts:
//
//   - debug: info and above
//   - verbose: notice and above
//   - otherwise: notice and error only
//
// The log file, when configured, receives every record.
func New(opts ...Option) (*Printer, error) {
	cfg := config{
		out:         os.Stdout,
		colors:      ColorAuto,
		naming:      DefaultSuiteNaming(),
		notifyTitle: DefaultNotifyTitle,
		logger:      zap.NewNop(),
		now:         time.Now,
		memory:      runtimeMemory,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	console := logging.NewConsole(cfg.out)

	// Suite names are shortened before the message is built from them.
	console.AddProcessor(
		cfg.naming.Processor(),
		NewFormatter(NewPalette(cfg.colors.Enabled(cfg.out)), cfg.debug).Format,
	)

	destinations := []zapcore.Core{console}

	if cfg.logFile != "" {
		file, err := logging.NewFile(cfg.logFile, cfg.fileOpts...)
		if err != nil {
			return nil, fmt.Errorf("printer: log file: %w", err)
		}

		destinations = append(destinations, file)
	}

	for _, factory := range cfg.notifiers {
		n, err := factory()
		if err != nil {
			cfg.logger.Debug("notifications disabled", zap.Error(err))
			continue
		}

		destinations = append(destinations,
			logging.NewNotification(n, cfg.notifyTitle, logging.NoticeLevel, IsFooter))
	}

	loggerOpts := []logging.LoggerOption{logging.WithClock(cfg.now)}
	if cfg.errOut != nil {
		loggerOpts = append(loggerOpts, logging.ErrorOutput(cfg.errOut))
	}

	p := &Printer{
		logger: logging.New(Channel, destinations, loggerOpts...),
		plain:  NewFormatter(NewPalette(false), cfg.debug),
		naming: cfg.naming,
		memory: cfg.memory,
	}

	switch {
	case cfg.debug:
		p.logger.SetAcceptedRange(logging.InfoLevel, logging.EmergencyLevel)
	case cfg.verbose:
		p.logger.SetAcceptedRange(logging.NoticeLevel, logging.EmergencyLevel)
	default:
		p.logger.SetAcceptedLevels(logging.NoticeLevel, logging.ErrorLevel)
	}

	return p, nil
}

// Logger returns the underlying logger.
func (p *Printer) Logger() *logging.Logger {
	return p.logger
}

// Handler adapts the printer to the runner's event stream.
func (p *Printer) Handler() *runner.ListenerHandler {
	return runner.NewListenerHandler(p, p.Output)
}

// emit logs a record for op with the plain message built from ctx.
func (p *Printer) emit(op Operation, ctx logging.Context) {
	ctx[KeyOperation] = string(op)
	p.logger.Log(op.Level(), p.plain.Message(op, ctx), ctx)
}

func testContext(suite string, test runner.Test) logging.Context {
	return logging.Context{
		KeySuiteName:       suite,
		KeyTestName:        test.Name,
		KeyTestClass:       test.Class,
		KeyTestDescription: test.LongLabel(),
	}
}

// StartTestSuite implements runner.Listener.
func (p *Printer) StartTestSuite(suite string, tests int) {
	p.emit(OpStartTestSuite, logging.Context{
		KeySuiteName: suite,
		KeyTestCount: tests,
	})
}

// EndTestSuite implements runner.Listener.
func (p *Printer) EndTestSuite(suite string, stats runner.SuiteStats) {
	ctx := countersOf(stats).context()
	ctx[KeySuiteName] = suite
	ctx[KeyStatus] = Status(stats.Failures, stats.Errors)

	p.emit(OpEndTestSuite, ctx)
}

// StartTest implements runner.Listener.
func (p *Printer) StartTest(suite string, test runner.Test) {
	p.emit(OpStartTest, testContext(suite, test))
}

// EndTest implements runner.Listener.
func (p *Printer) EndTest(suite string, test runner.Test, elapsed time.Duration) {
	ctx := testContext(suite, test)
	ctx[KeyTime] = elapsed.Seconds()

	p.emit(OpEndTest, ctx)
}

func (p *Printer) outcome(op Operation, suite string, test runner.Test, reason string) {
	ctx := testContext(suite, test)
	ctx[KeyReason] = reason

	p.emit(op, ctx)
}

// AddError implements runner.Listener.
func (p *Printer) AddError(suite string, test runner.Test, reason string) {
	p.outcome(OpAddError, suite, test, reason)
}

// AddFailure implements runner.Listener.
func (p *Printer) AddFailure(suite string, test runner.Test, reason string) {
	p.outcome(OpAddFailure, suite, test, reason)
}

// AddIncompleteTest implements runner.Listener.
func (p *Printer) AddIncompleteTest(suite string, test runner.Test, reason string) {
	p.outcome(OpAddIncompleteTest, suite, test, reason)
}

// AddRiskyTest implements runner.Listener.
func (p *Printer) AddRiskyTest(suite string, test runner.Test, reason string) {
	p.outcome(OpAddRiskyTest, suite, test, reason)
}

// AddSkippedTest implements runner.Listener.
func (p *Printer) AddSkippedTest(suite string, test runner.Test, reason string) {
	p.outcome(OpAddSkippedTest, suite, test, reason)
}

// Output logs a line of runner output that is not a test event, such as
// compiler errors. It is logged at notice with no operation, so the console
// shows it as is in every mode.
func (p *Printer) Output(text string) error {
	p.logger.Notice(text, nil)
	return nil
}

// Summary prints the run header and footer. It implements runner.Summarizer.
func (p *Printer) Summary(result *runner.Result) error {
	p.PrintHeader(result)
	p.PrintFooter(result)

	return nil
}

// PrintHeader logs run time, memory and the number of reference suites.
func (p *Printer) PrintHeader(result *runner.Result) {
	refs := p.naming.CountReferences(result.SuiteNames())
	msg := fmt.Sprintf("Time: %s, Memory: %.2f MB, References: %d\n",
		result.Elapsed().Round(time.Millisecond),
		float64(p.memory())/(1<<20),
		refs,
	)

	p.logger.Log(OpPrintHeader.Level(), msg, logging.Context{
		KeyOperation:  string(OpPrintHeader),
		KeyReferences: refs,
	})
}

// PrintFooter logs the overall result line.
func (p *Printer) PrintFooter(result *runner.Result) {
	c := countersOf(result.Totals())

	ctx := c.context()
	ctx[KeyOperation] = string(OpPrintFooter)
	ctx[KeyStatus] = c.Status()

	p.logger.Log(OpPrintFooter.Level(), c.ResultLine(), ctx)
}

func countersOf(s runner.SuiteStats) Counters {
	return Counters{
		Tests:      s.Tests,
		Assertions: s.Assertions,
		Failures:   s.Failures,
		Errors:     s.Errors,
		Incomplete: s.Incomplete,
		Skipped:    s.Skipped,
		Risky:      s.Risky,
	}
}

// Close flushes and closes every destination.
func (p *Printer) Close() error {
	return p.logger.Close()
}
