package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// goTestEvent is one line of `go test -json` (test2json) output.
type goTestEvent struct {
	Time    time.Time
	Action  string
	Package string
	Test    string
	Elapsed float64
	Output  string

	FailedBuild string
}

// test2json actions.
const (
	goActionPass   = "pass"
	goActionFail   = "fail"
	goActionSkip   = "skip"
	goActionOutput = "output"
)

const maxLineSize = 1 << 20

// Decoder replays a `go test -json` stream as suite events, one suite per
// package.
//
// Packages run concurrently under `go test ./...`, so events are buffered per
// package and replayed when the package reports its final action. Only
// top-level tests become events; subtest output is folded into the parent.
type Decoder struct {
	r     io.Reader
	risky time.Duration

	packages map[string]*goPackage
	order    []string
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithRiskyThreshold marks passing tests slower than d as risky. Zero
// disables the check.
func WithRiskyThreshold(d time.Duration) DecoderOption {
	return func(dec *Decoder) { dec.risky = d }
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		r:        r,
		packages: make(map[string]*goPackage),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

type goPackage struct {
	name        string
	tests       map[string]*goTest
	order       []string
	output      []string
	start       time.Time
	failedBuild bool
}

type goTest struct {
	name    string
	outcome string
	output  []string
	elapsed time.Duration
	time    time.Time
}

// Decode reads the stream to the end, sending events to h. Lines that are
// not test events are passed to h.Err. Packages still open at the end of the
// stream are replayed with their unfinished tests marked incomplete.
func (d *Decoder) Decode(ctx context.Context, h Handler, result *Result) error {
	scanner := bufio.NewScanner(d.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var ev goTestEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil || ev.Action == "" {
			if err := h.Err(line); err != nil {
				return err
			}

			continue
		}

		// Build output is keyed by ImportPath rather than Package.
		if ev.Package == "" {
			if out := strings.TrimRight(ev.Output, "\n"); out != "" {
				if err := h.Err(out); err != nil {
					return err
				}
			}

			continue
		}

		if err := d.handle(ctx, ev, h, result); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	for _, name := range append([]string(nil), d.order...) {
		if err := d.flush(ctx, name, "", 0, time.Time{}, h, result); err != nil {
			return err
		}
	}

	return nil
}

func (d *Decoder) pkg(name string, at time.Time) *goPackage {
	p, ok := d.packages[name]
	if !ok {
		p = &goPackage{name: name, tests: make(map[string]*goTest), start: at}
		d.packages[name] = p
		d.order = append(d.order, name)
	}

	return p
}

func (d *Decoder) handle(ctx context.Context, ev goTestEvent, h Handler, result *Result) error {
	p := d.pkg(ev.Package, ev.Time)
	if ev.FailedBuild != "" {
		p.failedBuild = true
	}

	if ev.Test == "" {
		switch ev.Action {
		case goActionOutput:
			p.output = append(p.output, ev.Output)
		case goActionPass, goActionFail, goActionSkip:
			return d.flush(ctx, ev.Package, ev.Action, seconds(ev.Elapsed), ev.Time, h, result)
		}

		return nil
	}

	name, sub := ev.Test, false
	if i := strings.IndexByte(name, '/'); i >= 0 {
		name, sub = name[:i], true
	}

	t, ok := p.tests[name]
	if !ok {
		t = &goTest{name: name, time: ev.Time}
		p.tests[name] = t
		p.order = append(p.order, name)
	}

	switch ev.Action {
	case goActionOutput:
		t.output = append(t.output, ev.Output)
	case goActionPass, goActionFail, goActionSkip:
		if !sub {
			t.outcome = ev.Action
			t.elapsed = seconds(ev.Elapsed)
			t.time = ev.Time
		}
	}

	return nil
}

// flush replays a buffered package and forgets it.
func (d *Decoder) flush(ctx context.Context, name, outcome string, elapsed time.Duration, at time.Time, h Handler, result *Result) error {
	p, ok := d.packages[name]
	if !ok {
		return nil
	}

	delete(d.packages, name)

	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}

	if at.IsZero() {
		at = p.start
	}

	var events []Event

	switch {
	case len(p.order) > 0:
		events = d.suiteEvents(p)
	case outcome == goActionFail:
		// The package failed before running any test: build failure, init
		// panic or TestMain exit.
		test := Test{Name: "build", Class: name}
		events = []Event{
			{Time: at, Action: ActionRun, Test: test},
			{Time: at, Action: ActionError, Test: test, Reason: packageReason(p)},
			{Time: at, Action: ActionEnd, Test: test},
		}
	case hasNoTestFiles(p.output):
		return nil
	}

	events = append([]Event{{Time: p.start, Action: ActionSuiteStart, Tests: countRuns(events)}}, events...)
	events = append(events, Event{Time: at, Action: ActionSuiteEnd, Elapsed: elapsed})

	for _, ev := range events {
		ev.Suite = name
		if err := h.Event(ctx, ev, result); err != nil {
			return err
		}
	}

	return nil
}

func (d *Decoder) suiteEvents(p *goPackage) []Event {
	events := make([]Event, 0, 3*len(p.order))

	for _, name := range p.order {
		t := p.tests[name]
		test := Test{Name: t.name, Class: p.name}

		events = append(events, Event{Time: t.time, Action: ActionRun, Test: test})

		if ev, ok := d.outcome(t); ok {
			ev.Test = test
			events = append(events, ev)
		}

		events = append(events, Event{Time: t.time, Action: ActionEnd, Test: test, Elapsed: t.elapsed})
	}

	return events
}

// outcome maps a finished test to its non-passing outcome event, if any.
func (d *Decoder) outcome(t *goTest) (Event, bool) {
	ev := Event{Time: t.time}

	switch t.outcome {
	case goActionPass:
		if d.risky <= 0 || t.elapsed < d.risky {
			return Event{}, false
		}

		ev.Action = ActionRisky
		ev.Reason = fmt.Sprintf("Took %s, longer than %s.", t.elapsed, d.risky)
	case goActionFail:
		if line, ok := panicLine(t.output); ok {
			ev.Action = ActionError
			ev.Reason = line
		} else {
			ev.Action = ActionFail
			ev.Reason = strings.Join(reasonLines(t.output), "\n")
		}
	case goActionSkip:
		ev.Action = ActionSkip
		if lines := reasonLines(t.output); len(lines) > 0 {
			ev.Reason = lines[len(lines)-1]
		}
	default:
		ev.Action = ActionIncomplete
		ev.Reason = "Test did not report an outcome."
	}

	return ev, true
}

func countRuns(events []Event) int {
	n := 0
	for _, ev := range events {
		if ev.Action == ActionRun {
			n++
		}
	}

	return n
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// frameworkPrefixes mark lines written by the test framework rather than the
// test itself.
var frameworkPrefixes = []string{"=== ", "--- ", "PASS", "FAIL", "ok  \t", "?   \t", "coverage:"}

// reasonLines returns the test's own output lines, trimmed.
func reasonLines(output []string) []string {
	var lines []string

	for _, chunk := range output {
		for _, line := range strings.Split(chunk, "\n") {
			if isFrameworkLine(line) {
				continue
			}

			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}

	return lines
}

func isFrameworkLine(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	for _, prefix := range frameworkPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}

	return false
}

func panicLine(output []string) (string, bool) {
	for _, chunk := range output {
		if i := strings.Index(chunk, "panic: "); i >= 0 {
			return strings.TrimSpace(strings.SplitN(chunk[i:], "\n", 2)[0]), true
		}
	}

	return "", false
}

func packageReason(p *goPackage) string {
	if p.failedBuild {
		return "Build failed."
	}

	if line, ok := panicLine(p.output); ok {
		return line
	}

	if lines := reasonLines(p.output); len(lines) > 0 {
		return strings.Join(lines, "\n")
	}

	return "Package failed without running any test."
}

func hasNoTestFiles(output []string) bool {
	for _, chunk := range output {
		if strings.Contains(chunk, "[no test files]") {
			return true
		}
	}

	return false
}
