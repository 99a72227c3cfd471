package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Formatter renders test events and results.
type Formatter interface {
	Format(event Event, result *Result) error
	Summary(result *Result) error
}

// FormatHandler is a Handler that delegates to a Formatter.
type FormatHandler struct {
	formatter Formatter
	stderr    io.Writer
}

// NewFormatHandler creates a handler that formats events.
func NewFormatHandler(f Formatter, stderr io.Writer) *FormatHandler {
	return &FormatHandler{formatter: f, stderr: stderr}
}

// Event formats the event.
func (h *FormatHandler) Event(_ context.Context, event Event, result *Result) error {
	return h.formatter.Format(event, result)
}

// Err writes to stderr.
func (h *FormatHandler) Err(text string) error {
	_, err := h.stderr.Write([]byte(text + "\n"))

	return err
}

// Summary renders the final summary.
func (h *FormatHandler) Summary(result *Result) error {
	return h.formatter.Summary(result)
}

// -----------------------------------------------------------------------------
// Dots Formatter
// -----------------------------------------------------------------------------

// DotsFormatter is a minimal formatter that prints one character per test.
type DotsFormatter struct {
	w       io.Writer
	count   int
	pending bool
	mark    string
}

// NewDotsFormatter creates a dots formatter.
func NewDotsFormatter(w io.Writer) *DotsFormatter {
	return &DotsFormatter{w: w}
}

const lineWidth = 80

var dotMarks = map[Action]string{
	ActionFail:       "F",
	ActionError:      "E",
	ActionIncomplete: "I",
	ActionRisky:      "R",
	ActionSkip:       "S",
}

// Format prints a character when a test ends: "." for a pass, otherwise the
// mark of the first outcome reported for it.
func (d *DotsFormatter) Format(event Event, _ *Result) error {
	switch event.Action {
	case ActionRun:
		d.pending, d.mark = true, "."
		return nil
	case ActionEnd:
		if !d.pending {
			return nil
		}

		d.pending = false
	case ActionFail, ActionError, ActionIncomplete, ActionRisky, ActionSkip:
		if d.mark == "." {
			d.mark = dotMarks[event.Action]
		}

		return nil
	case ActionSuiteStart, ActionSuiteEnd:
		return nil
	}

	_, err := fmt.Fprint(d.w, d.mark)
	d.count++

	if d.count%lineWidth == 0 {
		_, _ = fmt.Fprintln(d.w)
	}

	return err
}

// Summary prints the final results.
func (d *DotsFormatter) Summary(result *Result) error {
	if d.count > 0 && d.count%lineWidth != 0 {
		_, _ = fmt.Fprintln(d.w)
	}

	_, _ = fmt.Fprintln(d.w)

	for _, s := range result.Suites() {
		if !s.Ok() {
			_, _ = fmt.Fprintf(d.w, "FAIL %s (%d failed, %d errors)\n", s.Name, s.Failures, s.Errors)
		}
	}

	status := "PASS"
	if !result.Ok() {
		status = "FAIL"
	}

	totals := result.Totals()

	_, err := fmt.Fprintf(d.w, "%s %d tests, %d failed, %d errors, %d skipped in %s\n",
		status,
		totals.Tests,
		totals.Failures,
		totals.Errors,
		totals.Skipped,
		totals.Elapsed.Round(time.Millisecond),
	)

	return err
}

// -----------------------------------------------------------------------------
// JSON Formatter
// -----------------------------------------------------------------------------

// JSONFormatter outputs newline-delimited JSON events.
type JSONFormatter struct {
	enc *json.Encoder
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{enc: json.NewEncoder(w)}
}

type jsonEvent struct {
	Time       string  `json:"time"`
	Action     string  `json:"action"`
	Suite      string  `json:"suite,omitempty"`
	Test       string  `json:"test,omitempty"`
	Class      string  `json:"class,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Elapsed    float64 `json:"elapsed,omitempty"`
	Tests      int     `json:"tests,omitempty"`
	Assertions int     `json:"assertions,omitempty"`
}

// Format outputs a JSON event.
func (j *JSONFormatter) Format(event Event, _ *Result) error {
	return j.enc.Encode(jsonEvent{
		Time:       event.Time.Format(time.RFC3339Nano),
		Action:     string(event.Action),
		Suite:      event.Suite,
		Test:       event.Test.Name,
		Class:      event.Test.Class,
		Reason:     event.Reason,
		Elapsed:    event.Elapsed.Seconds(),
		Tests:      event.Tests,
		Assertions: event.Assertions,
	})
}

type jsonSummary struct {
	Action     string  `json:"action"`
	Suites     int     `json:"suites"`
	Tests      int     `json:"tests"`
	Assertions int     `json:"assertions"`
	Failures   int     `json:"failures"`
	Errors     int     `json:"errors"`
	Incomplete int     `json:"incomplete"`
	Skipped    int     `json:"skipped"`
	Risky      int     `json:"risky"`
	Elapsed    float64 `json:"elapsed"`
	Ok         bool    `json:"ok"`
}

// Summary outputs the final JSON summary.
func (j *JSONFormatter) Summary(result *Result) error {
	totals := result.Totals()

	return j.enc.Encode(jsonSummary{
		Action:     "summary",
		Suites:     len(result.SuiteNames()),
		Tests:      totals.Tests,
		Assertions: totals.Assertions,
		Failures:   totals.Failures,
		Errors:     totals.Errors,
		Incomplete: totals.Incomplete,
		Skipped:    totals.Skipped,
		Risky:      totals.Risky,
		Elapsed:    totals.Elapsed.Seconds(),
		Ok:         result.Ok(),
	})
}

// NewFormatter creates a formatter by name: "json", "dots" or "live".
func NewFormatter(name string, w io.Writer) (Formatter, error) {
	switch name {
	case "json":
		return NewJSONFormatter(w), nil
	case "dots":
		return NewDotsFormatter(w), nil
	case "live":
		return NewLiveFormatter(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}
