package runner

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func feed(t *testing.T, f Formatter, result *Result, events ...Event) {
	t.Helper()

	for _, ev := range events {
		if result != nil {
			result.Add(ev)
		}

		if err := f.Format(ev, result); err != nil {
			t.Fatalf("Format(%s): %v", ev.Action, err)
		}
	}
}

func testEvents(suite, name string, outcome Action) []Event {
	test := Test{Name: name, Class: suite}
	events := []Event{{Action: ActionRun, Suite: suite, Test: test}}

	if outcome != "" {
		events = append(events, Event{Action: outcome, Suite: suite, Test: test, Reason: "because"})
	}

	return append(events, Event{Action: ActionEnd, Suite: suite, Test: test})
}

func TestDotsFormatter_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewDotsFormatter(&buf)

	feed(t, f, nil, Event{Action: ActionSuiteStart, Suite: "s", Tests: 6})

	if buf.Len() != 0 {
		t.Error("suite events should produce no output")
	}

	feed(t, f, nil, testEvents("s", "a", "")...)
	feed(t, f, nil, testEvents("s", "b", ActionFail)...)
	feed(t, f, nil, testEvents("s", "c", ActionError)...)
	feed(t, f, nil, testEvents("s", "d", ActionIncomplete)...)
	feed(t, f, nil, testEvents("s", "e", ActionRisky)...)
	feed(t, f, nil, testEvents("s", "f", ActionSkip)...)

	if got := buf.String(); got != ".FEIRS" {
		t.Errorf("got %q, want %q", got, ".FEIRS")
	}
}

func TestDotsFormatter_Wraps(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewDotsFormatter(&buf)

	for range lineWidth + 1 {
		feed(t, f, nil, testEvents("s", "t", "")...)
	}

	want := strings.Repeat(".", lineWidth) + "\n."
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDotsFormatter_Summary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewDotsFormatter(&buf)
	result := NewResult()

	feed(t, f, result, Event{Action: ActionSuiteStart, Suite: "pkg/a", Tests: 2})
	feed(t, f, result, testEvents("pkg/a", "Test1", "")...)
	feed(t, f, result, testEvents("pkg/a", "Test2", ActionFail)...)
	feed(t, f, result, Event{Action: ActionSuiteEnd, Suite: "pkg/a"})
	result.Finish()

	if err := f.Summary(result); err != nil {
		t.Fatal(err)
	}

	got := buf.String()

	if !strings.Contains(got, "FAIL pkg/a (1 failed, 0 errors)") {
		t.Errorf("missing failing suite in:\n%s", got)
	}

	if !strings.Contains(got, "FAIL 2 tests, 1 failed, 0 errors, 0 skipped") {
		t.Errorf("missing summary counts in:\n%s", got)
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewJSONFormatter(&buf)

	fixedTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	feed(t, f, nil, Event{
		Time:    fixedTime,
		Action:  ActionFail,
		Suite:   "github.com/x/y",
		Test:    Test{Name: "TestParse", Class: "github.com/x/y"},
		Reason:  "want 1, got 2",
		Elapsed: 50 * time.Millisecond,
	})

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if got["action"] != "failed" {
		t.Errorf("action = %v, want failed", got["action"])
	}

	if got["test"] != "TestParse" {
		t.Errorf("test = %v, want TestParse", got["test"])
	}

	if got["reason"] != "want 1, got 2" {
		t.Errorf("reason = %v, want %q", got["reason"], "want 1, got 2")
	}

	if got["time"] != "2024-01-15T10:30:00Z" {
		t.Errorf("time = %v", got["time"])
	}

	if _, ok := got["tests"]; ok {
		t.Error("zero test count should be omitted")
	}
}

func TestJSONFormatter_Summary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewJSONFormatter(&buf)

	result := NewResult()
	result.Add(Event{Action: ActionSuiteStart, Suite: "a", Tests: 2})
	result.Add(Event{Action: ActionFail, Suite: "a"})
	result.Add(Event{Action: ActionSuiteStart, Suite: "b", Tests: 1})
	result.Finish()

	if err := f.Summary(result); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if got["action"] != "summary" {
		t.Errorf("action = %v, want summary", got["action"])
	}

	if tests, ok := got["tests"].(float64); !ok || tests != 3 {
		t.Errorf("tests = %v, want 3", got["tests"])
	}

	if suites, ok := got["suites"].(float64); !ok || suites != 2 {
		t.Errorf("suites = %v, want 2", got["suites"])
	}

	if okVal, ok := got["ok"].(bool); !ok || okVal {
		t.Errorf("ok = %v, want false", got["ok"])
	}
}

func TestNewFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	if f, err := NewFormatter("json", &buf); err != nil {
		t.Errorf("json: %v", err)
	} else if _, ok := f.(*JSONFormatter); !ok {
		t.Errorf("json: got %T", f)
	}

	if f, err := NewFormatter("dots", &buf); err != nil {
		t.Errorf("dots: %v", err)
	} else if _, ok := f.(*DotsFormatter); !ok {
		t.Errorf("dots: got %T", f)
	}

	if f, err := NewFormatter("live", &buf); err != nil {
		t.Errorf("live: %v", err)
	} else if _, ok := f.(*LiveFormatter); !ok {
		t.Errorf("live: got %T", f)
	}

	if _, err := NewFormatter("tap", &buf); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("tap: got %v, want ErrUnknownFormat", err)
	}
}
