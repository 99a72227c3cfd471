package printer

import (
	"fmt"
	"strings"

	"github.com/rlch/compatinfo/logging"
)

// Outcome is the result category of a suite or a whole run.
type Outcome int

// Outcomes.
const (
	OutcomeEmpty Outcome = iota
	OutcomePass
	OutcomeFail
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomePass:
		return "pass"
	case OutcomeFail:
		return "fail"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Classify picks the category. A run without tests is empty whatever its
// failure and error counts.
func Classify(tests, failures, errors int) Outcome {
	switch {
	case tests == 0:
		return OutcomeEmpty
	case failures == 0 && errors == 0:
		return OutcomePass
	default:
		return OutcomeFail
	}
}

// Status is "OK" without failures and errors, "KO" otherwise.
func Status(failures, errors int) string {
	if failures+errors > 0 {
		return "KO"
	}

	return "OK"
}

// Counters holds the numbers printed after a result status.
type Counters struct {
	Tests      int
	Assertions int
	Failures   int
	Errors     int
	Incomplete int
	Skipped    int
	Risky      int
}

// countersFrom reads counters from a record context.
func countersFrom(r logging.Record) Counters {
	return Counters{
		Tests:      r.Int(KeyTestCount),
		Assertions: r.Int(KeyAssertionCount),
		Failures:   r.Int(KeyFailureCount),
		Errors:     r.Int(KeyErrorCount),
		Incomplete: r.Int(KeyIncompleteCount),
		Skipped:    r.Int(KeySkipCount),
		Risky:      r.Int(KeyRiskyCount),
	}
}

// context returns the counters as record context entries.
func (c Counters) context() logging.Context {
	return logging.Context{
		KeyTestCount:       c.Tests,
		KeyAssertionCount:  c.Assertions,
		KeyFailureCount:    c.Failures,
		KeyErrorCount:      c.Errors,
		KeyIncompleteCount: c.Incomplete,
		KeySkipCount:       c.Skipped,
		KeyRiskyCount:      c.Risky,
	}
}

// Outcome classifies the counters.
func (c Counters) Outcome() Outcome {
	return Classify(c.Tests, c.Failures, c.Errors)
}

// Status is "OK" or "KO".
func (c Counters) Status() string {
	return Status(c.Failures, c.Errors)
}

// String renders "Tests: n" followed by every non-zero counter, closed with
// a period: "Tests: 4, Failures: 1, Skipped: 2."
func (c Counters) String() string {
	parts := []string{fmt.Sprintf("Tests: %d", c.Tests)}

	for _, counter := range []struct {
		label string
		n     int
	}{
		{"Assertions", c.Assertions},
		{"Failures", c.Failures},
		{"Errors", c.Errors},
		{"Incomplete", c.Incomplete},
		{"Skipped", c.Skipped},
		{"Risky", c.Risky},
	} {
		if counter.n != 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", counter.label, counter.n))
		}
	}

	return strings.Join(parts, ", ") + "."
}

// ResultLine renders "Results OK. <counters>".
func (c Counters) ResultLine() string {
	return fmt.Sprintf("Results %s. %s", c.Status(), c)
}
