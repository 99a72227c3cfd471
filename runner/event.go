// Package runner turns test runs into lifecycle events and accumulates their
// results.
package runner

import (
	"time"
)

// Action represents the type of test event.
type Action string

// Action constants for test events.
const (
	ActionSuiteStart Action = "suite-start"
	ActionSuiteEnd   Action = "suite-end"
	ActionRun        Action = "run"
	ActionEnd        Action = "end"
	ActionFail       Action = "failed"
	ActionError      Action = "error"
	ActionIncomplete Action = "incomplete"
	ActionRisky      Action = "risky"
	ActionSkip       Action = "skipped"
)

// Actions lists every action in the order a suite emits them.
func Actions() []Action {
	return []Action{
		ActionSuiteStart,
		ActionRun,
		ActionFail,
		ActionError,
		ActionIncomplete,
		ActionRisky,
		ActionSkip,
		ActionEnd,
		ActionSuiteEnd,
	}
}

// IsOutcome returns true if this action reports a non-passing test outcome.
func (a Action) IsOutcome() bool {
	switch a {
	case ActionFail, ActionError, ActionIncomplete, ActionRisky, ActionSkip:
		return true
	case ActionSuiteStart, ActionSuiteEnd, ActionRun, ActionEnd:
		return false
	}

	return false
}

// IsSuite returns true for suite boundaries.
func (a Action) IsSuite() bool {
	return a == ActionSuiteStart || a == ActionSuiteEnd
}

// Test identifies a single test.
type Test struct {
	Name  string // Short name: "TestParse"
	Class string // Owning unit: package path or test class
}

// LongLabel returns the fully qualified "Class::Name" form, or the short name
// when the class is unknown.
func (t Test) LongLabel() string {
	if t.Class == "" {
		return t.Name
	}

	return t.Class + "::" + t.Name
}

// Event represents a single test event emitted during a run.
type Event struct {
	Time    time.Time     // When the event occurred
	Action  Action        // What happened
	Suite   string        // Suite the event belongs to
	Test    Test          // Zero for suite events
	Reason  string        // Outcome explanation (for outcome actions)
	Elapsed time.Duration // Time taken (for ActionEnd and ActionSuiteEnd)

	Tests      int // Planned test count (for ActionSuiteStart)
	Assertions int // Assertions performed (for ActionEnd)
}

// ID returns a unique identifier: "suite::test".
func (e Event) ID() string {
	if e.Test.Name == "" {
		return e.Suite
	}

	return e.Suite + "::" + e.Test.Name
}
