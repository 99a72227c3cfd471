package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultAdd(t *testing.T) {
	t.Parallel()

	r := NewResult()

	for _, ev := range []Event{
		{Action: ActionSuiteStart, Suite: "a", Tests: 3},
		{Action: ActionRun, Suite: "a"},
		{Action: ActionEnd, Suite: "a", Assertions: 2},
		{Action: ActionFail, Suite: "a"},
		{Action: ActionSkip, Suite: "a"},
		{Action: ActionSuiteEnd, Suite: "a", Elapsed: time.Second},
		{Action: ActionSuiteStart, Suite: "b", Tests: 1},
		{Action: ActionRisky, Suite: "b"},
		{Action: ActionIncomplete, Suite: "b"},
	} {
		r.Add(ev)
	}

	a, ok := r.Suite("a")
	require.True(t, ok)
	assert.Equal(t, SuiteStats{
		Name: "a", Tests: 3, Assertions: 2, Failures: 1, Skipped: 1, Elapsed: time.Second,
	}, a)
	assert.False(t, a.Ok())

	b, ok := r.Suite("b")
	require.True(t, ok)
	assert.True(t, b.Ok())

	_, ok = r.Suite("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, r.SuiteNames())
	assert.False(t, r.Ok())

	r.Finish()

	totals := r.Totals()
	assert.Equal(t, 4, totals.Tests)
	assert.Equal(t, 1, totals.Failures)
	assert.Equal(t, 1, totals.Risky)
	assert.Equal(t, 1, totals.Incomplete)
	assert.Equal(t, r.Elapsed(), totals.Elapsed)
}

func TestResultOkWhenEmpty(t *testing.T) {
	t.Parallel()

	r := NewResult()
	assert.True(t, r.Ok())
	assert.Empty(t, r.Suites())
}

func TestResultMerge(t *testing.T) {
	t.Parallel()

	a := NewResult()
	a.Add(Event{Action: ActionSuiteStart, Suite: "x", Tests: 1})

	b := NewResult()
	b.Add(Event{Action: ActionSuiteStart, Suite: "x", Tests: 2})
	b.Add(Event{Action: ActionError, Suite: "x"})
	b.Add(Event{Action: ActionSuiteStart, Suite: "y", Tests: 5})

	a.Merge(b)

	x, _ := a.Suite("x")
	assert.Equal(t, 3, x.Tests)
	assert.Equal(t, 1, x.Errors)
	assert.Equal(t, []string{"x", "y"}, a.SuiteNames())
	assert.False(t, a.Ok())
}

func TestTestLongLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pkg::TestA", Test{Name: "TestA", Class: "pkg"}.LongLabel())
	assert.Equal(t, "TestA", Test{Name: "TestA"}.LongLabel())

	assert.Equal(t, "pkg::TestA", Event{Suite: "pkg", Test: Test{Name: "TestA"}}.ID())
	assert.Equal(t, "pkg", Event{Suite: "pkg"}.ID())
}

func TestActionKinds(t *testing.T) {
	t.Parallel()

	for _, a := range Actions() {
		switch a {
		case ActionFail, ActionError, ActionIncomplete, ActionRisky, ActionSkip:
			assert.True(t, a.IsOutcome(), a)
			assert.False(t, a.IsSuite(), a)
		case ActionSuiteStart, ActionSuiteEnd:
			assert.True(t, a.IsSuite(), a)
			assert.False(t, a.IsOutcome(), a)
		default:
			assert.False(t, a.IsOutcome(), a)
			assert.False(t, a.IsSuite(), a)
		}
	}
}
