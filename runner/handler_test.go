package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events []Event
	errs   []string
	err    error
}

func (h *recordingHandler) Event(_ context.Context, event Event, _ *Result) error {
	h.events = append(h.events, event)
	return h.err
}

func (h *recordingHandler) Err(text string) error {
	h.errs = append(h.errs, text)
	return h.err
}

type summaryHandler struct {
	recordingHandler

	summaries int
}

func (h *summaryHandler) Summary(*Result) error {
	h.summaries++
	return nil
}

func TestMultiHandler(t *testing.T) {
	t.Parallel()

	first, second := &recordingHandler{}, &summaryHandler{}
	m := NewMultiHandler(first, second)

	ev := Event{Action: ActionRun, Suite: "s", Test: Test{Name: "t"}}
	require.NoError(t, m.Event(context.Background(), ev, NewResult()))
	require.NoError(t, m.Err("stray"))
	require.NoError(t, m.Summary(NewResult()))

	assert.Equal(t, []Event{ev}, first.events)
	assert.Equal(t, []Event{ev}, second.events)
	assert.Equal(t, []string{"stray"}, second.errs)
	assert.Equal(t, 1, second.summaries)
}

func TestMultiHandlerStopsOnError(t *testing.T) {
	t.Parallel()

	first, second := &recordingHandler{err: errTestStop}, &recordingHandler{}
	m := NewMultiHandler(first, second)

	err := m.Event(context.Background(), Event{Action: ActionRun}, NewResult())
	require.ErrorIs(t, err, errTestStop)
	assert.Empty(t, second.events)

	require.ErrorIs(t, m.Err("x"), errTestStop)
	assert.Empty(t, second.errs)
}

func TestStopOnFailHandler(t *testing.T) {
	t.Parallel()

	result := NewResult()
	h := NewMultiHandler(NewResultHandler(), NewStopOnFailHandler(2))
	ctx := context.Background()

	require.NoError(t, h.Event(ctx, Event{Action: ActionFail, Suite: "a"}, result))
	require.NoError(t, h.Event(ctx, Event{Action: ActionSkip, Suite: "a"}, result))

	err := h.Event(ctx, Event{Action: ActionError, Suite: "b"}, result)
	assert.True(t, errors.Is(err, ErrMaxFailures))

	unlimited := NewStopOnFailHandler(0)
	require.NoError(t, unlimited.Event(ctx, Event{Action: ActionFail}, result))
}

type call struct {
	method string
	suite  string
	test   string
	arg    any
}

type recordingListener struct {
	calls []call
}

func (l *recordingListener) add(method, suite string, test Test, arg any) {
	l.calls = append(l.calls, call{method: method, suite: suite, test: test.Name, arg: arg})
}

func (l *recordingListener) StartTestSuite(suite string, tests int) {
	l.add("StartTestSuite", suite, Test{}, tests)
}

func (l *recordingListener) EndTestSuite(suite string, stats SuiteStats) {
	l.add("EndTestSuite", suite, Test{}, stats)
}

func (l *recordingListener) StartTest(suite string, test Test) {
	l.add("StartTest", suite, test, nil)
}

func (l *recordingListener) EndTest(suite string, test Test, elapsed time.Duration) {
	l.add("EndTest", suite, test, elapsed)
}

func (l *recordingListener) AddError(suite string, test Test, reason string) {
	l.add("AddError", suite, test, reason)
}

func (l *recordingListener) AddFailure(suite string, test Test, reason string) {
	l.add("AddFailure", suite, test, reason)
}

func (l *recordingListener) AddIncompleteTest(suite string, test Test, reason string) {
	l.add("AddIncompleteTest", suite, test, reason)
}

func (l *recordingListener) AddRiskyTest(suite string, test Test, reason string) {
	l.add("AddRiskyTest", suite, test, reason)
}

func (l *recordingListener) AddSkippedTest(suite string, test Test, reason string) {
	l.add("AddSkippedTest", suite, test, reason)
}

func TestListenerHandler(t *testing.T) {
	t.Parallel()

	listener := &recordingListener{}

	var errs []string

	h := NewMultiHandler(
		NewResultHandler(),
		NewListenerHandler(listener, func(text string) error {
			errs = append(errs, text)
			return nil
		}),
	)

	result := NewResult()
	ctx := context.Background()
	test := Test{Name: "TestA", Class: "s"}

	events := []Event{
		{Action: ActionSuiteStart, Suite: "s", Tests: 1},
		{Action: ActionRun, Suite: "s", Test: test},
		{Action: ActionFail, Suite: "s", Test: test, Reason: "f"},
		{Action: ActionError, Suite: "s", Test: test, Reason: "e"},
		{Action: ActionIncomplete, Suite: "s", Test: test, Reason: "i"},
		{Action: ActionRisky, Suite: "s", Test: test, Reason: "r"},
		{Action: ActionSkip, Suite: "s", Test: test, Reason: "k"},
		{Action: ActionEnd, Suite: "s", Test: test, Elapsed: time.Second, Assertions: 4},
		{Action: ActionSuiteEnd, Suite: "s"},
	}

	for _, ev := range events {
		require.NoError(t, h.Event(ctx, ev, result))
	}

	require.NoError(t, h.Err("stray"))

	want := []call{
		{method: "StartTestSuite", suite: "s", arg: 1},
		{method: "StartTest", suite: "s", test: "TestA"},
		{method: "AddFailure", suite: "s", test: "TestA", arg: "f"},
		{method: "AddError", suite: "s", test: "TestA", arg: "e"},
		{method: "AddIncompleteTest", suite: "s", test: "TestA", arg: "i"},
		{method: "AddRiskyTest", suite: "s", test: "TestA", arg: "r"},
		{method: "AddSkippedTest", suite: "s", test: "TestA", arg: "k"},
		{method: "EndTest", suite: "s", test: "TestA", arg: time.Second},
		{method: "EndTestSuite", suite: "s", arg: SuiteStats{
			Name: "s", Tests: 1, Assertions: 4, Failures: 1, Errors: 1,
			Incomplete: 1, Skipped: 1, Risky: 1,
		}},
	}

	assert.Equal(t, want, listener.calls)
	assert.Equal(t, []string{"stray"}, errs)
}

func TestListenerHandlerNilErrOut(t *testing.T) {
	t.Parallel()

	h := NewListenerHandler(&recordingListener{}, nil)
	require.NoError(t, h.Err("ignored"))
	require.NoError(t, h.Summary(NewResult()))
}
