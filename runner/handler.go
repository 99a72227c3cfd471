package runner

import (
	"context"
	"time"
)

// Handler receives test events during a run.
type Handler interface {
	// Event is called for each test event as it occurs.
	Event(ctx context.Context, event Event, result *Result) error

	// Err is called for non-test output (build errors, stray lines).
	Err(text string) error
}

// Summarizer is implemented by handlers that render end-of-run output.
type Summarizer interface {
	Summary(result *Result) error
}

// MultiHandler fans out events to multiple handlers.
type MultiHandler struct {
	handlers []Handler
}

// NewMultiHandler creates a handler that dispatches to multiple handlers.
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Event dispatches to all handlers, stopping on first error.
func (m *MultiHandler) Event(ctx context.Context, event Event, result *Result) error {
	for _, h := range m.handlers {
		err := h.Event(ctx, event, result)
		if err != nil {
			return err
		}
	}

	return nil
}

// Err dispatches to all handlers.
func (m *MultiHandler) Err(text string) error {
	for _, h := range m.handlers {
		err := h.Err(text)
		if err != nil {
			return err
		}
	}

	return nil
}

// Summary calls every handler that implements Summarizer.
func (m *MultiHandler) Summary(result *Result) error {
	for _, h := range m.handlers {
		if s, ok := h.(Summarizer); ok {
			if err := s.Summary(result); err != nil {
				return err
			}
		}
	}

	return nil
}

// ResultHandler updates the Result accumulator from events. It must come
// before any handler that reads the tally.
type ResultHandler struct{}

// NewResultHandler creates a handler that accumulates results.
func NewResultHandler() *ResultHandler {
	return &ResultHandler{}
}

// Event updates the result accumulator.
func (h *ResultHandler) Event(_ context.Context, event Event, result *Result) error {
	result.Add(event)

	return nil
}

// Err is a no-op for ResultHandler.
func (h *ResultHandler) Err(_ string) error {
	return nil
}

// StopOnFailHandler stops the run when max failures is reached.
type StopOnFailHandler struct {
	maxFails int
}

// NewStopOnFailHandler creates a handler that stops after n failures.
func NewStopOnFailHandler(maxFails int) *StopOnFailHandler {
	return &StopOnFailHandler{maxFails: maxFails}
}

// Event checks if we've hit max failures.
func (h *StopOnFailHandler) Event(_ context.Context, event Event, result *Result) error {
	if h.maxFails <= 0 {
		return nil
	}

	if event.Action == ActionFail || event.Action == ActionError {
		totals := result.Totals()
		if totals.Failures+totals.Errors >= h.maxFails {
			return ErrMaxFailures
		}
	}

	return nil
}

// Err is a no-op.
func (h *StopOnFailHandler) Err(_ string) error {
	return nil
}

// Listener receives one callback per lifecycle event.
type Listener interface {
	StartTestSuite(suite string, tests int)
	EndTestSuite(suite string, stats SuiteStats)
	StartTest(suite string, test Test)
	EndTest(suite string, test Test, elapsed time.Duration)
	AddError(suite string, test Test, reason string)
	AddFailure(suite string, test Test, reason string)
	AddIncompleteTest(suite string, test Test, reason string)
	AddRiskyTest(suite string, test Test, reason string)
	AddSkippedTest(suite string, test Test, reason string)
}

// ListenerHandler is a Handler that calls a Listener.
type ListenerHandler struct {
	listener Listener
	errOut   func(text string) error
}

// NewListenerHandler wraps l. Err text is handed to errOut, which may be nil.
func NewListenerHandler(l Listener, errOut func(text string) error) *ListenerHandler {
	return &ListenerHandler{listener: l, errOut: errOut}
}

// Event calls the Listener method matching the event's action.
func (h *ListenerHandler) Event(_ context.Context, event Event, result *Result) error {
	l := h.listener

	switch event.Action {
	case ActionSuiteStart:
		l.StartTestSuite(event.Suite, event.Tests)
	case ActionSuiteEnd:
		stats, _ := result.Suite(event.Suite)
		l.EndTestSuite(event.Suite, stats)
	case ActionRun:
		l.StartTest(event.Suite, event.Test)
	case ActionEnd:
		l.EndTest(event.Suite, event.Test, event.Elapsed)
	case ActionError:
		l.AddError(event.Suite, event.Test, event.Reason)
	case ActionFail:
		l.AddFailure(event.Suite, event.Test, event.Reason)
	case ActionIncomplete:
		l.AddIncompleteTest(event.Suite, event.Test, event.Reason)
	case ActionRisky:
		l.AddRiskyTest(event.Suite, event.Test, event.Reason)
	case ActionSkip:
		l.AddSkippedTest(event.Suite, event.Test, event.Reason)
	}

	return nil
}

// Err forwards to errOut.
func (h *ListenerHandler) Err(text string) error {
	if h.errOut == nil {
		return nil
	}

	return h.errOut(text)
}

// Summary calls the Listener's Summary when it has one.
func (h *ListenerHandler) Summary(result *Result) error {
	if s, ok := h.listener.(Summarizer); ok {
		return s.Summary(result)
	}

	return nil
}
