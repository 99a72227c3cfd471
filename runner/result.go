package runner

import (
	"sync"
	"time"
)

// SuiteStats is the running tally for one suite, or for the whole run.
type SuiteStats struct {
	Name       string
	Tests      int
	Assertions int
	Failures   int
	Errors     int
	Incomplete int
	Skipped    int
	Risky      int
	Elapsed    time.Duration
}

// Ok returns true if the suite had no failures and no errors.
func (s SuiteStats) Ok() bool {
	return s.Failures == 0 && s.Errors == 0
}

func (s *SuiteStats) add(o SuiteStats) {
	s.Tests += o.Tests
	s.Assertions += o.Assertions
	s.Failures += o.Failures
	s.Errors += o.Errors
	s.Incomplete += o.Incomplete
	s.Skipped += o.Skipped
	s.Risky += o.Risky
	s.Elapsed += o.Elapsed
}

// Result accumulates suite statistics during a run.
type Result struct {
	mu sync.RWMutex

	StartTime time.Time
	EndTime   time.Time

	// Suites indexed by name.
	suites map[string]*SuiteStats

	// Order preserves insertion order for display.
	order []string
}

// NewResult creates an initialized Result.
func NewResult() *Result {
	return &Result{
		StartTime: time.Now(),
		suites:    make(map[string]*SuiteStats),
	}
}

// Add records an event in the tally.
func (r *Result) Add(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.suite(event.Suite)

	switch event.Action {
	case ActionSuiteStart:
		s.Tests += event.Tests
	case ActionSuiteEnd:
		s.Elapsed += event.Elapsed
	case ActionEnd:
		s.Assertions += event.Assertions
	case ActionFail:
		s.Failures++
	case ActionError:
		s.Errors++
	case ActionIncomplete:
		s.Incomplete++
	case ActionRisky:
		s.Risky++
	case ActionSkip:
		s.Skipped++
	case ActionRun:
		// Counted at suite start
	}
}

func (r *Result) suite(name string) *SuiteStats {
	s, ok := r.suites[name]
	if !ok {
		s = &SuiteStats{Name: name}
		r.suites[name] = s
		r.order = append(r.order, name)
	}

	return s
}

// Suite returns the tally for the named suite.
func (r *Result) Suite(name string) (SuiteStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.suites[name]
	if !ok {
		return SuiteStats{Name: name}, false
	}

	return *s, true
}

// Suites returns a copy of every suite tally in the order first seen.
func (r *Result) Suites() []SuiteStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SuiteStats, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.suites[name])
	}

	return out
}

// SuiteNames returns suite names in the order first seen.
func (r *Result) SuiteNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Totals sums every suite. The elapsed time is the wall time of the run.
func (r *Result) Totals() SuiteStats {
	r.mu.RLock()

	var total SuiteStats
	for _, s := range r.suites {
		total.add(*s)
	}

	r.mu.RUnlock()

	total.Elapsed = r.Elapsed()

	return total
}

// Merge adds every suite of other into r.
func (r *Result) Merge(other *Result) {
	for _, s := range other.Suites() {
		r.mu.Lock()
		r.suite(s.Name).add(s)
		r.mu.Unlock()
	}
}

// Finish marks the result as complete.
func (r *Result) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.EndTime = time.Now()
}

// Elapsed returns the total execution time.
func (r *Result) Elapsed() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}

	return r.EndTime.Sub(r.StartTime)
}

// Ok returns true if no suite had failures or errors.
func (r *Result) Ok() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.suites {
		if !s.Ok() {
			return false
		}
	}

	return true
}
