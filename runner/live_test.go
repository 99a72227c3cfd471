package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainLiveModel() *liveModel {
	var buf bytes.Buffer

	start := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	return newLiveModel(DefaultStyles(lipgloss.NewRenderer(&buf)), func() time.Time { return start })
}

func liveRun() []Event {
	pass := Test{Name: "TestAdd", Class: "example.com/calc"}
	fail := Test{Name: "TestDiv", Class: "example.com/calc"}
	skip := Test{Name: "TestRound", Class: "example.com/calc"}

	const suite = "example.com/calc"

	return []Event{
		{Action: ActionSuiteStart, Suite: suite, Tests: 3},
		{Action: ActionRun, Suite: suite, Test: pass},
		{Action: ActionEnd, Suite: suite, Test: pass, Elapsed: 2 * time.Millisecond},
		{Action: ActionRun, Suite: suite, Test: fail},
		{Action: ActionFail, Suite: suite, Test: fail, Reason: "calc_test.go:12: want 2\ngot 3"},
		{Action: ActionEnd, Suite: suite, Test: fail, Elapsed: 1500 * time.Millisecond},
		{Action: ActionRun, Suite: suite, Test: skip},
		{Action: ActionSkip, Suite: suite, Test: skip, Reason: "not on CI"},
		{Action: ActionEnd, Suite: suite, Test: skip},
		{Action: ActionSuiteEnd, Suite: suite, Elapsed: 2 * time.Second},
	}
}

func TestLiveModelCounts(t *testing.T) {
	t.Parallel()

	m := plainLiveModel()
	for _, e := range liveRun() {
		m.Update(liveEventMsg(e))
	}

	assert.Equal(t, liveCounters{total: 3, passed: 1, failed: 1, skipped: 1}, m.counters)
	require.Len(t, m.suites, 1)
	assert.True(t, m.suites[0].ended)

	// Outcomes after the first are ignored.
	m.Update(liveEventMsg{Action: ActionError, Suite: "example.com/calc", Test: Test{Name: "TestDiv"}})
	assert.Equal(t, 1, m.counters.failed)
	assert.Zero(t, m.counters.errors)
}

func TestLiveModelFinalView(t *testing.T) {
	t.Parallel()

	m := plainLiveModel()
	for _, e := range liveRun() {
		m.Update(liveEventMsg(e))
	}

	result := NewResult()
	result.StartTime = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	result.EndTime = result.StartTime.Add(2500 * time.Millisecond)

	m.Update(liveDoneMsg{result: result})

	want := strings.Join([]string{
		"compatinfo report  FAIL",
		"[2.5s] ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━ 3/3",
		"",
		"example.com/calc  [2.0s]",
		"├─ ✓ TestAdd  [2ms]",
		"├─ ✗ TestDiv  [1.5s]",
		"│    calc_test.go:12: want 2",
		"│    got 3",
		"╰─ ○ TestRound  [<1ms]",
		"     not on CI",
		"",
		"",
		"  1 passed │ 1 failed │ 1 skipped (3 total)",
	}, "\n")

	assert.Equal(t, want, m.FinalView())
	assert.Contains(t, m.View(), "compatinfo report  FAIL"+clearEOL)
}

func TestLiveModelProgress(t *testing.T) {
	t.Parallel()

	m := plainLiveModel()
	assert.Contains(t, m.renderHeader(), "waiting for events")
	assert.Contains(t, m.renderProgress(), "0/0")
	assert.Equal(t, "  No tests run", m.renderSummary())

	events := liveRun()
	for _, e := range events[:3] {
		m.Update(liveEventMsg(e))
	}

	assert.Contains(t, m.renderHeader(), "1 suites")
	assert.Contains(t, m.renderProgress(), " 1/3")

	// The spinner keeps ticking until the run is done.
	_, cmd := m.Update(spinner.TickMsg{ID: m.spinner.ID()})
	assert.NotNil(t, cmd)

	m.Update(liveDoneMsg{})
	_, cmd = m.Update(liveTickMsg(time.Now()))
	assert.Nil(t, cmd)
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	for d, want := range map[time.Duration]string{
		500 * time.Microsecond:  "<1ms",
		42 * time.Millisecond:   "42ms",
		1500 * time.Millisecond: "1.5s",
		90 * time.Second:        "1m30s",
	} {
		assert.Equal(t, want, formatDuration(d))
	}
}

func TestLiveFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f, err := NewFormatter("live", &buf)
	require.NoError(t, err)

	h := NewMultiHandler(NewResultHandler(), NewFormatHandler(f, &bytes.Buffer{}))
	result := NewResult()

	for _, e := range liveRun() {
		require.NoError(t, h.Event(context.Background(), e, result))
	}

	result.Finish()
	require.NoError(t, h.Summary(result))

	assert.Contains(t, buf.String(), "  1 passed │ 1 failed │ 1 skipped (3 total)\n")

	// Late events are dropped.
	require.NoError(t, f.Format(Event{Action: ActionRun}, result))
}
