package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandler(t *testing.T) {
	t.Parallel()

	m := NewMetricsHandler()
	ctx := context.Background()
	result := NewResult()

	events := append([]Event{{Action: ActionSuiteStart, Suite: "p", Tests: 2}}, testEvents("p", "TestA", ActionFail)...)
	events = append(events, testEvents("p", "TestB", "")...)
	events = append(events, Event{Action: ActionSuiteEnd, Suite: "p"})

	for _, ev := range events {
		require.NoError(t, m.Event(ctx, ev, result))
	}

	require.NoError(t, m.Err("stray"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.events.WithLabelValues(string(ActionRun))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.events.WithLabelValues(string(ActionFail))), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.events.WithLabelValues(string(ActionSkip))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.streamErrors), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.suiteTests.WithLabelValues("p")), 0)
	assert.Equal(t, len(Actions())+3, mustGatherAndCount(t, m))
}

func TestMetricsHandlerWriteTextfile(t *testing.T) {
	t.Parallel()

	m := NewMetricsHandler()
	require.NoError(t, m.Event(context.Background(), Event{Action: ActionEnd, Elapsed: 20 * time.Millisecond}, NewResult()))

	path := filepath.Join(t.TempDir(), "compatinfo.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.Contains(text, `compatinfo_test_events_total{action="end"} 1`), text)
	assert.Contains(t, text, "compatinfo_test_duration_seconds_count 1")
}

func mustGatherAndCount(t *testing.T, m *MetricsHandler) int {
	t.Helper()

	n, err := testutil.GatherAndCount(m.Registry())
	require.NoError(t, err)

	return n
}
