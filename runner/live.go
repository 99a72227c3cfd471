package runner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// LiveFormatter implements Formatter with an animated terminal UI: one tree
// per suite, filled in as the suites are reported.
type LiveFormatter struct {
	w       io.Writer
	program *tea.Program
	model   *liveModel

	start    sync.Once
	mu       sync.Mutex
	finished bool
	exited   chan struct{}
	runErr   error
}

// NewLiveFormatter creates a live formatter writing to w.
func NewLiveFormatter(w io.Writer) *LiveFormatter {
	model := newLiveModel(DefaultStyles(lipgloss.NewRenderer(w)), time.Now)

	opts := []tea.ProgramOption{
		tea.WithOutput(w),
		tea.WithoutSignalHandler(),
		tea.WithAltScreen(),
	}

	// Only read input from a terminal
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		opts = append(opts, tea.WithInput(nil))
	}

	return &LiveFormatter{
		w:       w,
		program: tea.NewProgram(model, opts...),
		model:   model,
		exited:  make(chan struct{}),
	}
}

// Start begins the event loop. Format starts it if needed.
func (l *LiveFormatter) Start() error {
	l.start.Do(func() {
		go func() {
			defer close(l.exited)

			_, l.runErr = l.program.Run()
		}()
	})

	return nil
}

// Format sends an event to the view.
func (l *LiveFormatter) Format(event Event, _ *Result) error {
	_ = l.Start()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.finished {
		return nil
	}

	l.program.Send(liveEventMsg(event))

	return nil
}

// Summary stops the event loop and prints the final static view.
func (l *LiveFormatter) Summary(result *Result) error {
	_ = l.Start()

	l.mu.Lock()
	l.finished = true
	l.mu.Unlock()

	l.program.Send(liveDoneMsg{result: result})
	l.program.Quit()
	<-l.exited

	if l.runErr != nil {
		return fmt.Errorf("live view: %w", l.runErr)
	}

	_, err := fmt.Fprintln(l.w, l.model.FinalView())

	return err
}

// -----------------------------------------------------------------------------
// Model
// -----------------------------------------------------------------------------

// liveStatus tracks the execution state of a test.
type liveStatus int

const (
	statusPending liveStatus = iota
	statusRunning
	statusPass
	statusFail
	statusError
	statusSkip
	statusIncomplete
	statusRisky
)

var outcomeStatus = map[Action]liveStatus{
	ActionFail:       statusFail,
	ActionError:      statusError,
	ActionSkip:       statusSkip,
	ActionIncomplete: statusIncomplete,
	ActionRisky:      statusRisky,
}

type liveTest struct {
	name    string
	status  liveStatus
	elapsed time.Duration
	reason  string
}

type liveSuite struct {
	name    string
	tests   []*liveTest
	idx     map[string]*liveTest
	elapsed time.Duration
	ended   bool
}

func (s *liveSuite) test(name string) *liveTest {
	t, ok := s.idx[name]
	if !ok {
		t = &liveTest{name: name}
		s.idx[name] = t
		s.tests = append(s.tests, t)
	}

	return t
}

type liveCounters struct {
	total      int
	passed     int
	failed     int
	errors     int
	skipped    int
	incomplete int
	risky      int
}

// liveModel is the bubbletea model for the live view.
type liveModel struct {
	styles  *Styles
	spinner spinner.Model
	now     func() time.Time

	suites []*liveSuite
	idx    map[string]*liveSuite

	counters liveCounters

	startTime time.Time
	endTime   time.Time

	isDone bool
}

// Messages
type (
	liveTickMsg  time.Time
	liveEventMsg Event
	liveDoneMsg  struct{ result *Result }
)

func newLiveModel(styles *Styles, now func() time.Time) *liveModel {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: SpinnerFrames(),
		FPS:    time.Second / 10,
	}
	s.Style = styles.Running

	return &liveModel{
		styles:    styles,
		spinner:   s,
		now:       now,
		idx:       make(map[string]*liveSuite),
		startTime: now(),
	}
}

func (m *liveModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.tick(),
	)
}

func (m *liveModel) tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return liveTickMsg(t)
	})
}

func (m *liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case liveTickMsg:
		if !m.isDone {
			cmds = append(cmds, m.tick())
		}

	case spinner.TickMsg:
		if !m.isDone {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case liveEventMsg:
		m.handleEvent(Event(msg))

	case liveDoneMsg:
		m.isDone = true
		m.endTime = m.now()

		if msg.result != nil && !msg.result.EndTime.IsZero() {
			m.startTime, m.endTime = msg.result.StartTime, msg.result.EndTime
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *liveModel) suite(name string) *liveSuite {
	s, ok := m.idx[name]
	if !ok {
		s = &liveSuite{name: name, idx: make(map[string]*liveTest)}
		m.idx[name] = s
		m.suites = append(m.suites, s)
	}

	return s
}

func (m *liveModel) handleEvent(event Event) {
	s := m.suite(event.Suite)

	switch event.Action {
	case ActionSuiteStart:
		m.counters.total += event.Tests

	case ActionSuiteEnd:
		s.ended = true
		s.elapsed = event.Elapsed

	case ActionRun:
		s.test(event.Test.Name).status = statusRunning

	case ActionEnd:
		t := s.test(event.Test.Name)
		t.elapsed = event.Elapsed

		if t.status == statusRunning || t.status == statusPending {
			t.status = statusPass
			m.counters.passed++
		}

	case ActionFail, ActionError, ActionSkip, ActionIncomplete, ActionRisky:
		t := s.test(event.Test.Name)
		if t.status != statusRunning && t.status != statusPending {
			return
		}

		t.status = outcomeStatus[event.Action]
		t.reason = event.Reason
		m.count(t.status)
	}
}

func (m *liveModel) count(status liveStatus) {
	switch status {
	case statusFail:
		m.counters.failed++
	case statusError:
		m.counters.errors++
	case statusSkip:
		m.counters.skipped++
	case statusIncomplete:
		m.counters.incomplete++
	case statusRisky:
		m.counters.risky++
	case statusPending, statusRunning, statusPass:
	}
}

// clearEOL is the ANSI escape sequence to clear from cursor to end of line.
const clearEOL = "\033[K"

// FinalView renders the complete final output for printing after the view
// exits. Unlike View, it has no clear-to-EOL sequences.
func (m *liveModel) FinalView() string {
	lines := m.lines()
	lines = append(lines, "", m.renderSummary())

	return strings.Join(lines, "\n")
}

func (m *liveModel) View() string {
	lines := m.lines()

	if m.isDone {
		lines = append(lines, "", m.renderSummary())
	}

	// Add clear-to-EOL to each line to prevent rendering artifacts
	for i := range lines {
		lines[i] += clearEOL
	}

	return strings.Join(lines, "\n") + "\n"
}

func (m *liveModel) lines() []string {
	lines := []string{m.renderHeader(), m.renderProgress(), ""}

	for _, s := range m.suites {
		lines = append(lines, strings.Split(strings.TrimSuffix(m.renderSuite(s), "\n"), "\n")...)
	}

	return lines
}

func (m *liveModel) failed() bool {
	return m.counters.failed > 0 || m.counters.errors > 0
}

func (m *liveModel) renderHeader() string {
	logo := m.styles.Bold.Render("compatinfo")
	subtitle := m.styles.Dim.Render(" report")

	var status string

	switch {
	case m.isDone && m.failed():
		status = m.styles.Fail.Render("FAIL")
	case m.isDone:
		status = m.styles.Pass.Render("PASS")
	case len(m.suites) > 0:
		status = m.styles.Running.Render(fmt.Sprintf("%d suites", len(m.suites)))
	default:
		status = m.styles.Dim.Render("waiting for events")
	}

	return fmt.Sprintf("%s%s  %s", logo, subtitle, status)
}

func (m *liveModel) done() int {
	c := m.counters
	return c.passed + c.failed + c.errors + c.skipped + c.incomplete + c.risky
}

func (m *liveModel) renderProgress() string {
	done, total := m.done(), m.counters.total

	pct := 0.0
	if total > 0 {
		pct = min(float64(done)/float64(total), 1)
	}

	elapsed := m.now().Sub(m.startTime)
	if !m.endTime.IsZero() {
		elapsed = m.endTime.Sub(m.startTime)
	}

	elapsedStr := m.styles.Dim.Render(fmt.Sprintf("[%s]", formatDuration(elapsed)))

	barWidth := 30
	filled := int(pct * float64(barWidth))
	filledChar, emptyChar := ProgressChars()

	bar := m.styles.ProgressFilled.Render(strings.Repeat(filledChar, filled)) +
		m.styles.ProgressEmpty.Render(strings.Repeat(emptyChar, barWidth-filled))

	counter := m.styles.Muted.Render(fmt.Sprintf("%d/%d", done, total))

	return fmt.Sprintf("%s %s %s", elapsedStr, bar, counter)
}

func (m *liveModel) renderSuite(s *liveSuite) string {
	var b strings.Builder

	b.WriteString(m.styles.Path.Render(s.name))

	if s.ended {
		b.WriteString(m.styles.Dim.Render(fmt.Sprintf("  [%s]", formatDuration(s.elapsed))))
	}

	b.WriteString("\n")

	for i, t := range s.tests {
		m.renderTest(&b, t, i == len(s.tests)-1)
	}

	b.WriteString("\n")

	return b.String()
}

func (m *liveModel) renderTest(b *strings.Builder, t *liveTest, isLast bool) {
	branch, detailPrefix := "├─", "│ "
	if isLast {
		branch, detailPrefix = "╰─", "  "
	}

	b.WriteString(m.styles.Dim.Render(branch + " "))
	b.WriteString(m.renderSymbol(t.status))
	b.WriteString(" ")
	b.WriteString(m.styles.TestName.Render(t.name))

	if t.status != statusPending && t.status != statusRunning {
		b.WriteString(m.styles.Dim.Render(fmt.Sprintf("  [%s]", formatDuration(t.elapsed))))
	}

	b.WriteString("\n")

	if t.reason == "" {
		return
	}

	style := m.styles.Muted

	switch t.status {
	case statusFail:
		style = m.styles.Fail
	case statusError:
		style = m.styles.Error
	case statusIncomplete, statusRisky:
		style = m.styles.Warn
	case statusPending, statusRunning, statusPass, statusSkip:
	}

	for _, line := range strings.Split(t.reason, "\n") {
		b.WriteString(m.styles.Dim.Render(detailPrefix + "   "))
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
}

func (m *liveModel) renderSymbol(status liveStatus) string {
	switch status {
	case statusPending:
		return m.styles.Dim.Render("⋯")
	case statusRunning:
		if m.isDone {
			return m.styles.Dim.Render("⋯")
		}

		return m.spinner.View()
	case statusPass:
		return m.styles.Pass.Render(m.styles.SymbolPass)
	case statusFail:
		return m.styles.Fail.Render(m.styles.SymbolFail)
	case statusError:
		return m.styles.Error.Render(m.styles.SymbolFail)
	case statusSkip:
		return m.styles.Skip.Render(m.styles.SymbolSkip)
	case statusIncomplete, statusRisky:
		return m.styles.Warn.Render(m.styles.SymbolWarn)
	default:
		return " "
	}
}

func (m *liveModel) renderSummary() string {
	c := m.counters

	var parts []string

	for _, part := range []struct {
		n     int
		label string
		style lipgloss.Style
	}{
		{c.passed, "passed", m.styles.Pass},
		{c.failed, "failed", m.styles.Fail},
		{c.errors, "errors", m.styles.Error},
		{c.skipped, "skipped", m.styles.Skip},
		{c.incomplete, "incomplete", m.styles.Warn},
		{c.risky, "risky", m.styles.Warn},
	} {
		if part.n > 0 {
			parts = append(parts, part.style.Render(fmt.Sprintf("%d %s", part.n, part.label)))
		}
	}

	if len(parts) == 0 {
		return m.styles.Dim.Render("  No tests run")
	}

	total := m.styles.Muted.Render(fmt.Sprintf("(%d total)", c.total))
	sep := m.styles.Dim.Render(" │ ")

	return "  " + strings.Join(parts, sep) + " " + total
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}

	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
