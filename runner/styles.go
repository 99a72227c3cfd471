package runner

import "github.com/charmbracelet/lipgloss"

// Styles holds the styles of the live view.
type Styles struct {
	Bold     lipgloss.Style
	Dim      lipgloss.Style
	Muted    lipgloss.Style
	Path     lipgloss.Style
	TestName lipgloss.Style

	Pass    lipgloss.Style
	Fail    lipgloss.Style
	Skip    lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Running lipgloss.Style

	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style

	SymbolPass string
	SymbolFail string
	SymbolSkip string
	SymbolWarn string
}

// DefaultStyles returns the live view styles for output rendered by r.
func DefaultStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Bold:     r.NewStyle().Bold(true),
		Dim:      r.NewStyle().Foreground(lipgloss.Color("#626262")),
		Muted:    r.NewStyle().Foreground(lipgloss.Color("#9B9B9B")),
		Path:     r.NewStyle().Foreground(lipgloss.Color("#9B9B9B")).Underline(true),
		TestName: r.NewStyle().Foreground(lipgloss.Color("#DDDDDD")),

		Pass:    r.NewStyle().Foreground(lipgloss.Color("#04B575")),
		Fail:    r.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
		Skip:    r.NewStyle().Foreground(lipgloss.Color("#FFCC00")),
		Warn:    r.NewStyle().Foreground(lipgloss.Color("#FF8700")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true),
		Running: r.NewStyle().Foreground(lipgloss.Color("#7D56F4")),

		ProgressFilled: r.NewStyle().Foreground(lipgloss.Color("#7D56F4")),
		ProgressEmpty:  r.NewStyle().Foreground(lipgloss.Color("#3C3C3C")),

		SymbolPass: "✓",
		SymbolFail: "✗",
		SymbolSkip: "○",
		SymbolWarn: "!",
	}
}

// SpinnerFrames are the frames of the running test spinner.
func SpinnerFrames() []string {
	return []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
}

// ProgressChars returns the filled and empty progress bar characters.
func ProgressChars() (filled, empty string) {
	return "━", "─"
}
