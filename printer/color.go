package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode controls colorized console output.
type ColorMode string

// Color modes, as accepted by --colors.
const (
	ColorNever  ColorMode = "never"
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
)

// ParseColorMode validates a --colors value. The empty string means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ColorAuto, nil
	case ColorNever, ColorAuto, ColorAlways:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidColorMode, s)
	}
}

type fdWriter interface {
	Fd() uintptr
}

// Enabled resolves the mode for output written to w. Auto enables colors for
// terminals unless NO_COLOR is set or TERM is "dumb".
func (m ColorMode) Enabled(w io.Writer) bool {
	return m.enabled(w, os.Getenv)
}

func (m ColorMode) enabled(w io.Writer, getenv func(string) string) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	case ColorAuto:
	}

	if getenv("NO_COLOR") != "" || getenv("TERM") == "dumb" {
		return false
	}

	f, ok := w.(fdWriter)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Palette holds the colors used by the console formatter.
//
//   - Label: suite names and the run header
//   - Info: neutral per-test and suite messages
//   - Suite: suite end results, by outcome
//   - Footer: the run footer, by outcome
type Palette struct {
	Label  *color.Color
	Info   *color.Color
	Suite  map[Outcome]*color.Color
	Footer map[Outcome]*color.Color
}

// NewPalette returns the default colors, enabled or not regardless of the
// global color.NoColor setting.
func NewPalette(enabled bool) *Palette {
	p := &Palette{
		Label: color.New(color.FgYellow),
		Info:  color.New(color.FgCyan),
		Suite: map[Outcome]*color.Color{
			OutcomeEmpty: color.New(color.FgBlack, color.BgYellow),
			OutcomePass:  color.New(color.FgGreen),
			OutcomeFail:  color.New(color.FgRed),
		},
		Footer: map[Outcome]*color.Color{
			OutcomeEmpty: color.New(color.FgBlack, color.BgYellow),
			OutcomePass:  color.New(color.FgBlack, color.BgGreen),
			OutcomeFail:  color.New(color.FgWhite, color.BgRed),
		},
	}

	p.SetEnabled(enabled)

	return p
}

// SetEnabled turns every color of the palette on or off.
func (p *Palette) SetEnabled(enabled bool) {
	all := []*color.Color{p.Label, p.Info}
	for _, c := range p.Suite {
		all = append(all, c)
	}

	for _, c := range p.Footer {
		all = append(all, c)
	}

	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}
