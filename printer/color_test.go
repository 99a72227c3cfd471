package printer

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColorMode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]ColorMode{
		"":         ColorAuto,
		"auto":     ColorAuto,
		"never":    ColorNever,
		" Always ": ColorAlways,
	} {
		got, err := ParseColorMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseColorMode("sometimes")
	require.ErrorIs(t, err, ErrInvalidColorMode)
	assert.Contains(t, err.Error(), `"sometimes"`)
}

func TestColorModeEnabled(t *testing.T) {
	t.Parallel()

	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	var buf bytes.Buffer

	assert.True(t, ColorAlways.enabled(&buf, env(nil)))
	assert.False(t, ColorNever.enabled(&buf, env(nil)))

	// Not a file descriptor.
	assert.False(t, ColorAuto.enabled(&buf, env(nil)))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)

	defer f.Close()

	// A regular file is not a terminal.
	assert.False(t, ColorAuto.enabled(f, env(nil)))

	assert.False(t, ColorAuto.enabled(os.Stdout, env(map[string]string{"NO_COLOR": "1"})))
	assert.False(t, ColorAuto.enabled(os.Stdout, env(map[string]string{"TERM": "dumb"})))
}

func TestPaletteSetEnabled(t *testing.T) {
	t.Parallel()

	p := NewPalette(false)
	assert.Equal(t, "x", p.Label.Sprint("x"))
	assert.Equal(t, "x", p.Footer[OutcomeFail].Sprint("x"))

	p.SetEnabled(true)
	assert.Equal(t, "\x1b[33mx\x1b[0m", p.Label.Sprint("x"))
	assert.NotEqual(t, "x", p.Suite[OutcomePass].Sprint("x"))
}
