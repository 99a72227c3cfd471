// Package logging is a small multi-destination logger built on zapcore.
//
// Records carry one of eight syslog-style severities, a message and a context
// map. A Logger fans every record out to its destinations (console, rotating
// file, notifications), each of which decides on its own whether to keep it.
//
// Levels are stored as zapcore.Level values, but records never go through a
// zap.Logger, so the panic and fatal semantics zap attaches to some of those
// values do not apply.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level is the severity of a record.
type Level int8

// Severities, lowest first.
const (
	DebugLevel Level = iota - 1
	InfoLevel
	NoticeLevel
	WarningLevel
	ErrorLevel
	CriticalLevel
	AlertLevel
	EmergencyLevel
)

const numLevels = int(EmergencyLevel-DebugLevel) + 1

var levelNames = [numLevels]string{
	"debug",
	"info",
	"notice",
	"warning",
	"error",
	"critical",
	"alert",
	"emergency",
}

// Levels returns every severity, lowest first.
func Levels() []Level {
	levels := make([]Level, 0, numLevels)
	for l := DebugLevel; l <= EmergencyLevel; l++ {
		levels = append(levels, l)
	}

	return levels
}

// Valid reports whether l is one of the defined severities.
func (l Level) Valid() bool {
	return l >= DebugLevel && l <= EmergencyLevel
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", l)
	}

	return levelNames[l-DebugLevel]
}

// CapitalString returns the upper-case name, as written to log files.
func (l Level) CapitalString() string {
	return strings.ToUpper(l.String())
}

// Zap converts l to the zapcore value used inside cores.
func (l Level) Zap() zapcore.Level {
	return zapcore.Level(l)
}

// FromZap converts a zapcore level produced by Zap back into a Level.
func FromZap(l zapcore.Level) Level {
	return Level(l)
}

// UnmarshalText implements encoding.TextUnmarshaler for config files.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}

	*l = parsed

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ParseLevel converts a level name ("notice", "WARNING", "warn", ...) to a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warn" {
		name = "warning"
	}

	for i, n := range levelNames {
		if n == name {
			return Level(i) + DebugLevel, nil
		}
	}

	return DebugLevel, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// EncodeLevel is a zapcore.LevelEncoder writing capitalized severity names.
func EncodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(FromZap(l).CapitalString())
}
