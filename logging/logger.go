package logging

import (
	"errors"
	"io"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
)

// Logger sends records to every destination. Each destination filters on its
// own, so one record may be shown on the console, written to a file and sent
// as a notification, or any subset of those.
type Logger struct {
	name         string
	core         zapcore.Core
	destinations []zapcore.Core
	errOut       zapcore.WriteSyncer
	now          func() time.Time
}

// LoggerOption configures a Logger.
type LoggerOption func(*Logger)

// ErrorOutput sets where destination write failures are reported. Defaults
// to stderr.
func ErrorOutput(w io.Writer) LoggerOption {
	return func(l *Logger) { l.errOut = zapcore.AddSync(w) }
}

// WithClock sets the time source stamped on records.
func WithClock(now func() time.Time) LoggerOption {
	return func(l *Logger) { l.now = now }
}

// New creates a Logger for the named channel.
func New(name string, destinations []zapcore.Core, opts ...LoggerOption) *Logger {
	l := &Logger{
		name:         name,
		core:         zapcore.NewTee(destinations...),
		destinations: destinations,
		errOut:       zapcore.Lock(os.Stderr),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Name returns the channel name.
func (l *Logger) Name() string {
	return l.name
}

// Destinations returns the destinations in the order given to New.
func (l *Logger) Destinations() []zapcore.Core {
	return l.destinations
}

// Log sends a record to the destinations that accept it.
func (l *Logger) Log(level Level, msg string, ctx Context) {
	ent := zapcore.Entry{
		LoggerName: l.name,
		Time:       l.now(),
		Level:      level.Zap(),
		Message:    msg,
	}

	ce := l.core.Check(ent, nil)
	if ce == nil {
		return
	}

	ce.ErrorOutput = l.errOut
	ce.Write(ctx.Fields()...)
}

// Info logs at InfoLevel.
func (l *Logger) Info(msg string, ctx Context) { l.Log(InfoLevel, msg, ctx) }

// Notice logs at NoticeLevel.
func (l *Logger) Notice(msg string, ctx Context) { l.Log(NoticeLevel, msg, ctx) }

// Warning logs at WarningLevel.
func (l *Logger) Warning(msg string, ctx Context) { l.Log(WarningLevel, msg, ctx) }

// Error logs at ErrorLevel.
func (l *Logger) Error(msg string, ctx Context) { l.Log(ErrorLevel, msg, ctx) }

// filterable returns the first destination that supports level filtering.
func (l *Logger) filterable() Filterable {
	for _, d := range l.destinations {
		if f, ok := d.(Filterable); ok {
			return f
		}
	}

	return nil
}

// SetAcceptedLevels sets the levels accepted by the first filterable
// destination. It is a no-op when there is none.
func (l *Logger) SetAcceptedLevels(levels ...Level) {
	if f := l.filterable(); f != nil {
		f.SetAcceptedLevels(levels...)
	}
}

// SetAcceptedRange sets the level range accepted by the first filterable
// destination. It is a no-op when there is none.
func (l *Logger) SetAcceptedRange(minLevel, maxLevel Level) {
	if f := l.filterable(); f != nil {
		f.SetAcceptedRange(minLevel, maxLevel)
	}
}

// AcceptedLevels returns the levels accepted by the first filterable
// destination, or nil when there is none.
func (l *Logger) AcceptedLevels() []Level {
	if f := l.filterable(); f != nil {
		return f.AcceptedLevels()
	}

	return nil
}

// Sync flushes every destination.
func (l *Logger) Sync() error {
	return l.core.Sync()
}

// Close flushes every destination and closes those holding resources.
func (l *Logger) Close() error {
	errs := []error{l.Sync()}

	for _, d := range l.destinations {
		if c, ok := d.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}

	return errors.Join(errs...)
}
