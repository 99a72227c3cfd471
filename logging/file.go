package logging

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Defaults for File.
const (
	DefaultMaxAgeDays = 30
	DefaultMaxBackups = 30
	DefaultMaxSizeMB  = 100
)

// File writes every accepted record, with its context, to a log file.
//
// The file is rotated when the first record of a new day is written, and on
// size through lumberjack. Backups older than the retention are removed.
type File struct {
	zapcore.Core

	w *dailyWriter
}

// FileOption configures a File.
type FileOption func(*fileConfig)

type fileConfig struct {
	level      Level
	maxAge     int
	maxBackups int
	maxSize    int
	fields     []zapcore.Field
	now        func() time.Time
}

// FileLevel sets the lowest level written. Defaults to DebugLevel.
func FileLevel(l Level) FileOption {
	return func(c *fileConfig) { c.level = l }
}

// FileRetention sets how many days and how many backups are kept.
func FileRetention(days, backups int) FileOption {
	return func(c *fileConfig) {
		c.maxAge = days
		c.maxBackups = backups
	}
}

// FileMaxSize sets the size in megabytes at which the file is rotated.
func FileMaxSize(mb int) FileOption {
	return func(c *fileConfig) { c.maxSize = mb }
}

// FileFields attaches fields to every record written to the file.
func FileFields(fields ...zapcore.Field) FileOption {
	return func(c *fileConfig) { c.fields = append(c.fields, fields...) }
}

func fileClock(now func() time.Time) FileOption {
	return func(c *fileConfig) { c.now = now }
}

// NewFile creates a file destination writing to path. Parent directories are
// created as needed.
func NewFile(path string, opts ...FileOption) (*File, error) {
	cfg := fileConfig{
		level:      DebugLevel,
		maxAge:     DefaultMaxAgeDays,
		maxBackups: DefaultMaxBackups,
		maxSize:    DefaultMaxSizeMB,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	w, err := newDailyWriter(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.maxSize,
		MaxAge:     cfg.maxAge,
		MaxBackups: cfg.maxBackups,
		LocalTime:  true,
	}, cfg.now)
	if err != nil {
		return nil, err
	}

	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "channel",
		MessageKey:       "message",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.RFC3339TimeEncoder,
		EncodeLevel:      EncodeLevel,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	})

	core := zapcore.NewCore(enc, zapcore.AddSync(w), AtLeast(cfg.level))
	if len(cfg.fields) > 0 {
		core = core.With(cfg.fields)
	}

	return &File{Core: core, w: w}, nil
}

// Path returns the active log file.
func (f *File) Path() string {
	return f.w.lj.Filename
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.w.Close()
}

// dailyWriter forces a lumberjack rotation whenever the calendar day changes.
type dailyWriter struct {
	mu  sync.Mutex
	lj  *lumberjack.Logger
	now func() time.Time
	day string
}

const dayLayout = "2006-01-02"

func newDailyWriter(lj *lumberjack.Logger, now func() time.Time) (*dailyWriter, error) {
	w := &dailyWriter{lj: lj, now: now, day: now().Format(dayLayout)}

	// A file left over from an earlier day starts the run rotated.
	if info, err := os.Stat(lj.Filename); err == nil && info.ModTime().Format(dayLayout) != w.day {
		if err := lj.Rotate(); err != nil {
			return nil, err
		}
	}

	return w, nil
}

func (w *dailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if day := w.now().Format(dayLayout); day != w.day {
		w.day = day
		if err := w.lj.Rotate(); err != nil {
			return 0, err
		}
	}

	return w.lj.Write(p)
}

func (w *dailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.lj.Close()
}
