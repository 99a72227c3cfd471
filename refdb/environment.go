// Package refdb installs and opens the compatinfo reference database.
//
// The reference database is shipped as a SQLite file embedded in the binary.
// An Environment copies it once to a private temp file and keeps a handle on
// that copy, so callers can freely write to it without touching the bundle.
package refdb

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// DriverName is the database/sql driver the reference database is opened with.
const DriverName = "sqlite3"

// TemplateName is the path of the bundled database inside the embedded data FS.
const TemplateName = "data/compatinfo.sqlite"

// tempSubdir is created under the temp root to hold database copies.
const tempSubdir = "compatinfo"

//go:embed data/compatinfo.sqlite
var bundled embed.FS

// Environment owns one copy of the reference database.
type Environment struct {
	mu sync.Mutex

	tempRoot string
	template fs.FS
	name     string
	logger   *zap.Logger

	path string
	db   *sqlx.DB
}

// Option configures an Environment.
type Option func(*Environment)

// WithTempDir sets the directory under which the compatinfo subdirectory is
// created. Defaults to os.TempDir().
func WithTempDir(dir string) Option {
	return func(e *Environment) {
		e.tempRoot = dir
	}
}

// WithTemplate replaces the bundled database with the file name in fsys.
func WithTemplate(fsys fs.FS, name string) Option {
	return func(e *Environment) {
		e.template = fsys
		e.name = name
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Environment) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Environment. Nothing touches the disk until Init.
func New(opts ...Option) *Environment {
	e := &Environment{
		tempRoot: os.TempDir(),
		template: bundled,
		name:     TemplateName,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Init returns a handle on the database copy, creating it first when needed.
//
// The copy is made on the first call, and again if the file has since been
// removed from disk. With empty set, the file is created but left blank.
// Later calls reuse the existing file and handle; empty is then ignored.
func (e *Environment) Init(ctx context.Context, empty bool) (*sqlx.DB, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.path != "" {
		if _, err := os.Stat(e.path); err == nil {
			if e.db != nil {
				return e.db, nil
			}

			return e.open(ctx, e.path)
		}

		e.logger.Debug("reference database vanished, reinstalling", zap.String("path", e.path))

		if e.db != nil {
			_ = e.db.Close()
			e.db = nil
		}
	}

	path, err := e.install(empty)
	if err != nil {
		return nil, err
	}

	return e.open(ctx, path)
}

func (e *Environment) open(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("refdb: open %s: %w", path, err)
	}

	// One connection keeps every query on the same file handle.
	db.SetMaxOpenConns(1)

	e.path = path
	e.db = db

	return db, nil
}

// Path returns the database file in use, if Init has run.
func (e *Environment) Path() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.path, e.path != ""
}

// Close closes the database handle. The file is left on disk.
func (e *Environment) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		return nil
	}

	err := e.db.Close()
	e.db = nil

	return err
}

// install allocates a new temp file and fills it from the template.
func (e *Environment) install(empty bool) (string, error) {
	dir := filepath.Join(e.tempRoot, tempSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("refdb: create %s: %w", dir, err)
	}

	dst, err := os.CreateTemp(dir, "db")
	if err != nil {
		return "", fmt.Errorf("refdb: allocate database file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if empty {
		e.logger.Debug("installed empty reference database", zap.String("path", dst.Name()))
		return dst.Name(), nil
	}

	n, err := copyTemplate(dst, e.template, e.name)
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}

	e.logger.Debug("installed reference database",
		zap.String("path", dst.Name()),
		zap.Int64("bytes", n),
	)

	return dst.Name(), nil
}

func copyTemplate(dst io.Writer, fsys fs.FS, name string) (int64, error) {
	src, err := fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: template %s", ErrNotFound, name)
		}
		return 0, fmt.Errorf("refdb: open template %s: %w", name, err)
	}
	defer func() { _ = src.Close() }()

	n, err := io.Copy(dst, src)
	if err != nil {
		return n, fmt.Errorf("refdb: copy template %s: %w", name, err)
	}

	return n, nil
}
