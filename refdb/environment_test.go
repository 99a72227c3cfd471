package refdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnvironment(t *testing.T, opts ...Option) *Environment {
	t.Helper()

	env := New(append([]Option{WithTempDir(t.TempDir())}, opts...)...)
	t.Cleanup(func() { _ = env.Close() })

	return env
}

func TestPathBeforeInit(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)

	path, ok := env.Path()
	assert.False(t, ok)
	assert.Empty(t, path)
}

func TestInitCopiesTemplate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnvironment(t)

	db, err := env.Init(ctx, false)
	require.NoError(t, err)
	require.NotNil(t, db)

	path, ok := env.Path()
	require.True(t, ok)
	assert.Equal(t, tempSubdir, filepath.Base(filepath.Dir(path)))

	want, err := bundled.ReadFile(TemplateName)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(want)), info.Size())
}

func TestInitIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnvironment(t)

	first, err := env.Init(ctx, false)
	require.NoError(t, err)

	firstPath, _ := env.Path()

	// A second copy of the template would undo this update.
	_, err = first.ExecContext(ctx, "UPDATE "+VersionTable+" SET build_version = 'local'")
	require.NoError(t, err)

	second, err := env.Init(ctx, false)
	require.NoError(t, err)

	secondPath, _ := env.Path()
	assert.Equal(t, firstPath, secondPath)
	assert.Same(t, first, second)

	v, err := env.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "local", v.BuildVersion)
}

func TestInitReopensAfterClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnvironment(t)

	_, err := env.Init(ctx, false)
	require.NoError(t, err)

	before, _ := env.Path()
	require.NoError(t, env.Close())

	db, err := env.Init(ctx, false)
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))

	after, _ := env.Path()
	assert.Equal(t, before, after)
}

func TestInitReinstallsRemovedFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnvironment(t)

	_, err := env.Init(ctx, false)
	require.NoError(t, err)

	removed, _ := env.Path()
	require.NoError(t, os.Remove(removed))

	_, err = env.Init(ctx, false)
	require.NoError(t, err)

	path, ok := env.Path()
	require.True(t, ok)
	assert.NotEqual(t, removed, path)
	assert.FileExists(t, path)

	v, err := env.Version(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, v.BuildVersion)
}

func TestInitEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnvironment(t)

	_, err := env.Init(ctx, true)
	require.NoError(t, err)

	path, _ := env.Path()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	_, err = env.Version(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInitMissingTemplate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	env := New(WithTempDir(root), WithTemplate(fstest.MapFS{}, "missing.sqlite"))

	_, err := env.Init(context.Background(), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, ok := env.Path()
	assert.False(t, ok)

	entries, err := os.ReadDir(filepath.Join(root, tempSubdir))
	require.NoError(t, err)
	assert.Empty(t, entries, "failed install must not leave a file behind")
}

func TestVersion(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)

	v, err := env.Version(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Version{
		BuildString:  "Oct 17 2026 09:30:00",
		BuildDate:    "20261017",
		BuildVersion: "2.0.0",
	}, v)
}

func TestVersionMissingRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Build a template that has the table but no row.
	source := newTestEnvironment(t)
	db, err := source.Init(ctx, true)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `CREATE TABLE `+VersionTable+` (
		build_string VARCHAR(16), build_date VARCHAR(16), build_version VARCHAR(16)
	)`)
	require.NoError(t, err)
	require.NoError(t, source.Close())

	sourcePath, _ := source.Path()
	data, err := os.ReadFile(sourcePath)
	require.NoError(t, err)

	env := newTestEnvironment(t, WithTemplate(fstest.MapFS{
		"empty.sqlite": &fstest.MapFile{Data: data},
	}, "empty.sqlite"))

	_, err = env.Version(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "no row")
}

func TestEnvironmentsAreIndependent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()

	a := New(WithTempDir(root))
	b := New(WithTempDir(root))

	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})

	_, err := a.Init(ctx, false)
	require.NoError(t, err)
	_, err = b.Init(ctx, false)
	require.NoError(t, err)

	pathA, _ := a.Path()
	pathB, _ := b.Path()
	assert.NotEqual(t, pathA, pathB)
	assert.Equal(t, filepath.Dir(pathA), filepath.Dir(pathB))
}
