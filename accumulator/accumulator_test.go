package accumulator_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/cachebuster/accumulator"
	"github.com/byte4ever/cachebuster/digester"
)

const md5Empty = "d41d8cd98f00b204e9800998ecf8427e"

// writeTemp creates a file with content below dir,
// creating parent directories, and returns its path.
func writeTemp(
	tb testing.TB,
	dir string,
	name string,
	content string,
) string {
	tb.Helper()

	pa := filepath.Join(dir, name)
	require.NoError(tb, os.MkdirAll(filepath.Dir(pa), 0o755))
	require.NoError(
		tb,
		os.WriteFile(pa, []byte(content), 0o600),
	)

	return pa
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func md5Hex(tb testing.TB, data string, length int) string {
	tb.Helper()

	al, err := digester.Lookup("md5")
	require.NoError(tb, err)

	got, err := digester.Sum([]byte(data), al, length)
	require.NoError(tb, err)

	return got
}

func accumulate(
	tb testing.TB,
	cfg accumulator.Config,
	sources ...string,
) accumulator.Result {
	tb.Helper()

	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}

	ac, err := accumulator.New(cfg)
	require.NoError(tb, err)

	res, err := ac.Accumulate(sources)
	require.NoError(tb, err)

	return res
}

func TestAccumulate_file_hash(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pa := writeTemp(t, dir, "a.txt", "hello")

	res := accumulate(t, accumulator.Config{}, pa)

	got, ok := res.Hashes.Get(filepath.ToSlash(pa))
	require.True(t, ok)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", got)
	assert.False(t, res.HasWarnings())
}

func TestAccumulate_missing_source(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exists := writeTemp(t, dir, "exists.txt", "here")
	missing := filepath.Join(dir, "missing.txt")

	var buf bytes.Buffer

	res := accumulate(
		t,
		accumulator.Config{
			Logger: slog.New(slog.NewTextHandler(&buf, nil)),
		},
		exists, missing,
	)

	assert.Equal(
		t,
		[]string{filepath.ToSlash(exists)},
		res.Hashes.Keys(),
	)
	assert.Equal(t, []string{missing}, res.Missing)
	assert.True(t, res.HasWarnings())
	assert.Contains(t, buf.String(), "source file not found")
	assert.Contains(t, buf.String(), "missing.txt")
}

func TestAccumulate_directory_skipped_without_include_dirs(
	t *testing.T,
) {
	t.Parallel()

	dir := t.TempDir()
	writeTemp(t, dir, "assets/app.css", "body{}")

	res := accumulate(
		t, accumulator.Config{}, filepath.Join(dir, "assets"),
	)

	assert.Zero(t, res.Hashes.Len())
	assert.False(t, res.HasWarnings())
}

func TestAccumulate_directory_folds_children(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemp(t, dir, "assets/b.css", "b")
	writeTemp(t, dir, "assets/a.css", "a")
	writeTemp(t, dir, "assets/sub/c.css", "c")

	res := accumulate(
		t,
		accumulator.Config{BaseDir: dir, IncludeDirs: true},
		filepath.Join(dir, "assets"),
	)

	// Children are visited in lexical order: a, b, sub/c.
	want := md5Hex(
		t,
		md5Hex(t, "a", 0)+md5Hex(t, "b", 0)+md5Hex(t, "c", 0),
		0,
	)

	got, ok := res.Hashes.Get("assets")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestAccumulate_empty_directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0o755))

	res := accumulate(
		t,
		accumulator.Config{BaseDir: dir, IncludeDirs: true},
		empty,
	)

	got, ok := res.Hashes.Get("empty")
	require.True(t, ok)
	assert.Equal(t, md5Empty, got)
}

func TestAccumulate_directory_hash_tracks_content(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemp(t, dir, "d/a.txt", "a")
	writeTemp(t, dir, "d/b.txt", "b")

	cfg := accumulator.Config{BaseDir: dir, IncludeDirs: true}
	src := filepath.Join(dir, "d")

	hashOf := func() interface{} {
		res := accumulate(t, cfg, src)
		val, ok := res.Hashes.Get("d")
		require.True(t, ok)

		return val
	}

	base := hashOf()
	assert.Equal(t, base, hashOf(), "stable across runs")

	writeTemp(t, dir, "d/b.txt", "changed")
	modified := hashOf()
	assert.NotEqual(t, base, modified, "modified file")

	writeTemp(t, dir, "d/c.txt", "c")
	added := hashOf()
	assert.NotEqual(t, modified, added, "added file")

	require.NoError(t, os.Remove(filepath.Join(dir, "d/c.txt")))
	assert.Equal(t, modified, hashOf(), "removed file")
}

func TestAccumulate_memoizes_nested_paths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fa := writeTemp(t, dir, "d/a.txt", "a")
	writeTemp(t, dir, "d/b.txt", "b")

	calls := 0
	dg := digester.Func(func(data []byte) (string, error) {
		calls++

		return "h" + string(data), nil
	})

	ac, err := accumulator.New(accumulator.Config{
		Digester:    dg,
		BaseDir:     dir,
		IncludeDirs: true,
		Logger:      quietLogger(),
	})
	require.NoError(t, err)

	res, err := ac.Accumulate(
		[]string{fa, filepath.Join(dir, "d"), fa},
	)
	require.NoError(t, err)

	// a.txt, b.txt and d: each hashed exactly once.
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, ac.CacheLen())
	assert.Equal(t, []string{"d/a.txt", "d"}, res.Hashes.Keys())

	direct, ok := res.Hashes.Get("d/a.txt")
	require.True(t, ok)

	viaDir, err := ac.Hash(fa)
	require.NoError(t, err)
	assert.Equal(t, direct, viaDir)
	assert.Equal(t, 3, calls)

	got, ok := res.Hashes.Get("d")
	require.True(t, ok)
	assert.Equal(t, "hhahb", got)
}

func TestAccumulate_truncation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fa := writeTemp(t, dir, "a.txt", "a")
	writeTemp(t, dir, "d/b.txt", "b")

	res := accumulate(
		t,
		accumulator.Config{
			Length:      8,
			BaseDir:     dir,
			IncludeDirs: true,
		},
		fa, filepath.Join(dir, "d"),
	)

	require.Equal(t, 2, res.Hashes.Len())

	for key, val := range res.Hashes.All() {
		assert.Len(t, val, 8, key)
	}

	// Length beyond the digest keeps the full digest.
	res = accumulate(
		t, accumulator.Config{Length: 1000, BaseDir: dir}, fa,
	)
	got, ok := res.Hashes.Get("a.txt")
	require.True(t, ok)
	assert.Len(t, got, 32)
}

func TestAccumulate_basedir_relative_keys(t *testing.T) {
	t.Parallel()

	proj := t.TempDir()
	pa := writeTemp(t, proj, "sub/file.txt", "x")

	res := accumulate(t, accumulator.Config{BaseDir: proj}, pa)

	assert.Equal(t, []string{"sub/file.txt"}, res.Hashes.Keys())
}

func TestAccumulate_custom_hash_function(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fa := writeTemp(t, dir, "a.txt", "a")
	writeTemp(t, dir, "d/b.txt", "b")

	res := accumulate(
		t,
		accumulator.Config{
			Digester: digester.Func(func([]byte) (string, error) {
				return "X", nil
			}),
			Length:      1,
			BaseDir:     dir,
			IncludeDirs: true,
		},
		fa, filepath.Join(dir, "d"),
	)

	assert.Equal(
		t,
		map[string]interface{}{"a.txt": "X", "d": "X"},
		res.Hashes.ToMap(),
	)
}

func TestAccumulate_custom_hash_error_passes_through(
	t *testing.T,
) {
	t.Parallel()

	dir := t.TempDir()
	fa := writeTemp(t, dir, "a.txt", "a")

	errBoom := errors.New("boom")

	ac, err := accumulator.New(accumulator.Config{
		Digester: digester.Func(func([]byte) (string, error) {
			return "", errBoom
		}),
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	_, err = ac.Accumulate([]string{fa})

	assert.Same(t, errBoom, err)
}

func TestAccumulate_unreadable_path_is_fatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fa := writeTemp(t, dir, "a.txt", "a")

	ac, err := accumulator.New(accumulator.Config{
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	// A path below a regular file fails with ENOTDIR,
	// which is not a missing source.
	_, err = ac.Accumulate([]string{filepath.Join(fa, "x")})

	require.Error(t, err)
	assert.ErrorIs(t, err, accumulator.ErrReadSource)
}

func TestAccumulate_read_failure_is_fatal(t *testing.T) {
	t.Parallel()

	if runtime.GOOS != "linux" {
		t.Skip("needs /proc")
	}

	ac, err := accumulator.New(accumulator.Config{
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	// Stat succeeds but reading from offset zero fails
	// with EIO.
	_, err = ac.Accumulate([]string{"/proc/self/mem"})

	require.Error(t, err)
	assert.ErrorIs(t, err, accumulator.ErrReadSource)
	assert.ErrorIs(t, err, digester.ErrReadFile)
}

func TestAccumulate_dangling_link_in_directory_is_fatal(
	t *testing.T,
) {
	t.Parallel()

	dir := t.TempDir()
	writeTemp(t, dir, "d/a.txt", "a")
	require.NoError(
		t,
		os.Symlink(
			filepath.Join(dir, "nowhere"),
			filepath.Join(dir, "d", "broken"),
		),
	)

	ac, err := accumulator.New(accumulator.Config{
		IncludeDirs: true,
		Logger:      quietLogger(),
	})
	require.NoError(t, err)

	_, err = ac.Accumulate([]string{filepath.Join(dir, "d")})

	require.Error(t, err)
	assert.ErrorIs(t, err, accumulator.ErrReadSource)
}

func TestAccumulate_colliding_keys_overwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fa := writeTemp(t, dir, "a.txt", "a")
	writeTemp(t, dir, "b.txt", "b")

	res := accumulate(
		t,
		accumulator.Config{BaseDir: dir},
		fa,
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, ".", "a.txt"),
	)

	assert.Equal(t, []string{"a.txt", "b.txt"}, res.Hashes.Keys())
}

func TestListFiles_lexical_depth_first(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemp(t, dir, "z.txt", "")
	writeTemp(t, dir, "a/2.txt", "")
	writeTemp(t, dir, "a/1.txt", "")
	writeTemp(t, dir, "m.txt", "")

	got, err := accumulator.ListFiles(dir)

	require.NoError(t, err)
	assert.Equal(
		t,
		[]string{
			filepath.Join(dir, "a", "1.txt"),
			filepath.Join(dir, "a", "2.txt"),
			filepath.Join(dir, "m.txt"),
			filepath.Join(dir, "z.txt"),
		},
		got,
	)
}

func TestListFiles_follows_links_once(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemp(t, dir, "d/a.txt", "")
	require.NoError(
		t,
		os.Symlink(
			filepath.Join(dir, "d"),
			filepath.Join(dir, "d", "loop"),
		),
	)

	got, err := accumulator.ListFiles(filepath.Join(dir, "d"))

	require.NoError(t, err)
	assert.Equal(
		t,
		[]string{filepath.Join(dir, "d", "a.txt")},
		got,
	)
}
