package accumulator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/byte4ever/cachebuster/digester"
	"github.com/byte4ever/cachebuster/manifest"
)

// ErrReadSource wraps failures to stat, list or read a
// source that exists.
var ErrReadSource = errors.New("reading source")

// Config controls hashing and key resolution.
type Config struct {
	// Digester hashes file content. Nil selects
	// digester.DefaultAlgorithm.
	Digester digester.Digester

	// Length truncates every hash. Zero keeps the full
	// digest.
	Length int

	// BaseDir, when set, makes keys relative to it.
	BaseDir string

	// IncludeDirs adds directory sources as keys.
	IncludeDirs bool

	// Logger receives missing source warnings. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// Result is the outcome of one Accumulate call.
type Result struct {
	// Hashes maps keys to truncated hashes in source
	// order.
	Hashes *manifest.Manifest

	// Missing lists sources that did not exist.
	Missing []string
}

// HasWarnings reports whether any source was missing.
func (re Result) HasWarnings() bool {
	return len(re.Missing) > 0
}

// Accumulator hashes sources for a single destination
// group. Its cache lives as long as the Accumulator; use
// a fresh one per group.
type Accumulator struct {
	digester digester.Digester
	length   int
	baseDir  string
	inclDirs bool
	logger   *slog.Logger
	cache    map[string]string
}

// New validates cfg and returns an Accumulator with an
// empty cache.
func New(cfg Config) (*Accumulator, error) {
	const errCtx = "creating accumulator"

	dg := cfg.Digester
	if dg == nil {
		al, err := digester.Lookup(digester.DefaultAlgorithm)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		dg = al
	}

	var baseDir string

	if cfg.BaseDir != "" {
		abs, err := filepath.Abs(cfg.BaseDir)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: resolving basedir: %w", errCtx, err,
			)
		}

		baseDir = abs
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Accumulator{
		digester: dg,
		length:   cfg.Length,
		baseDir:  baseDir,
		inclDirs: cfg.IncludeDirs,
		logger:   logger,
		cache:    make(map[string]string),
	}, nil
}

// Accumulate hashes sources in order. Missing sources are
// logged and skipped; directories are only added as keys
// when IncludeDirs is set. A later source whose key
// collides with an earlier one overwrites its value.
func (ac *Accumulator) Accumulate(
	sources []string,
) (Result, error) {
	const errCtx = "accumulating hashes"

	res := Result{Hashes: manifest.New()}

	for _, src := range sources {
		fi, err := os.Stat(src)
		if errors.Is(err, os.ErrNotExist) {
			ac.logger.Warn("source file not found", "path", src)

			res.Missing = append(res.Missing, src)

			continue
		}

		if err != nil {
			return Result{}, fmt.Errorf(
				"%s: %w: %w", errCtx, ErrReadSource, err,
			)
		}

		if fi.IsDir() && !ac.inclDirs {
			continue
		}

		key, err := ac.Key(src)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", errCtx, err)
		}

		hash, err := ac.Hash(src)
		if err != nil {
			return Result{}, err
		}

		res.Hashes.Set(key, hash)
	}

	return res, nil
}

// Key returns the manifest key for path: the path itself,
// or the path relative to the base directory. Keys always
// use forward slashes.
func (ac *Accumulator) Key(path string) (string, error) {
	const errCtx = "resolving key"

	if ac.baseDir == "" {
		return filepath.ToSlash(path), nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	rel, err := filepath.Rel(ac.baseDir, abs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return filepath.ToSlash(rel), nil
}

// Hash returns the cached hash for path, computing it on
// first use. Errors from a custom digester are returned
// unmodified.
func (ac *Accumulator) Hash(path string) (string, error) {
	const errCtx = "hashing source"

	key, err := ac.Key(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if hash, ok := ac.cache[key]; ok {
		return hash, nil
	}

	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %w: %w", errCtx, ErrReadSource, err,
		)
	}

	var hash string

	if fi.IsDir() {
		var data []byte

		data, err = ac.folded(path)
		if err != nil {
			return "", err
		}

		hash, err = digester.Sum(data, ac.digester, ac.length)
	} else {
		hash, err = digester.CalculateDigest(path, ac.digester, ac.length)
		if errors.Is(err, digester.ErrReadFile) {
			return "", fmt.Errorf(
				"%s: %w: %w", errCtx, ErrReadSource, err,
			)
		}
	}

	if err != nil {
		return "", err //nolint:wrapcheck // custom function errors pass through
	}

	ac.cache[key] = hash

	return hash, nil
}

// CacheLen returns the number of memoized hashes.
func (ac *Accumulator) CacheLen() int {
	return len(ac.cache)
}

// folded concatenates the hashes of every file below dir.
func (ac *Accumulator) folded(dir string) ([]byte, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder

	for _, fp := range files {
		hash, err := ac.Hash(fp)
		if err != nil {
			return nil, err
		}

		sb.WriteString(hash)
	}

	return []byte(sb.String()), nil
}
