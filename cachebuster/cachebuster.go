package cachebuster

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/byte4ever/cachebuster/accumulator"
	"github.com/byte4ever/cachebuster/digester"
	"github.com/byte4ever/cachebuster/formatter"
	"github.com/byte4ever/cachebuster/manifest"
)

// CompleteFunc transforms the hash mapping before it is
// formatted. Returning a nil manifest suppresses the
// output file.
type CompleteFunc func(hashes *manifest.Manifest) (*manifest.Manifest, error)

// Config holds the settings shared by every group of a
// run.
type Config struct {
	// Formatter renders the manifest. Nil selects
	// formatter.DefaultFormat.
	Formatter formatter.Formatter

	// Banner is prepended to the rendered manifest.
	Banner string

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

	// Complete, when set, transforms the mapping before
	// it is formatted.
	Complete CompleteFunc

	// Logger receives warnings and the group summary.
	// Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a json, md5, full length
// configuration.
func DefaultConfig() Config {
	al, err := digester.Lookup(digester.DefaultAlgorithm)
	if err != nil {
		panic(err)
	}

	fo, err := formatter.Lookup(formatter.DefaultFormat)
	if err != nil {
		panic(err)
	}

	return Config{
		Formatter: fo,
		Digester:  al,
	}
}

// Group pairs the sources of one manifest with its
// destination. An empty Dest renders without writing.
type Group struct {
	Sources []string
	Dest    string
}

// Status summarizes how a group completed.
type Status int

const (
	// StatusOK means every source was hashed.
	StatusOK Status = iota

	// StatusWarnings means the group completed but some
	// sources were missing.
	StatusWarnings
)

// String implements fmt.Stringer.
func (st Status) String() string {
	switch st {
	case StatusOK:
		return "ok"
	case StatusWarnings:
		return "completed with warnings"
	default:
		return fmt.Sprintf("Status(%d)", int(st))
	}
}

// Result describes a processed group.
type Result struct {
	// Manifest is the mapping after the completion
	// transform.
	Manifest *manifest.Manifest

	// Output is the rendered text. It is empty when the
	// completion transform returned nil.
	Output string

	// Missing lists sources that did not exist.
	Missing []string

	// Written reports whether Dest was (re)written.
	Written bool

	// Status is StatusWarnings when Missing is not empty.
	Status Status
}

// Run hashes, formats and persists one group.
func Run(grp Group, cfg Config) (Result, error) {
	const errCtx = "running cachebuster"

	logger := loggerOf(cfg)

	res, err := Render(grp, cfg)
	if err != nil {
		return Result{}, err
	}

	switch {
	case grp.Dest == "" || res.Manifest == nil:
		logger.Debug("not writing output file")
	default:
		written, err := writeIfChanged(grp.Dest, res.Output)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", errCtx, err)
		}

		res.Written = written

		if !written {
			logger.Info("cachebuster file unchanged", "dest", grp.Dest)
		}
	}

	if res.Status == StatusWarnings {
		logger.Warn(
			"cachebuster file created, with warnings",
			"dest", grp.Dest,
			"entries", res.Manifest.Len(),
			"missing", len(res.Missing),
		)
	} else {
		logger.Info(
			"cachebuster file created",
			"dest", grp.Dest,
			"entries", res.Manifest.Len(),
		)
	}

	return res, nil
}

// Render hashes and formats one group without touching
// its destination. Errors from the configured digester,
// completion transform or formatter are returned
// unmodified.
func Render(grp Group, cfg Config) (Result, error) {
	const errCtx = "rendering cachebuster"

	ac, err := accumulator.New(accumulator.Config{
		Digester:    cfg.Digester,
		Length:      cfg.Length,
		BaseDir:     cfg.BaseDir,
		IncludeDirs: cfg.IncludeDirs,
		Logger:      loggerOf(cfg),
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	acc, err := ac.Accumulate(grp.Sources)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Manifest: acc.Hashes,
		Missing:  acc.Missing,
	}

	if acc.HasWarnings() {
		res.Status = StatusWarnings
	}

	if cfg.Complete != nil {
		res.Manifest, err = cfg.Complete(res.Manifest)
		if err != nil {
			return Result{}, err
		}
	}

	if res.Manifest == nil {
		return res, nil
	}

	fo := cfg.Formatter
	if fo == nil {
		fo, err = formatter.Lookup(formatter.DefaultFormat)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	res.Output, err = fo.Format(res.Manifest, cfg.Banner)
	if err != nil {
		return Result{}, err
	}

	return res, nil
}

// Check reports whether grp.Dest already holds exactly
// the manifest Run would write. A missing destination is
// stale. When Complete drops the manifest Run writes
// nothing, so the destination is always up to date.
func Check(grp Group, cfg Config) (bool, error) {
	const errCtx = "checking cachebuster"

	if grp.Dest == "" {
		return false, fmt.Errorf("%s: no destination", errCtx)
	}

	res, err := Render(grp, cfg)
	if err != nil {
		return false, err
	}

	if res.Manifest == nil {
		return true, nil
	}

	current, err := os.ReadFile(grp.Dest) //nolint:gosec // path is caller-provided by design
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return bytes.Equal(current, []byte(res.Output)), nil
}

// writeIfChanged writes content to dest, creating parent
// directories, unless dest already holds content.
func writeIfChanged(dest string, content string) (bool, error) {
	const errCtx = "writing destination"

	current, err := os.ReadFile(dest) //nolint:gosec // path is caller-provided by design
	if err == nil && bytes.Equal(current, []byte(content)) {
		return false, nil
	}

	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	//nolint:gosec // path is caller-provided by design
	if err := os.WriteFile(dest, []byte(content), 0o666); err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return true, nil
}

func loggerOf(cfg Config) *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}

	return slog.Default()
}
