package config

import (
	"errors"
	"fmt"

	"github.com/byte4ever/cachebuster/cachebuster"
	"github.com/byte4ever/cachebuster/digester"
	"github.com/byte4ever/cachebuster/formatter"
	"github.com/byte4ever/cachebuster/stamper"
)

// ErrInvalidOptions is returned by Build for option
// values that cannot be used.
var ErrInvalidOptions = errors.New("invalid options")

// Options mirrors cachebuster.Config in a form that can be
// decoded from a task file. Nil pointers and empty strings
// mean "not set" so that group options can override task
// options selectively.
type Options struct {
	Format         string              `json:"format" toml:"format" yaml:"format"`
	Banner         *string             `json:"banner" toml:"banner" yaml:"banner"`
	Hash           string              `json:"hash" toml:"hash" yaml:"hash"`
	Length         *int                `json:"length" toml:"length" yaml:"length"`
	BaseDir        string              `json:"basedir" toml:"basedir" yaml:"basedir"`
	IncludeDirs    *bool               `json:"includeDirs" toml:"includeDirs" yaml:"includeDirs"`
	StampInfoFiles []string            `json:"stampInfoFiles" toml:"stampInfoFiles" yaml:"stampInfoFiles"`
	Template       *formatter.Template `json:"template" toml:"template" yaml:"template"`
}

// Merge returns op with every field set in over replacing
// the corresponding field of op.
func (op Options) Merge(over Options) Options {
	res := op

	if over.Format != "" {
		res.Format = over.Format
	}

	if over.Banner != nil {
		res.Banner = over.Banner
	}

	if over.Hash != "" {
		res.Hash = over.Hash
	}

	if over.Length != nil {
		res.Length = over.Length
	}

	if over.BaseDir != "" {
		res.BaseDir = over.BaseDir
	}

	if over.IncludeDirs != nil {
		res.IncludeDirs = over.IncludeDirs
	}

	if over.StampInfoFiles != nil {
		res.StampInfoFiles = over.StampInfoFiles
	}

	if over.Template != nil {
		res.Template = over.Template
	}

	return res
}

// Build resolves names into a cachebuster.Config. The
// banner is stamped from StampInfoFiles when any are set.
func (op Options) Build() (cachebuster.Config, error) {
	const errCtx = "building config"

	hasTemplate := op.Template != nil && !op.Template.IsZero()

	format := op.Format
	if format == "" && hasTemplate {
		format = "template"
	}

	fo, err := formatter.Lookup(format)
	if err != nil {
		return cachebuster.Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if _, ok := fo.(formatter.Template); ok && hasTemplate {
		fo = *op.Template
	}

	al, err := digester.Lookup(op.Hash)
	if err != nil {
		return cachebuster.Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	var length int

	if op.Length != nil {
		length = *op.Length
	}

	if length < 0 {
		return cachebuster.Config{}, fmt.Errorf(
			"%s: %w: negative length %d",
			errCtx, ErrInvalidOptions, length,
		)
	}

	var banner string

	if op.Banner != nil {
		banner = *op.Banner
	}

	banner, err = stamper.Banner(op.StampInfoFiles, banner)
	if err != nil {
		return cachebuster.Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return cachebuster.Config{
		Formatter:   fo,
		Banner:      banner,
		Digester:    al,
		Length:      length,
		BaseDir:     op.BaseDir,
		IncludeDirs: op.IncludeDirs != nil && *op.IncludeDirs,
	}, nil
}
