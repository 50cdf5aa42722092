// Package main provides the cachebuster CLI that hashes
// asset files and writes a cache-busting manifest mapping
// each path to a short content hash.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/byte4ever/cachebuster/cachebuster"
	"github.com/byte4ever/cachebuster/config"
	"github.com/byte4ever/cachebuster/digester"
	"github.com/byte4ever/cachebuster/formatter"
)

var errStale = errors.New("manifest is out of date")

type arrayFlags []string

func (af *arrayFlags) String() string {
	return strings.Join(*af, ",")
}

func (af *arrayFlags) Set(value string) error {
	*af = append(*af, value)
	return nil
}

type options struct {
	configFile     string
	sources        arrayFlags
	stampInfoFiles arrayFlags
	dest           string
	format         string
	banner         string
	hash           string
	length         int
	baseDir        string
	includeDirs    bool
	check          bool
	verbose        bool
}

func parseFlags() options {
	var op options

	flag.StringVar(
		&op.configFile, "config", "",
		"task file (.yaml, .yml, .toml or .json) listing groups",
	)

	flag.Var(
		&op.sources, "src",
		"source file, directory or glob (repeatable)",
	)

	flag.Var(
		&op.stampInfoFiles, "stamp-info-file",
		"workspace status file used to stamp the banner (repeatable)",
	)

	flag.StringVar(
		&op.dest, "dest", "",
		"output manifest path (not written if empty)",
	)

	flag.StringVar(
		&op.format, "format", formatter.DefaultFormat,
		"output format: "+strings.Join(formatter.Names(), ", "),
	)

	flag.StringVar(
		&op.banner, "banner", "",
		"text prepended to the manifest",
	)

	flag.StringVar(
		&op.hash, "hash", digester.DefaultAlgorithm,
		"hash algorithm: "+strings.Join(digester.Names(), ", "),
	)

	flag.IntVar(
		&op.length, "length", 0,
		"truncate hashes to this many characters (0 keeps all)",
	)

	flag.StringVar(
		&op.baseDir, "basedir", "",
		"make manifest keys relative to this directory",
	)

	flag.BoolVar(
		&op.includeDirs, "include-dirs", false,
		"add directory sources to the manifest",
	)

	flag.BoolVar(
		&op.check, "check", false,
		"exit non-zero if a destination is out of date instead of writing",
	)

	flag.BoolVar(
		&op.verbose, "verbose", false,
		"enable debug logging",
	)

	flag.Parse()

	return op
}

// groups returns the groups to process, either from the
// task file or from the command line flags.
func (op options) groups() ([]config.Resolved, error) {
	const errCtx = "collecting groups"

	if op.configFile != "" {
		if len(op.sources) > 0 {
			return nil, fmt.Errorf(
				"%s: only one of --config or --src may be specified",
				errCtx,
			)
		}

		task, err := config.Load(op.configFile)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		resolved, err := task.Resolve()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		return resolved, nil
	}

	length := op.length
	banner := op.banner
	includeDirs := op.includeDirs

	task := config.Task{
		Options: config.Options{
			Format:         op.format,
			Banner:         &banner,
			Hash:           op.hash,
			Length:         &length,
			BaseDir:        op.baseDir,
			IncludeDirs:    &includeDirs,
			StampInfoFiles: op.stampInfoFiles,
		},
		Groups: []config.GroupSpec{
			{Src: op.sources, Dest: op.dest},
		},
	}

	resolved, err := task.Resolve()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return resolved, nil
}

func run() error {
	const errCtx = "cachebuster"

	op := parseFlags()

	if op.verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	resolved, err := op.groups()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	stale := 0

	for _, rs := range resolved {
		if op.check {
			ok, err := cachebuster.Check(rs.Group, rs.Config)
			if err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}

			if !ok {
				slog.Warn("cachebuster file is stale", "dest", rs.Group.Dest)

				stale++
			}

			continue
		}

		slog.Info(
			"generating cachebuster file",
			"dest", rs.Group.Dest,
			"sources", len(rs.Group.Sources),
		)

		if _, err := cachebuster.Run(rs.Group, rs.Config); err != nil {
			return fmt.Errorf(
				"%s: %s: %w", errCtx, rs.Group.Dest, err,
			)
		}
	}

	if stale > 0 {
		return fmt.Errorf("%s: %d file(s): %w", errCtx, stale, errStale)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
