package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/byte4ever/cachebuster/cachebuster"
)

// ErrUnknownFormat is returned for task files whose
// extension matches no decoder.
var ErrUnknownFormat = errors.New("unknown task file format")

// Task is the content of a task file.
type Task struct {
	// Options apply to every group.
	Options Options `json:"options" toml:"options" yaml:"options"`

	// Groups are processed in order.
	Groups []GroupSpec `json:"groups" toml:"groups" yaml:"groups"`
}

// GroupSpec describes one destination group.
type GroupSpec struct {
	Src     []string `json:"src" toml:"src" yaml:"src"`
	Dest    string   `json:"dest" toml:"dest" yaml:"dest"`
	Options Options  `json:"options" toml:"options" yaml:"options"`
}

// Resolved is a group ready to be passed to
// cachebuster.Run.
type Resolved struct {
	Group  cachebuster.Group
	Config cachebuster.Config
}

// Load reads and decodes the task file at path.
func Load(path string) (Task, error) {
	const errCtx = "loading task file"

	content, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return Task{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	task, err := Decode(content, filepath.Ext(path))
	if err != nil {
		return Task{}, fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	return task, nil
}

// Decode parses raw task file content. ext selects the
// decoder: ".yaml", ".yml", ".toml" or ".json".
func Decode(raw []byte, ext string) (Task, error) {
	const errCtx = "decoding task"

	var task Task

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalWithOptions(
			raw, &task, yaml.Strict(),
		); err != nil {
			return Task{}, fmt.Errorf("%s: %w", errCtx, err)
		}
	case ".toml":
		md, err := toml.Decode(string(raw), &task)
		if err != nil {
			return Task{}, fmt.Errorf("%s: %w", errCtx, err)
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Task{}, fmt.Errorf(
				"%s: unknown field %q", errCtx, undecoded[0].String(),
			)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()

		if err := dec.Decode(&task); err != nil {
			return Task{}, fmt.Errorf("%s: %w", errCtx, err)
		}
	default:
		return Task{}, fmt.Errorf("%s: %w: %q", errCtx, ErrUnknownFormat, ext)
	}

	return task, nil
}

// Resolve merges group options over task options, builds
// each group's configuration and expands its sources.
func (ta Task) Resolve() ([]Resolved, error) {
	const errCtx = "resolving task"

	res := make([]Resolved, 0, len(ta.Groups))

	for idx, gs := range ta.Groups {
		cfg, err := ta.Options.Merge(gs.Options).Build()
		if err != nil {
			return nil, fmt.Errorf(
				"%s: group %d: %w", errCtx, idx, err,
			)
		}

		sources, err := ExpandSources(gs.Src)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: group %d: %w", errCtx, idx, err,
			)
		}

		res = append(res, Resolved{
			Group: cachebuster.Group{
				Sources: sources,
				Dest:    gs.Dest,
			},
			Config: cfg,
		})
	}

	return res, nil
}
