package formatter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/byte4ever/cachebuster/manifest"
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = "json"

// ErrUnsupportedFormat is returned by Lookup for a name
// that matches no built-in formatter.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Formatter renders a manifest, prefixed by banner.
type Formatter interface {
	Format(hashes *manifest.Manifest, banner string) (string, error)
}

// Func adapts a plain function to Formatter. It is fully
// responsible for the output, banner included.
type Func func(hashes *manifest.Manifest, banner string) (string, error)

// Format calls fn.
func (fn Func) Format(
	hashes *manifest.Manifest,
	banner string,
) (string, error) {
	return fn(hashes, banner)
}

var builtins = map[string]Formatter{
	"json":       JSON{},
	"php":        PHP{},
	"code-array": PHP{},
	"yaml":       YAML{},
	"template":   Template{},
}

// Lookup returns the built-in formatter registered under
// name. An empty name selects DefaultFormat.
func Lookup(name string) (Formatter, error) {
	const errCtx = "looking up formatter"

	if name == "" {
		name = DefaultFormat
	}

	fo, ok := builtins[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf(
			"%s: %w: %s", errCtx, ErrUnsupportedFormat, name,
		)
	}

	return fo, nil
}

// Names lists the built-in format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// sortedKeys returns the keys of a plain map in lexical
// order so nested maps render deterministically.
func sortedKeys[V any](mp map[string]V) []string {
	keys := make([]string, 0, len(mp))
	for key := range mp {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// nested converts map-like values into an ordered
// manifest. Plain maps are ordered by key.
func nested(val interface{}) (*manifest.Manifest, bool) {
	switch typed := val.(type) {
	case *manifest.Manifest:
		if typed == nil {
			return manifest.New(), true
		}

		return typed, true
	case map[string]interface{}:
		ma := manifest.New()
		for _, key := range sortedKeys(typed) {
			ma.Set(key, typed[key])
		}

		return ma, true
	case map[string]string:
		ma := manifest.New()
		for _, key := range sortedKeys(typed) {
			ma.Set(key, typed[key])
		}

		return ma, true
	default:
		return nil, false
	}
}
