package formatter

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/byte4ever/cachebuster/manifest"
)

// YAML renders the banner followed by a YAML mapping in
// manifest order.
type YAML struct{}

// Format implements Formatter.
func (YAML) Format(
	hashes *manifest.Manifest,
	banner string,
) (string, error) {
	const errCtx = "formatting yaml"

	if hashes == nil {
		hashes = manifest.New()
	}

	buf, err := yaml.Marshal(toMapSlice(hashes))
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return banner + string(buf), nil
}

func toMapSlice(ma *manifest.Manifest) yaml.MapSlice {
	ms := make(yaml.MapSlice, 0, ma.Len())

	for key, val := range ma.All() {
		if sub, ok := nested(val); ok {
			val = toMapSlice(sub)
		}

		ms = append(ms, yaml.MapItem{Key: key, Value: val})
	}

	return ms
}
