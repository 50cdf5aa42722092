package formatter

import (
	"fmt"

	"github.com/byte4ever/cachebuster/manifest"
)

// JSON renders the banner followed immediately by a JSON
// object whose members follow manifest order.
type JSON struct{}

// Format implements Formatter.
func (JSON) Format(
	hashes *manifest.Manifest,
	banner string,
) (string, error) {
	const errCtx = "formatting json"

	if hashes == nil {
		hashes = manifest.New()
	}

	raw, err := hashes.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return banner + string(raw), nil
}
