package stamper

import (
	"fmt"
	"os"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Stamps maps workspace status keys to their values.
type Stamps map[string]interface{}

// Load reads workspace status files and merges them.
// Each line is "KEY VALUE" split on the first space;
// lines without a space are skipped. Later files override
// earlier ones.
func Load(infoFiles []string) (Stamps, error) {
	const errCtx = "loading stamps"

	stamps := make(Stamps)

	for _, sf := range infoFiles {
		content, err := os.ReadFile(sf) //nolint:gosec // paths from configuration
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		for _, line := range strings.Split(string(content), "\n") {
			key, val, ok := strings.Cut(
				strings.TrimSuffix(line, "\r"), " ",
			)
			if ok {
				stamps[key] = val
			}
		}
	}

	return stamps, nil
}

// Expand substitutes {VAR} placeholders in text. Unknown
// variables are preserved as is.
func (st Stamps) Expand(text string) string {
	return fasttemplate.ExecuteStringStd(
		text, "{", "}", st,
	)
}

// Banner expands banner against the given status files.
// Without status files the banner is returned unchanged.
func Banner(infoFiles []string, banner string) (string, error) {
	const errCtx = "stamping banner"

	if len(infoFiles) == 0 {
		return banner, nil
	}

	stamps, err := Load(infoFiles)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return stamps.Expand(banner), nil
}
