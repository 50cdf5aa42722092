package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/cachebuster/manifest"
)

// Template renders one line per manifest entry from
// placeholder templates. Entry may reference {key} and
// {hash}; Header and Footer may reference {banner} and
// {count}. Unknown placeholders are kept as is.
type Template struct {
	// Header is written first. Empty means "{banner}".
	Header string `json:"header" toml:"header" yaml:"header"`

	// Entry is expanded once per key. Empty means
	// "{key},{hash}\n".
	Entry string `json:"entry" toml:"entry" yaml:"entry"`

	// Separator is written between entries.
	Separator string `json:"separator" toml:"separator" yaml:"separator"`

	// Footer is written last.
	Footer string `json:"footer" toml:"footer" yaml:"footer"`

	// StartTag and EndTag delimit placeholders. Empty
	// means "{" and "}".
	StartTag string `json:"startTag" toml:"startTag" yaml:"startTag"`
	EndTag   string `json:"endTag" toml:"endTag" yaml:"endTag"`
}

// IsZero reports whether no field is set.
func (tp Template) IsZero() bool {
	return tp == Template{}
}

// Format implements Formatter.
func (tp Template) Format(
	hashes *manifest.Manifest,
	banner string,
) (string, error) {
	const errCtx = "formatting template"

	startTag, endTag := tp.tags()

	header := tp.Header
	if header == "" {
		header = startTag + "banner" + endTag
	}

	entry := tp.Entry
	if entry == "" {
		entry = startTag + "key" + endTag + "," +
			startTag + "hash" + endTag + "\n"
	}

	entryTpl, err := fasttemplate.NewTemplate(entry, startTag, endTag)
	if err != nil {
		return "", fmt.Errorf("%s: entry: %w", errCtx, err)
	}

	outer := map[string]interface{}{
		"banner": banner,
		"count":  strconv.Itoa(hashes.Len()),
	}

	var sb strings.Builder

	sb.WriteString(
		fasttemplate.ExecuteStringStd(header, startTag, endTag, outer),
	)

	idx := 0

	for key, val := range hashes.All() {
		if idx > 0 {
			sb.WriteString(tp.Separator)
		}

		idx++

		hash, err := scalar(val)
		if err != nil {
			return "", fmt.Errorf("%s: %s: %w", errCtx, key, err)
		}

		sb.WriteString(entryTpl.ExecuteStringStd(
			map[string]interface{}{"key": key, "hash": hash},
		))
	}

	sb.WriteString(
		fasttemplate.ExecuteStringStd(tp.Footer, startTag, endTag, outer),
	)

	return sb.String(), nil
}

// tags returns the configured start/end tags, falling
// back to single-brace defaults.
func (tp Template) tags() (string, string) {
	startTag := tp.StartTag
	if startTag == "" {
		startTag = "{"
	}

	endTag := tp.EndTag
	if endTag == "" {
		endTag = "}"
	}

	return startTag, endTag
}

// scalar renders a value for substitution. Nested values
// are rendered as compact JSON.
func scalar(val interface{}) (string, error) {
	if sub, ok := nested(val); ok {
		raw, err := sub.MarshalJSON()
		if err != nil {
			return "", err
		}

		return string(raw), nil
	}

	if num, ok := number(val); ok {
		return num, nil
	}

	return fmt.Sprint(val), nil
}
