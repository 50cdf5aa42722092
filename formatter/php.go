package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/byte4ever/cachebuster/manifest"
)

// PHP renders a PHP script returning a nested associative
// array literal:
//
//	<?php
//	<banner>
//	return array(
//		'key' => 'hash',
//	);
//
// Nested manifests and maps become nested arrays indented
// by one tab per level. Numbers are written unquoted.
type PHP struct{}

var phpQuoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// Format implements Formatter.
func (PHP) Format(
	hashes *manifest.Manifest,
	banner string,
) (string, error) {
	var sb strings.Builder

	sb.WriteString("<?php\n")
	sb.WriteString(banner)
	sb.WriteString("\nreturn ")

	if hashes == nil {
		hashes = manifest.New()
	}

	writePHPArray(&sb, hashes, 0)

	sb.WriteString(";\n")

	return sb.String(), nil
}

func writePHPArray(
	sb *strings.Builder,
	arr *manifest.Manifest,
	depth int,
) {
	indent := strings.Repeat("\t", depth)

	sb.WriteString("array(\n")

	for key, val := range arr.All() {
		sb.WriteString(indent)
		sb.WriteString("\t'")
		sb.WriteString(phpQuoter.Replace(key))
		sb.WriteString("' => ")

		if val == nil {
			writePHPArray(sb, manifest.New(), depth+1)
			sb.WriteString(",\n")

			continue
		}

		if sub, ok := nested(val); ok {
			writePHPArray(sb, sub, depth+1)
			sb.WriteString(",\n")

			continue
		}

		if num, ok := number(val); ok {
			sb.WriteString(num)
			sb.WriteString(",\n")

			continue
		}

		sb.WriteByte('\'')
		sb.WriteString(phpQuoter.Replace(fmt.Sprint(val)))
		sb.WriteString("',\n")
	}

	sb.WriteString(indent)
	sb.WriteByte(')')
}

// number renders numeric values in their shortest exact
// form.
func number(val interface{}) (string, bool) {
	switch typed := val.(type) {
	case int:
		return strconv.Itoa(typed), true
	case int8, int16, int32, int64:
		return fmt.Sprint(typed), true
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(typed), true
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	default:
		return "", false
	}
}
