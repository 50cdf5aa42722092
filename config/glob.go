package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandSources expands glob patterns into paths, in
// pattern order, without duplicates. Matches of a single
// pattern are in lexical order.
func ExpandSources(patterns []string) ([]string, error) {
	const errCtx = "expanding sources"

	var res []string

	seen := make(map[string]struct{})

	for _, pat := range patterns {
		if neg, ok := strings.CutPrefix(pat, "!"); ok {
			kept, err := exclude(res, neg)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", errCtx, err)
			}

			res = kept
			seen = make(map[string]struct{}, len(res))

			for _, pa := range res {
				seen[pa] = struct{}{}
			}

			continue
		}

		matches := []string{pat}

		if hasMeta(pat) {
			var err error

			matches, err = doublestar.FilepathGlob(pat)
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", errCtx, pat, err)
			}
		}

		for _, pa := range matches {
			if _, ok := seen[pa]; ok {
				continue
			}

			seen[pa] = struct{}{}
			res = append(res, pa)
		}
	}

	return res, nil
}

func exclude(paths []string, pattern string) ([]string, error) {
	pattern = filepath.ToSlash(filepath.Clean(pattern))

	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %s", doublestar.ErrBadPattern, pattern)
	}

	kept := paths[:0:0]

	for _, pa := range paths {
		ok, err := doublestar.Match(
			pattern, filepath.ToSlash(filepath.Clean(pa)),
		)
		if err != nil {
			return nil, err
		}

		if !ok {
			kept = append(kept, pa)
		}
	}

	return kept, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
