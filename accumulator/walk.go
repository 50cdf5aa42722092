package accumulator

import (
	"fmt"
	"os"
	"path/filepath"
)

// ListFiles returns every file below dir, depth first,
// with the entries of each directory in lexical order.
// Symbolic links are followed; a directory reached twice
// through links is listed once.
func ListFiles(dir string) ([]string, error) {
	const errCtx = "listing files"

	var files []string

	seen := make(map[string]struct{})

	if err := listInto(dir, seen, &files); err != nil {
		return nil, fmt.Errorf(
			"%s: %w: %w", errCtx, ErrReadSource, err,
		)
	}

	return files, nil
}

func listInto(
	dir string,
	seen map[string]struct{},
	files *[]string,
) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}

	if _, ok := seen[resolved]; ok {
		return nil
	}

	seen[resolved] = struct{}{}

	// os.ReadDir sorts entries by filename.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, en := range entries {
		pa := filepath.Join(dir, en.Name())

		isDir := en.IsDir()

		if en.Type()&os.ModeSymlink != 0 {
			fi, err := os.Stat(pa)
			if err != nil {
				return err
			}

			isDir = fi.IsDir()
		}

		if isDir {
			if err := listInto(pa, seen, files); err != nil {
				return err
			}

			continue
		}

		*files = append(*files, pa)
	}

	return nil
}
