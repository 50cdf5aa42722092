package digester

import (
	"crypto/md5"  //nolint:gosec // cache busting, not security
	"crypto/sha1" //nolint:gosec // cache busting, not security
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
)

// DefaultAlgorithm is used when no hash is configured.
const DefaultAlgorithm = "md5"

// ErrUnsupportedAlgorithm is returned by Lookup for an
// unknown algorithm name.
var ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

// ErrReadFile wraps failures to read the file passed to
// CalculateDigest.
var ErrReadFile = errors.New("reading file")

// Digester hashes raw bytes into a string.
type Digester interface {
	Digest(data []byte) (string, error)
}

// Func adapts a plain function to Digester. Errors are
// returned to the caller untouched.
type Func func(data []byte) (string, error)

// Digest calls fn.
func (fn Func) Digest(data []byte) (string, error) {
	return fn(data)
}

// Algorithm is a named digest rendered as lowercase hex.
type Algorithm struct {
	name string
	sum  func(data []byte) []byte
}

// Name returns the registered algorithm name.
func (al Algorithm) Name() string {
	return al.name
}

// Digest returns the hex encoded digest of data.
func (al Algorithm) Digest(data []byte) (string, error) {
	return hex.EncodeToString(al.sum(data)), nil
}

var algorithms = map[string]Algorithm{
	"md5": {name: "md5", sum: func(data []byte) []byte {
		sum := md5.Sum(data) //nolint:gosec // cache busting
		return sum[:]
	}},
	"sha1": {name: "sha1", sum: func(data []byte) []byte {
		sum := sha1.Sum(data) //nolint:gosec // cache busting
		return sum[:]
	}},
	"sha224": {name: "sha224", sum: func(data []byte) []byte {
		sum := sha256.Sum224(data)
		return sum[:]
	}},
	"sha256": {name: "sha256", sum: func(data []byte) []byte {
		sum := sha256.Sum256(data)
		return sum[:]
	}},
	"sha384": {name: "sha384", sum: func(data []byte) []byte {
		sum := sha512.Sum384(data)
		return sum[:]
	}},
	"sha512": {name: "sha512", sum: func(data []byte) []byte {
		sum := sha512.Sum512(data)
		return sum[:]
	}},
	"blake3": {name: "blake3", sum: func(data []byte) []byte {
		sum := blake3.Sum256(data)
		return sum[:]
	}},
	"xxh3": {name: "xxh3", sum: func(data []byte) []byte {
		sum := xxh3.Hash128(data).Bytes()
		return sum[:]
	}},
}

// Lookup returns the named algorithm. Names are matched
// case-insensitively; an empty name selects
// DefaultAlgorithm.
func Lookup(name string) (Algorithm, error) {
	const errCtx = "looking up hash algorithm"

	if name == "" {
		name = DefaultAlgorithm
	}

	al, ok := algorithms[strings.ToLower(name)]
	if !ok {
		return Algorithm{}, fmt.Errorf(
			"%s: %w: %s", errCtx, ErrUnsupportedAlgorithm, name,
		)
	}

	return al, nil
}

// Names lists the registered algorithm names in sorted
// order.
func Names() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Truncate shortens digest to at most length characters.
// A length of zero or less keeps the full digest.
func Truncate(digest string, length int) string {
	if length <= 0 || utf8.RuneCountInString(digest) <= length {
		return digest
	}

	idx := 0
	for pos := range digest {
		if idx == length {
			return digest[:pos]
		}

		idx++
	}

	return digest
}

// CalculateDigest reads the file at path, hashes its
// content with dg and truncates the result to length.
// Read failures wrap ErrReadFile; errors from dg are
// returned unmodified.
func CalculateDigest(
	path string,
	dg Digester,
	length int,
) (string, error) {
	const errCtx = "calculating digest"

	content, err := os.ReadFile(path) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", errCtx, ErrReadFile, err)
	}

	return Sum(content, dg, length)
}

// Sum hashes data with dg and truncates the result to
// length. Errors from custom digesters are returned
// unmodified.
func Sum(data []byte, dg Digester, length int) (string, error) {
	digest, err := dg.Digest(data)
	if err != nil {
		return "", err //nolint:wrapcheck // custom function errors pass through
	}

	return Truncate(digest, length), nil
}
