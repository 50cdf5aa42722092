// Package manifest holds the insertion-ordered mapping from asset keys to
// cache-busting hashes. A Manifest preserves the order in which keys were
// first set, so serialized output is stable across runs. Values are usually
// hash strings but a completion transform may replace them with numbers or
// nested manifests.
package manifest
