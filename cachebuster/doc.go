// Package cachebuster generates cache-busting manifests. Run processes one
// destination group: it hashes the group's sources, passes the mapping through
// the optional completion transform, renders it with the configured formatter
// and writes it to the destination. A destination that already holds the
// rendered text is left untouched, and Check reports whether a destination is
// up to date without writing anything.
//
// Missing sources do not fail a group; they are logged and reflected in the
// result status. Filesystem read failures, unsupported formats and errors from
// caller-supplied functions are returned to the caller.
package cachebuster
