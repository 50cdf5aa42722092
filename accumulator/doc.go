// Package accumulator walks source paths and builds the key to hash mapping
// for one destination group. Files are hashed from their raw content;
// directories are hashed from the concatenation of their descendant file
// hashes, visited depth first in lexical order. Every key is hashed at most
// once per Accumulator, so a file reached both directly and through a parent
// directory is read once and yields the same value in both places.
//
// Sources that do not exist are reported in Result.Missing and skipped. Any
// other filesystem failure aborts the group with ErrReadSource.
package accumulator
