// Package digester turns file content into hash strings. A Digester is either
// one of the named algorithms registered here (md5, sha1, sha256, sha512,
// blake3, xxh3), which render lowercase hex, or a caller-supplied Func whose
// string result is used as is. Truncate shortens a digest to the configured
// cache-busting length.
package digester
