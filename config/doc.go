// Package config loads cachebuster task files. A task holds default options
// and a list of destination groups; each group names source patterns, a
// destination and options that override the task defaults. Task files are
// read as YAML, TOML or JSON depending on their extension, and unknown fields
// are rejected.
//
// Source patterns support doublestar globs ("static/**/*.css"). A pattern
// prefixed with "!" removes earlier matches. Patterns without glob
// characters are kept verbatim so a missing file is still reported as a
// missing source.
package config
