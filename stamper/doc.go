// Package stamper expands single-brace {VAR} placeholders in cachebuster
// banners from Bazel workspace status files. Load parses one or more status
// files into Stamps; Banner combines loading and expansion and leaves the
// banner untouched when no status file is configured.
package stamper
