// Package formatter renders a manifest into the text written to a cachebuster
// destination. The built-in formats are json, php (also registered as
// code-array), yaml and template; Func lets callers supply any other shape.
// Every formatter prepends the banner and produces byte-identical output for
// identical input.
package formatter
