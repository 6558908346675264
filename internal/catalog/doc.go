// Package catalog holds the list of templates the CLI can scaffold from.
//
// The default catalog is embedded in the binary and validated against an
// embedded JSON Schema when it is loaded. Users can replace it with their own
// YAML file; the same schema applies.
package catalog
