// Package cli defines the Cobra command tree for the dapp CLI. Each file in
// this package registers one top-level command (init, templates, cache, etc.)
// with the root command. Commands load the configuration, wire the internal
// packages together, and only handle flags, output formatting, and prompts.
package cli
