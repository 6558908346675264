// Package config resolves the CLI's settings into an explicit Config value.
// Sources, lowest precedence first: built-in defaults, ~/<home>/config.yaml,
// ~/.env, DAPP_* environment variables, and command-line overrides.
package config
