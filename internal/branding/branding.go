// Package branding provides compile-time identity values for the CLI.
//
// branding.yaml is baked into the binary with //go:embed; forks edit that file
// instead of touching code.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName           string `yaml:"cli_name"`
	DisplayName       string `yaml:"display_name"`
	Description       string `yaml:"description"`
	HomeDir           string `yaml:"home_dir"`
	EnvPrefix         string `yaml:"env_prefix"`
	NpmName           string `yaml:"npm_name"`
	RegistryURL       string `yaml:"registry_url"`
	MirrorRegistryURL string `yaml:"mirror_registry_url"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:           "dapp",
			DisplayName:       "Dapp CLI",
			Description:       "Scaffold dapp projects and components from registry templates",
			HomeDir:           ".dapp-cli",
			EnvPrefix:         "DAPP",
			NpmName:           "dapp-cli",
			RegistryURL:       "https://registry.npmjs.org",
			MirrorRegistryURL: "https://registry.npmmirror.com",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "dapp").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".dapp-cli").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "DAPP").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// NpmName returns the registry package name the CLI itself is published under.
// The startup version notice compares against it.
func NpmName() string { load(); return defaults.NpmName }

// RegistryURL returns the default package registry endpoint.
func RegistryURL() string { load(); return defaults.RegistryURL }

// MirrorRegistryURL returns the alternate registry endpoint.
func MirrorRegistryURL() string { load(); return defaults.MirrorRegistryURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("home") → "DAPP_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
