package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dapp-labs/dapp-cli/internal/branding"
)

const (
	fileName = "config"
	fileType = "yaml"

	// TemplateDirName is the template workspace under Home.
	TemplateDirName = "template"
	// StoreDirName is the package store under the template workspace.
	StoreDirName = "node_modules"
)

// Keys understood in config.yaml and as DAPP_<KEY> environment variables.
const (
	KeyHome        = "cli_home"
	KeyRegistry    = "registry"
	KeyMirror      = "mirror"
	KeyTargetPath  = "target_path"
	KeyCatalogFile = "catalog_file"
	KeyDebug       = "debug"
	KeyNoUpdate    = "no_update_check"
)

// Keys lists every supported key.
var Keys = []string{KeyHome, KeyRegistry, KeyMirror, KeyTargetPath, KeyCatalogFile, KeyDebug, KeyNoUpdate}

// Config is the resolved configuration handed to every component.
type Config struct {
	UserHome    string
	Home        string // CLI home, e.g. ~/.dapp-cli
	TemplateDir string
	StoreDir    string
	Registry    string
	TargetPath  string // local template package used instead of the store
	CatalogFile string // replaces the embedded catalog when set
	Debug       bool
	UpdateCheck bool
}

// Overrides carries values from command-line flags. Empty fields are ignored.
type Overrides struct {
	UserHome   string
	Registry   string
	TargetPath string
	Debug      bool
}

// Load resolves the configuration. It fails when the user home directory
// cannot be determined or does not exist.
func Load(o Overrides) (*Config, error) {
	userHome, err := userHomeDir(o.UserHome)
	if err != nil {
		return nil, err
	}

	// Variables already in the environment take precedence over ~/.env.
	envFile := filepath.Join(userHome, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	v := newViper()
	home := resolveHome(userHome, v.GetString(KeyHome))
	if err := readConfigFile(v, filePath(home)); err != nil {
		return nil, err
	}
	// A home set only in config.yaml still moves everything else.
	home = resolveHome(userHome, v.GetString(KeyHome))

	cfg := &Config{
		UserHome:    userHome,
		Home:        home,
		TemplateDir: filepath.Join(home, TemplateDirName),
		Registry:    v.GetString(KeyRegistry),
		TargetPath:  v.GetString(KeyTargetPath),
		CatalogFile: v.GetString(KeyCatalogFile),
		Debug:       v.GetBool(KeyDebug),
		UpdateCheck: !v.GetBool(KeyNoUpdate),
	}
	cfg.StoreDir = filepath.Join(cfg.TemplateDir, StoreDirName)

	if v.GetBool(KeyMirror) && cfg.Registry == branding.RegistryURL() {
		cfg.Registry = branding.MirrorRegistryURL()
	}
	if o.Registry != "" {
		cfg.Registry = o.Registry
	}
	if o.TargetPath != "" {
		cfg.TargetPath = o.TargetPath
	}
	if o.Debug {
		cfg.Debug = true
	}
	if cfg.TargetPath != "" {
		abs, err := filepath.Abs(cfg.TargetPath)
		if err != nil {
			return nil, fmt.Errorf("resolving target path %s: %w", cfg.TargetPath, err)
		}
		cfg.TargetPath = abs
	}
	return cfg, nil
}

// FilePath returns the config file for this configuration.
func (c *Config) FilePath() string {
	return filePath(c.Home)
}

// EnsureDir creates the CLI home directory if it does not exist.
func (c *Config) EnsureDir() error {
	if err := os.MkdirAll(c.Home, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", c.Home, err)
	}
	return nil
}

// Get returns the stored value of key, or "" when unset.
func (c *Config) Get(key string) (string, error) {
	if !isKnownKey(key) {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	v := newViper()
	if err := readConfigFile(v, c.FilePath()); err != nil {
		return "", err
	}
	return v.GetString(key), nil
}

// Set writes key to the config file.
func (c *Config) Set(key, value string) error {
	if !isKnownKey(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := c.EnsureDir(); err != nil {
		return err
	}

	// A bare instance keeps environment values out of the written file.
	v := viper.New()
	v.SetConfigType(fileType)
	if err := readConfigFile(v, c.FilePath()); err != nil {
		return err
	}
	v.Set(key, value)

	if err := v.WriteConfigAs(c.FilePath()); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyHome, branding.HomeDir())
	v.SetDefault(KeyRegistry, branding.RegistryURL())
	v.SetDefault(KeyMirror, false)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyNoUpdate, false)
	// Bind keys without defaults so AutomaticEnv picks them up in Get.
	_ = v.BindEnv(KeyTargetPath)
	_ = v.BindEnv(KeyCatalogFile)
	return v
}

// readConfigFile merges path into v. A missing file is not an error.
func readConfigFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

func filePath(home string) string {
	return filepath.Join(home, fileName+"."+fileType)
}

// resolveHome anchors a relative CLI home at the user's home directory.
func resolveHome(userHome, home string) string {
	if filepath.IsAbs(home) {
		return home
	}
	return filepath.Join(userHome, home)
}

func userHomeDir(override string) (string, error) {
	home := override
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("user home directory not found: %w", err)
		}
	}
	info, err := os.Stat(home)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("user home directory %s does not exist", home)
	}
	return home, nil
}

func isKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
