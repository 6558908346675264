package updater

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheFileName = "version-check.json"
	// DefaultCacheMaxAge is how long a version check stays valid.
	DefaultCacheMaxAge = 24 * time.Hour
)

// VersionCache is the persisted result of the last version check.
type VersionCache struct {
	PackageName     string    `json:"package_name"`
	LatestVersion   string    `json:"latest_version"`
	CurrentVersion  string    `json:"current_version"`
	CheckedAt       time.Time `json:"checked_at"`
	UpdateAvailable bool      `json:"update_available"`
}

// LoadCache reads the version cache from homeDir.
// Returns nil, nil if the cache file does not exist (first run).
func LoadCache(homeDir string) (*VersionCache, error) {
	data, err := os.ReadFile(filepath.Join(homeDir, cacheFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading version cache: %w", err)
	}

	var cache VersionCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing version cache: %w", err)
	}
	return &cache, nil
}

// SaveCache writes the version cache to homeDir, replacing any previous one.
func SaveCache(homeDir string, cache *VersionCache) error {
	if err := os.MkdirAll(homeDir, 0755); err != nil {
		return fmt.Errorf("creating home directory: %w", err)
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling version cache: %w", err)
	}

	// Concurrent CLI runs may refresh at the same time; rename keeps readers
	// from seeing a truncated file.
	tmp, err := os.CreateTemp(homeDir, cacheFileName+".*")
	if err != nil {
		return fmt.Errorf("writing version cache: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing version cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing version cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(homeDir, cacheFileName)); err != nil {
		return fmt.Errorf("writing version cache: %w", err)
	}
	return nil
}

// Matches reports whether c was written for this package and CLI version.
func (c *VersionCache) Matches(packageName, currentVersion string) bool {
	return c != nil && c.PackageName == packageName && c.CurrentVersion == currentVersion
}

// Stale reports whether c needs refreshing: it is missing, belongs to another
// package or CLI version, or is older than maxAge.
func (c *VersionCache) Stale(packageName, currentVersion string, maxAge time.Duration) bool {
	if !c.Matches(packageName, currentVersion) {
		return true
	}
	return time.Since(c.CheckedAt) > maxAge
}
