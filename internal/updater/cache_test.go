package updater

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCache_Missing(t *testing.T) {
	cache, err := LoadCache(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cache, "first run has no cache")
}

func TestSaveCache_CreatesHomeAndLeavesNoTempFiles(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".dapp-cli")
	checked := time.Now().Truncate(time.Second)

	require.NoError(t, SaveCache(home, &VersionCache{
		PackageName:     "dapp-cli",
		LatestVersion:   "2.1.0",
		CurrentVersion:  "2.0.3",
		CheckedAt:       checked,
		UpdateAvailable: true,
	}))

	loaded, err := LoadCache(home)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.Matches("dapp-cli", "2.0.3"))
	assert.Equal(t, "2.1.0", loaded.LatestVersion)
	assert.True(t, loaded.CheckedAt.Equal(checked))

	leftovers, err := filepath.Glob(filepath.Join(home, cacheFileName+".*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestLoadCache_Corrupted(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, cacheFileName), []byte(`{"latest_version":`), 0644))

	_, err := LoadCache(home)
	assert.ErrorContains(t, err, "parsing version cache")
}

func TestVersionCache_Stale(t *testing.T) {
	fresh := time.Now()
	old := time.Now().Add(-DefaultCacheMaxAge - time.Minute)

	tests := []struct {
		name  string
		cache *VersionCache
		want  bool
	}{
		{"missing", nil, true},
		{"fresh", &VersionCache{PackageName: "dapp-cli", CurrentVersion: "2.0.0", CheckedAt: fresh}, false},
		{"expired", &VersionCache{PackageName: "dapp-cli", CurrentVersion: "2.0.0", CheckedAt: old}, true},
		{"older cli", &VersionCache{PackageName: "dapp-cli", CurrentVersion: "1.9.0", CheckedAt: fresh}, true},
		{"renamed package", &VersionCache{PackageName: "dapp", CurrentVersion: "2.0.0", CheckedAt: fresh}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cache.Stale("dapp-cli", "2.0.0", DefaultCacheMaxAge))
		})
	}
}
