package updater

import (
	"context"
	"fmt"
	"io"
	"time"
)

// refreshTimeout bounds the background registry lookup.
const refreshTimeout = 10 * time.Second

// CheckAndPrintBanner prints an update notice from the cached check and, if
// the cache is stale, refreshes it in the background for the next run. It
// never blocks on the network.
func (u *Updater) CheckAndPrintBanner(w io.Writer, homeDir string) {
	if !u.Enabled() {
		return
	}
	cache, err := LoadCache(homeDir)
	if err != nil {
		cache = nil
	}

	if cache.Matches(u.packageName, u.currentVersion) && cache.UpdateAvailable {
		PrintUpdateBanner(w, u.packageName, cache.CurrentVersion, cache.LatestVersion)
	}

	if cache.Stale(u.packageName, u.currentVersion, DefaultCacheMaxAge) {
		u.refreshing.Add(1)
		go func() {
			defer u.refreshing.Done()
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			_ = u.Refresh(ctx, homeDir)
		}()
	}
}

// PrintUpdateBanner prints the update notification to w.
func PrintUpdateBanner(w io.Writer, packageName, current, latest string) {
	fmt.Fprintf(w, "\nUpdate available: %s -> %s\n", current, latest)
	fmt.Fprintf(w, "    Run `npm install -g %s` to upgrade\n\n", packageName)
}

// Refresh queries the registry and rewrites the cache in homeDir.
func (u *Updater) Refresh(ctx context.Context, homeDir string) error {
	latest, err := u.CheckLatestVersion(ctx)
	if err != nil {
		return err
	}
	available, err := IsUpdateAvailable(u.currentVersion, latest)
	if err != nil {
		return err
	}
	return SaveCache(homeDir, &VersionCache{
		PackageName:     u.packageName,
		LatestVersion:   latest,
		CurrentVersion:  u.currentVersion,
		CheckedAt:       time.Now(),
		UpdateAvailable: available,
	})
}
