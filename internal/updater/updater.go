package updater

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// VersionSource finds the newest published version compatible with base.
type VersionSource interface {
	ResolveCompatible(ctx context.Context, name, base string) (string, error)
}

// Updater checks the registry for newer releases of one package.
type Updater struct {
	currentVersion string
	packageName    string
	source         VersionSource

	refreshing sync.WaitGroup
}

// New creates an Updater for packageName at currentVersion.
func New(currentVersion, packageName string, source VersionSource) *Updater {
	return &Updater{
		currentVersion: currentVersion,
		packageName:    packageName,
		source:         source,
	}
}

// CurrentVersion returns the version this updater was created with.
func (u *Updater) CurrentVersion() string {
	return u.currentVersion
}

// Enabled reports whether the running build has a comparable version.
// Development builds ("dev", empty) never check.
func (u *Updater) Enabled() bool {
	_, err := parseSemver(u.currentVersion)
	return err == nil
}

// CheckLatestVersion returns the newest release within the current major
// version line.
func (u *Updater) CheckLatestVersion(ctx context.Context) (string, error) {
	base := strings.TrimPrefix(u.currentVersion, "v")
	latest, err := u.source.ResolveCompatible(ctx, u.packageName, base)
	if err != nil {
		return "", fmt.Errorf("checking latest %s: %w", u.packageName, err)
	}
	return latest, nil
}

// CompareVersions returns -1, 0 or 1 as current is older than, equal to, or
// newer than latest. A leading "v" is tolerated on either side.
func CompareVersions(current, latest string) (int, error) {
	cv, err := parseSemver(current)
	if err != nil {
		return 0, fmt.Errorf("parsing current version %q: %w", current, err)
	}
	lv, err := parseSemver(latest)
	if err != nil {
		return 0, fmt.Errorf("parsing latest version %q: %w", latest, err)
	}
	return cv.Compare(lv), nil
}

// IsUpdateAvailable returns true if latest is newer than current.
func IsUpdateAvailable(current, latest string) (bool, error) {
	cmp, err := CompareVersions(current, latest)
	if err != nil {
		return false, err
	}
	return cmp < 0, nil
}

func parseSemver(version string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(version, "v"))
}
