package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// LatestTag is the version token that asks for the newest published version.
const LatestTag = "latest"

// Latest picks the greatest version from versions. When base is non-empty only
// versions satisfying "^base" are candidates. Unparseable entries are skipped.
// The boolean is false when no candidate remains.
func Latest(versions []string, base string) (string, bool) {
	var constraint *semver.Constraints
	if base != "" {
		c, err := semver.NewConstraint("^" + base)
		if err != nil {
			return "", false
		}
		constraint = c
	}
	return greatest(versions, constraint)
}

func greatest(versions []string, constraint *semver.Constraints) (string, bool) {
	candidates := make(semver.Collection, 0, len(versions))
	for _, raw := range versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		if constraint != nil && !constraint.Check(v) {
			continue
		}
		candidates = append(candidates, v)
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Sort(candidates)
	return candidates[len(candidates)-1].Original(), true
}

// ResolveLatest returns the greatest published version of name.
func (c *Client) ResolveLatest(ctx context.Context, name string) (string, error) {
	versions, err := c.Versions(ctx, name)
	if err != nil {
		return "", err
	}
	v, ok := Latest(versions, "")
	if !ok {
		return "", &NotFoundError{Package: name}
	}
	return v, nil
}

// ResolveCompatible returns the greatest published version of name that is
// caret-compatible with base (same major, >= base).
func (c *Client) ResolveCompatible(ctx context.Context, name, base string) (string, error) {
	if _, err := semver.NewVersion(base); err != nil {
		return "", fmt.Errorf("parsing base version %q: %w", base, err)
	}
	versions, err := c.Versions(ctx, name)
	if err != nil {
		return "", err
	}
	v, ok := Latest(versions, base)
	if !ok {
		return "", &NotFoundError{Package: name, Constraint: "^" + base}
	}
	return v, nil
}

// Resolve turns a version token into a concrete version. "latest" (or empty)
// selects the greatest published version; a strict semantic version is
// returned unchanged without contacting the registry; anything else is treated
// as a semver range.
func (c *Client) Resolve(ctx context.Context, name, spec string) (string, error) {
	if spec == "" || spec == LatestTag {
		return c.ResolveLatest(ctx, name)
	}
	if v, err := semver.StrictNewVersion(spec); err == nil {
		return v.Original(), nil
	}
	constraint, err := semver.NewConstraint(spec)
	if err != nil {
		return "", fmt.Errorf("parsing version range %q for %s: %w", spec, name, err)
	}
	versions, err := c.Versions(ctx, name)
	if err != nil {
		return "", err
	}
	v, ok := greatest(versions, constraint)
	if !ok {
		return "", &NotFoundError{Package: name, Constraint: spec}
	}
	return v, nil
}
