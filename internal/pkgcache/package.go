package pkgcache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// TemplateSubdir is the directory inside a package that holds the scaffold files.
const TemplateSubdir = "template"

// Resolver turns version tokens into concrete versions.
type Resolver interface {
	Resolve(ctx context.Context, name, spec string) (string, error)
	ResolveLatest(ctx context.Context, name string) (string, error)
}

// Request is a single package installation handed to an Installer.
type Request struct {
	Name    string
	Version string
	Dest    string // final package directory
}

// Installer places the contents of a package version into Request.Dest.
type Installer interface {
	Install(ctx context.Context, req Request) error
}

// Options configures a Package.
type Options struct {
	// StoreDir is the shared cache root. When empty, TargetPath is used as the
	// package directory directly (local development templates).
	StoreDir   string
	TargetPath string
	Name       string
	Version    string // concrete version, range, or "latest"
	Resolver   Resolver
	Installer  Installer
}

// Package is one template package in the store.
type Package struct {
	storeDir   string
	targetPath string
	name       string
	spec       string
	version    string
	resolved   bool
	resolver   Resolver
	installer  Installer
}

// New validates opts and returns a Package. No I/O happens until the first
// Exists, Install, or Update call.
func New(opts Options) (*Package, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("package name is required")
	}
	if opts.Version == "" {
		return nil, fmt.Errorf("package version is required for %s", opts.Name)
	}
	if opts.StoreDir == "" && opts.TargetPath == "" {
		return nil, fmt.Errorf("either a store directory or a target path is required for %s", opts.Name)
	}
	if opts.StoreDir != "" && (opts.Resolver == nil || opts.Installer == nil) {
		return nil, fmt.Errorf("a resolver and an installer are required when a store directory is set")
	}
	return &Package{
		storeDir:   opts.StoreDir,
		targetPath: opts.TargetPath,
		name:       opts.Name,
		spec:       opts.Version,
		resolver:   opts.Resolver,
		installer:  opts.Installer,
	}, nil
}

// CacheKeyPrefix returns name with every "/" replaced so it is a single path segment.
func CacheKeyPrefix(name string) string {
	return strings.ReplaceAll(name, "/", "_")
}

// CacheKey returns "<prefix>@<version>@<name>".
func CacheKey(name, version string) string {
	return CacheKeyPrefix(name) + "@" + version + "@" + name
}

// CacheDir returns the directory that holds name@version under storeDir.
func CacheDir(storeDir, name, version string) string {
	return filepath.Join(storeDir, "_"+CacheKey(name, version))
}

// Name returns the package name.
func (p *Package) Name() string { return p.name }

// Version returns the resolved version, or the requested token if resolution
// has not happened yet.
func (p *Package) Version() string {
	if p.resolved {
		return p.version
	}
	return p.spec
}

// CacheKey returns the cache key for the resolved version.
func (p *Package) CacheKey() string {
	return CacheKey(p.name, p.Version())
}

// Dir returns the package directory: the cache directory when a store is
// configured, otherwise the target path.
func (p *Package) Dir() string {
	if p.storeDir == "" {
		return p.targetPath
	}
	return CacheDir(p.storeDir, p.name, p.Version())
}

// TemplateDir returns the scaffold subtree inside Dir.
func (p *Package) TemplateDir() string {
	return filepath.Join(p.Dir(), TemplateSubdir)
}

// prepare creates the store and resolves the version exactly once.
func (p *Package) prepare(ctx context.Context) error {
	if p.storeDir != "" {
		if err := os.MkdirAll(p.storeDir, 0755); err != nil {
			return fmt.Errorf("creating store directory %s: %w", p.storeDir, err)
		}
	}
	if p.resolved {
		return nil
	}
	if v, err := semver.StrictNewVersion(p.spec); err == nil {
		p.version = v.Original()
		p.resolved = true
		return nil
	}
	if p.resolver == nil {
		return fmt.Errorf("cannot resolve %s@%s without a registry", p.name, p.spec)
	}
	v, err := p.resolver.Resolve(ctx, p.name, p.spec)
	if err != nil {
		return err
	}
	p.version = v
	p.resolved = true
	return nil
}

// Exists reports whether the package is present locally.
func (p *Package) Exists(ctx context.Context) (bool, error) {
	if p.storeDir == "" {
		return pathExists(p.targetPath), nil
	}
	if err := p.prepare(ctx); err != nil {
		return false, err
	}
	return pathExists(p.Dir()), nil
}

// Install installs the resolved version into Dir. Resolution failures are
// returned as-is; backend failures are wrapped in *InstallError.
func (p *Package) Install(ctx context.Context) error {
	if err := p.prepare(ctx); err != nil {
		return err
	}
	return p.installVersion(ctx, p.Version())
}

// Update installs the newest published version if it is not cached yet and
// switches the Package to it. It is a no-op when that version is already
// present, and for packages without a store.
func (p *Package) Update(ctx context.Context) error {
	if p.storeDir == "" {
		return nil
	}
	if err := p.prepare(ctx); err != nil {
		return err
	}
	latest, err := p.resolver.ResolveLatest(ctx, p.name)
	if err != nil {
		return err
	}
	if pathExists(CacheDir(p.storeDir, p.name, latest)) {
		return nil
	}
	if err := p.installVersion(ctx, latest); err != nil {
		return err
	}
	p.version = latest
	return nil
}

func (p *Package) installVersion(ctx context.Context, version string) error {
	if p.installer == nil {
		return &InstallError{Package: p.name, Version: version, Err: fmt.Errorf("no installer configured")}
	}
	dest := p.targetPath
	if p.storeDir != "" {
		dest = CacheDir(p.storeDir, p.name, version)
	}
	req := Request{Name: p.name, Version: version, Dest: dest}
	if err := p.installer.Install(ctx, req); err != nil {
		return &InstallError{Package: p.name, Version: version, Err: err}
	}
	return nil
}

// RootFile returns the absolute path of the file named by the "main" field of
// the package's package.json, or "" when there is no manifest, no main entry,
// or the entry does not exist.
func (p *Package) RootFile() string {
	dir := p.Dir()
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return ""
	}
	var manifest struct {
		Main string `json:"main"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil || manifest.Main == "" {
		return ""
	}
	root := filepath.Join(dir, filepath.FromSlash(manifest.Main))
	if !pathExists(root) {
		return ""
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	return abs
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
