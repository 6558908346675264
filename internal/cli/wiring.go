package cli

import (
	"fmt"

	"github.com/dapp-labs/dapp-cli/internal/catalog"
	"github.com/dapp-labs/dapp-cli/internal/config"
	"github.com/dapp-labs/dapp-cli/internal/pkgcache"
	"github.com/dapp-labs/dapp-cli/internal/registry"
	"github.com/dapp-labs/dapp-cli/internal/scaffold"
)

// loadCatalog returns the user's catalog file when configured, otherwise the
// embedded default.
func loadCatalog(c *config.Config) (*catalog.Catalog, error) {
	if c.CatalogFile != "" {
		return catalog.LoadFile(c.CatalogFile)
	}
	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("loading built-in catalog: %w", err)
	}
	return cat, nil
}

// newCacheFactory maps templates to store entries. With a target path
// configured, every template resolves to that local directory instead.
func newCacheFactory(c *config.Config, client *registry.Client) scaffold.CacheFactory {
	installer := pkgcache.NewTarballInstaller(client)
	return func(tpl catalog.Template) (scaffold.Cache, error) {
		opts := pkgcache.Options{
			Name:      tpl.PackageName,
			Version:   tpl.Version,
			Resolver:  client,
			Installer: installer,
		}
		if c.TargetPath != "" {
			opts.TargetPath = c.TargetPath
		} else {
			opts.StoreDir = c.StoreDir
		}
		pkg, err := pkgcache.New(opts)
		if err != nil {
			return nil, err
		}
		return pkg, nil
	}
}
