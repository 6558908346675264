// Package pkgcache manages the local store of template packages. A Package maps
// a (name, version) pair to a deterministic directory under the store, reports
// whether that directory is present, and installs or updates it through an
// Installer backend. Version tokens such as "latest" are resolved once per
// Package and reused for every path computation afterwards.
package pkgcache
