package pkgcache

import "fmt"

// InstallError reports a failed package installation. The cache directory for
// Version may not exist or may be left behind by an interrupted rename; callers
// must not assume any cleanup beyond what the Installer documents.
type InstallError struct {
	Package string
	Version string
	Err     error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("installing %s@%s: %v", e.Package, e.Version, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }
