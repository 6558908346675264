package registry

import "fmt"

// RegistryError reports an unreachable registry or a non-success response.
// Status is zero for transport failures.
type RegistryError struct {
	Package string
	URL     string
	Status  int
	Err     error
}

func (e *RegistryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("registry request for %s returned status %d", e.Package, e.Status)
	}
	return fmt.Sprintf("registry request for %s failed: %v", e.Package, e.Err)
}

func (e *RegistryError) Unwrap() error { return e.Err }

// NotFoundError reports a package with no version matching the request.
type NotFoundError struct {
	Package    string
	Constraint string
}

func (e *NotFoundError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("package %s has no published versions", e.Package)
	}
	return fmt.Sprintf("package %s has no version matching %s", e.Package, e.Constraint)
}
