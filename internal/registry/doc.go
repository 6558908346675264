// Package registry talks to an npm-compatible package registry. It fetches
// package metadata, lists published versions, and negotiates which concrete
// version satisfies a "latest", exact, or range request.
package registry
