package registry

import (
	"net/http"
	"strings"

	"github.com/dapp-labs/dapp-cli/internal/branding"
)

// Packument is the subset of a registry package document the CLI reads.
type Packument struct {
	Name     string                     `json:"name"`
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]VersionManifest `json:"versions"`
}

// VersionManifest is the per-version manifest inside a Packument.
type VersionManifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Main    string `json:"main,omitempty"`
	Dist    Dist   `json:"dist"`
}

// Dist describes where a version's tarball lives.
type Dist struct {
	Tarball string `json:"tarball"`
	Shasum  string `json:"shasum,omitempty"`
}

// Client queries a single registry endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// New creates a Client for baseURL. An empty baseURL selects DefaultRegistry(false).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultRegistry(false)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the registry endpoint this client queries.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DefaultRegistry returns the public registry, or the mirror when mirror is true.
func DefaultRegistry(mirror bool) string {
	if mirror {
		return branding.MirrorRegistryURL()
	}
	return branding.RegistryURL()
}
