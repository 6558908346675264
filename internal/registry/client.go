package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Metadata fetches the package document for name from <base>/<name>.
func (c *Client) Metadata(ctx context.Context, name string) (*Packument, error) {
	if name == "" {
		return nil, fmt.Errorf("package name is required")
	}
	u := c.baseURL + "/" + escapeName(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dapp-cli")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RegistryError{Package: name, URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RegistryError{Package: name, URL: u, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RegistryError{Package: name, URL: u, Err: fmt.Errorf("reading response body: %w", err)}
	}

	var doc Packument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &RegistryError{Package: name, URL: u, Err: fmt.Errorf("parsing package JSON: %w", err)}
	}
	return &doc, nil
}

// Versions returns every published version string of name, in no particular order.
func (c *Client) Versions(ctx context.Context, name string) ([]string, error) {
	doc, err := c.Metadata(ctx, name)
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(doc.Versions))
	for v := range doc.Versions {
		versions = append(versions, v)
	}
	return versions, nil
}

// escapeName keeps the scope separator of "@scope/pkg" encoded the way
// registries expect ("@scope%2fpkg").
func escapeName(name string) string {
	if strings.HasPrefix(name, "@") {
		if i := strings.Index(name, "/"); i > 0 {
			return name[:i] + "%2f" + url.PathEscape(name[i+1:])
		}
	}
	return url.PathEscape(name)
}
