package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newRegistryServer serves a packument listing versions for every package name.
func newRegistryServer(t *testing.T, versions ...string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		entries := make([]string, 0, len(versions))
		for _, v := range versions {
			entries = append(entries, fmt.Sprintf(`%q: {"name": %q, "version": %q, "dist": {"tarball": "http://example.invalid/%s.tgz"}}`, v, name, v, v))
		}
		fmt.Fprintf(w, `{"name": %q, "versions": {%s}}`, name, strings.Join(entries, ","))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLatest(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		base     string
		want     string
		wantOK   bool
	}{
		{"two versions", []string{"1.0.0", "1.2.0"}, "", "1.2.0", true},
		{"unordered input", []string{"2.0.0", "10.0.0", "9.1.0"}, "", "10.0.0", true},
		{"prerelease below release", []string{"1.0.0-beta.1", "1.0.0"}, "", "1.0.0", true},
		{"caret keeps major", []string{"1.0.0", "1.4.2", "2.0.0"}, "1.0.0", "1.4.2", true},
		{"caret lower bound", []string{"1.0.0", "1.1.0"}, "1.2.0", "", false},
		{"invalid entries skipped", []string{"garbage", "0.3.0"}, "", "0.3.0", true},
		{"empty", nil, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Latest(tt.versions, tt.base)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Latest(%v, %q) = (%q, %v), want (%q, %v)", tt.versions, tt.base, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLatest_GreaterAlwaysWins(t *testing.T) {
	pairs := [][2]string{
		{"0.0.1", "0.0.2"},
		{"1.9.9", "1.10.0"},
		{"1.0.0-alpha", "1.0.0-beta"},
		{"1.0.0-rc.1", "1.0.0"},
		{"2.3.4", "12.0.0"},
	}
	for _, p := range pairs {
		for _, order := range [][]string{{p[0], p[1]}, {p[1], p[0]}} {
			got, ok := Latest(order, "")
			if !ok || got != p[1] {
				t.Errorf("Latest(%v) = %q, want %q", order, got, p[1])
			}
		}
	}
}

func TestResolveLatest(t *testing.T) {
	server := newRegistryServer(t, "1.0.0", "1.2.0", "1.1.5")
	c := New(server.URL, WithHTTPClient(server.Client()))

	got, err := c.ResolveLatest(context.Background(), "tpl-a")
	if err != nil {
		t.Fatalf("ResolveLatest failed: %v", err)
	}
	if got != "1.2.0" {
		t.Errorf("ResolveLatest = %q, want 1.2.0", got)
	}
}

func TestResolveLatest_NoVersions(t *testing.T) {
	server := newRegistryServer(t)
	c := New(server.URL, WithHTTPClient(server.Client()))

	_, err := c.ResolveLatest(context.Background(), "tpl-empty")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
}

func TestResolveLatest_Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, WithHTTPClient(server.Client()))
	_, err := c.ResolveLatest(context.Background(), "tpl-a")
	var re *RegistryError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RegistryError, got %v", err)
	}
	if re.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", re.Status)
	}
}

func TestResolveLatest_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := New(url)
	_, err := c.ResolveLatest(context.Background(), "tpl-a")
	var re *RegistryError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RegistryError, got %v", err)
	}
	if re.Status != 0 {
		t.Errorf("transport failure should have zero status, got %d", re.Status)
	}
}

func TestResolveLatest_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json{"))
	}))
	defer server.Close()

	c := New(server.URL, WithHTTPClient(server.Client()))
	_, err := c.ResolveLatest(context.Background(), "tpl-a")
	var re *RegistryError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RegistryError, got %v", err)
	}
}

func TestResolveCompatible(t *testing.T) {
	server := newRegistryServer(t, "1.0.0", "1.3.0", "2.0.0")
	c := New(server.URL, WithHTTPClient(server.Client()))

	got, err := c.ResolveCompatible(context.Background(), "dapp-cli", "1.0.0")
	if err != nil {
		t.Fatalf("ResolveCompatible failed: %v", err)
	}
	if got != "1.3.0" {
		t.Errorf("ResolveCompatible = %q, want 1.3.0", got)
	}

	if _, err := c.ResolveCompatible(context.Background(), "dapp-cli", "3.0.0"); err == nil {
		t.Error("expected NotFoundError for base 3.0.0")
	}
}

func TestResolve(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"versions": {"1.0.0": {}, "1.5.0": {}, "2.1.0": {}}}`))
	}))
	defer server.Close()
	c := New(server.URL, WithHTTPClient(server.Client()))
	ctx := context.Background()

	tests := []struct {
		spec string
		want string
	}{
		{"latest", "2.1.0"},
		{"", "2.1.0"},
		{"~1.0.0", "1.0.0"},
		{">=1.0.0 <2.0.0", "1.5.0"},
	}
	for _, tt := range tests {
		got, err := c.Resolve(ctx, "tpl-a", tt.spec)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", tt.spec, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.spec, got, tt.want)
		}
	}

	before := requests
	got, err := c.Resolve(ctx, "tpl-a", "1.2.0")
	if err != nil || got != "1.2.0" {
		t.Fatalf("Resolve(exact) = %q, %v", got, err)
	}
	if requests != before {
		t.Error("exact version should not hit the registry")
	}
}

func TestEscapeName(t *testing.T) {
	if got := escapeName("@dapp/tpl"); got != "@dapp%2ftpl" {
		t.Errorf("escapeName(scoped) = %q", got)
	}
	if got := escapeName("tpl-a"); got != "tpl-a" {
		t.Errorf("escapeName(plain) = %q", got)
	}
}
