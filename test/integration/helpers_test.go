//go:build integration

package integration_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	UserHome   string // HOME, contains .dapp-cli/
	ProjectDir string // where init writes
}

// setupTestEnv points HOME at a temp dir and clears DAPP_* variables so every
// operation is sandboxed. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		UserHome:   t.TempDir(),
		ProjectDir: filepath.Join(t.TempDir(), "my-dapp"),
	}
	t.Setenv("HOME", env.UserHome)
	t.Setenv("USERPROFILE", env.UserHome)
	for _, key := range []string{"CLI_HOME", "REGISTRY", "MIRROR", "TARGET_PATH", "CATALOG_FILE", "DEBUG", "NO_UPDATE_CHECK"} {
		t.Setenv("DAPP_"+key, "")
	}
	return env
}

// fakeRegistry serves packuments and tarballs for a set of published packages.
type fakeRegistry struct {
	server *httptest.Server

	mu        sync.Mutex
	packages  map[string]map[string][]byte // name -> version -> tarball
	downloads map[string]int               // "name@version" -> count
}

func newFakeRegistry(t *testing.T) *fakeRegistry {
	t.Helper()
	r := &fakeRegistry{
		packages:  map[string]map[string][]byte{},
		downloads: map[string]int{},
	}
	r.server = httptest.NewServer(http.HandlerFunc(r.handle))
	t.Cleanup(r.server.Close)
	return r
}

func (r *fakeRegistry) URL() string { return r.server.URL }

// publish adds name@version with files placed under package/ in the tarball.
func (r *fakeRegistry) publish(t *testing.T, name, version string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for path, content := range files {
		hdr := &tar.Header{Name: "package/" + path, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	tw.Close()
	gw.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.packages[name] == nil {
		r.packages[name] = map[string][]byte{}
	}
	r.packages[name][version] = buf.Bytes()
}

func (r *fakeRegistry) downloadCount(name, version string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.downloads[name+"@"+version]
}

func (r *fakeRegistry) handle(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := strings.TrimPrefix(req.URL.Path, "/")
	if strings.HasPrefix(path, "-/") {
		// /-/<name>/<version>.tgz
		parts := strings.Split(strings.TrimPrefix(path, "-/"), "/")
		name, version := parts[0], strings.TrimSuffix(parts[1], ".tgz")
		data, ok := r.packages[name][version]
		if !ok {
			http.NotFound(w, req)
			return
		}
		r.downloads[name+"@"+version]++
		w.Write(data)
		return
	}

	versions, ok := r.packages[path]
	if !ok {
		http.NotFound(w, req)
		return
	}
	doc := map[string]any{"name": path}
	manifests := map[string]any{}
	for v, data := range versions {
		sum := sha1.Sum(data)
		manifests[v] = map[string]any{
			"name":    path,
			"version": v,
			"dist": map[string]string{
				"tarball": r.server.URL + "/-/" + path + "/" + v + ".tgz",
				"shasum":  hex.EncodeToString(sum[:]),
			},
		}
	}
	doc["versions"] = manifests
	json.NewEncoder(w).Encode(doc)
}

// recordingRunner stands in for package managers, which CI machines may lack.
type recordingRunner struct {
	calls [][]string
}

func (r *recordingRunner) Run(_ context.Context, dir string, argv []string) error {
	r.calls = append(r.calls, append([]string{dir}, argv...))
	return nil
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
