package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dapp-labs/dapp-cli/internal/catalog"
	"github.com/dapp-labs/dapp-cli/internal/config"
	"github.com/dapp-labs/dapp-cli/internal/project"
	"github.com/dapp-labs/dapp-cli/internal/registry"
)

// runCLI executes the root command against an isolated home directory.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, key := range config.Keys {
		t.Setenv("DAPP_"+strings.ToUpper(key), "")
	}
	t.Setenv("DAPP_NO_UPDATE_CHECK", "true")

	// Package-level flag values survive between executions.
	flagDebug, flagTargetPath, flagRegistry = false, "", ""
	templatesKind, templatesAll, templatesJSON = "", false, false
	versionShort, versionJSON = false, false
	cachePathVersion = registry.LatestTag

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFilterTemplates(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		kind project.Kind
		all  bool
		want int
	}{
		{"enabled only", "", false, 2},
		{"everything", "", true, 3},
		{"projects", project.KindProject, false, 1},
		{"all projects", project.KindProject, true, 2},
		{"components", project.KindComponent, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterTemplates(cat.Templates(), tt.kind, tt.all)
			if len(got) != tt.want {
				t.Errorf("filterTemplates() returned %d entries, want %d", len(got), tt.want)
			}
		})
	}
}

func TestTemplatesCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "templates", "--json", "--kind", "project", "--all")
	if err != nil {
		t.Fatalf("templates: %v", err)
	}

	var entries []templateEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("parsing output %q: %v", out, err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 project templates, got %d", len(entries))
	}
	if entries[0].Package != "dapp-cli-template-normal" {
		t.Errorf("first entry = %s", entries[0].Package)
	}
}

func TestTemplatesCommand_BadKind(t *testing.T) {
	if _, err := runCLI(t, "templates", "--kind", "library"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestVersionCommand(t *testing.T) {
	buildVersion, buildCommit, buildDate = "1.2.3", "abc123", "2026-01-01"
	out, err := runCLI(t, "version", "--json", "--registry", "https://npm.example.com")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var info versionInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("parsing output %q: %v", out, err)
	}
	if info.Version != "1.2.3" || info.Name != "dapp-cli" {
		t.Errorf("unexpected version info: %+v", info)
	}
	if info.Registry != "https://npm.example.com" {
		t.Errorf("registry = %q", info.Registry)
	}
	if !strings.HasSuffix(info.Store, filepath.Join(".dapp-cli", "template", "node_modules")) {
		t.Errorf("store = %q", info.Store)
	}
}

func TestConfigSetGet(t *testing.T) {
	if _, err := runCLI(t, "config", "set", "registry", "https://npm.example.com"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	if !strings.HasSuffix(cfg.FilePath(), filepath.Join(".dapp-cli", "config.yaml")) {
		t.Errorf("unexpected config file %s", cfg.FilePath())
	}
	got, err := cfg.Get(config.KeyRegistry)
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://npm.example.com" {
		t.Errorf("registry = %q", got)
	}
}

func TestNewCacheFactory(t *testing.T) {
	tpl := catalog.Template{PackageName: "tpl-a", Version: "1.0.0"}
	client := registry.New("http://127.0.0.1:0")

	store := t.TempDir()
	pkg, err := newCacheFactory(&config.Config{StoreDir: store}, client)(tpl)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(pkg.Dir(), store) {
		t.Errorf("Dir() = %s, want under %s", pkg.Dir(), store)
	}

	local := t.TempDir()
	pkg, err = newCacheFactory(&config.Config{StoreDir: store, TargetPath: local}, client)(tpl)
	if err != nil {
		t.Fatal(err)
	}
	if pkg.Dir() != local {
		t.Errorf("Dir() = %s, want target path %s", pkg.Dir(), local)
	}
}

func TestLoadCatalog_UserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "templates:\n  - {id: mine, name: Mine, package: my-template, version: latest, enabled: true, tags: [project], install_command: [pnpm, install]}\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := loadCatalog(&config.Config{CatalogFile: path})
	if err != nil {
		t.Fatalf("loadCatalog() error: %v", err)
	}
	if _, ok := cat.Find("my-template"); !ok {
		t.Error("user catalog should replace the default")
	}
	if _, ok := cat.Find("dapp-cli-template-normal"); ok {
		t.Error("default templates should not be merged in")
	}
}

func TestCachePath_ExactVersionNotCached(t *testing.T) {
	out, err := runCLI(t, "cache", "path", "@dapp/tpl", "--version", "1.0.0")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	want := string(filepath.Separator) + "_@dapp_tpl@1.0.0@@dapp/tpl (not cached)"
	if !strings.Contains(out, want) {
		t.Errorf("output = %q, want suffix %q", out, want)
	}
}

func TestCacheClean_EmptyStore(t *testing.T) {
	out, err := runCLI(t, "cache", "clean")
	if err != nil {
		t.Fatalf("cache clean: %v", err)
	}
	if !strings.Contains(out, "already empty") {
		t.Errorf("output = %q", out)
	}
}

func TestConfigList(t *testing.T) {
	out, err := runCLI(t, "config", "list")
	if err != nil {
		t.Fatalf("config list: %v", err)
	}
	for _, key := range config.Keys {
		if !strings.Contains(out, key) {
			t.Errorf("output missing %s:\n%s", key, out)
		}
	}
}
