package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/dapp-labs/dapp-cli/internal/project"
)

//go:embed templates.yaml
var defaultCatalog []byte

// Template describes one scaffold package the CLI can install.
type Template struct {
	ID             string
	Name           string
	PackageName    string
	Version        string // concrete version, semver range, or "latest"
	Enabled        bool
	Tags           []string
	Ignore         []string // render exclusions, gitignore syntax
	InstallCommand []string
	StartCommand   []string
	Delims         [2]string // empty means text/template defaults
}

// HasTag reports whether t applies to the given kind.
func (t Template) HasTag(tag string) bool {
	for _, x := range t.Tags {
		if x == tag {
			return true
		}
	}
	return false
}

// Catalog is an immutable, ordered list of templates.
type Catalog struct {
	templates []Template
}

type fileFormat struct {
	Templates []templateEntry `yaml:"templates"`
}

type templateEntry struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Package        string   `yaml:"package"`
	Version        string   `yaml:"version"`
	Enabled        bool     `yaml:"enabled"`
	Tags           []string `yaml:"tags"`
	Ignore         []string `yaml:"ignore"`
	InstallCommand []string `yaml:"install_command"`
	StartCommand   []string `yaml:"start_command"`
	Delims         []string `yaml:"delims"`
}

// Load parses and validates a catalog document. Schema violations are
// returned as *SchemaError.
func Load(data []byte) (*Catalog, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &SchemaError{Issues: result.Issues}
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Templates))
	c := &Catalog{templates: make([]Template, 0, len(f.Templates))}
	for _, e := range f.Templates {
		if seen[e.Package] {
			return nil, fmt.Errorf("duplicate template package %q", e.Package)
		}
		seen[e.Package] = true

		t := Template{
			ID:             e.ID,
			Name:           e.Name,
			PackageName:    e.Package,
			Version:        e.Version,
			Enabled:        e.Enabled,
			Tags:           e.Tags,
			Ignore:         e.Ignore,
			InstallCommand: e.InstallCommand,
			StartCommand:   e.StartCommand,
		}
		if len(e.Delims) == 2 {
			t.Delims = [2]string{e.Delims[0], e.Delims[1]}
		}
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// LoadFile reads and loads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(defaultCatalog)
}

// Templates returns a copy of every template in declaration order.
func (c *Catalog) Templates() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Find returns the template published as packageName.
func (c *Catalog) Find(packageName string) (*Template, bool) {
	for i := range c.templates {
		if c.templates[i].PackageName == packageName {
			t := c.templates[i]
			return &t, true
		}
	}
	return nil, false
}

// ForKind returns the enabled templates tagged with kind, in declaration order.
func (c *Catalog) ForKind(kind project.Kind) []Template {
	var out []Template
	for _, t := range c.templates {
		if t.Enabled && t.HasTag(string(kind)) {
			out = append(out, t)
		}
	}
	return out
}
