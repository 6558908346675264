package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dapp-labs/dapp-cli/internal/catalog"
	"github.com/dapp-labs/dapp-cli/internal/project"
)

var (
	templatesKind string
	templatesAll  bool
	templatesJSON bool
)

func init() {
	templatesCmd.Flags().StringVar(&templatesKind, "kind", "", "Only show templates for this kind (project, component)")
	templatesCmd.Flags().BoolVar(&templatesAll, "all", false, "Include disabled templates")
	templatesCmd.Flags().BoolVar(&templatesJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(templatesCmd)
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available templates",
	RunE:  runTemplates,
}

// templateEntry is a catalog template for display.
type templateEntry struct {
	Package        string   `json:"package"`
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Tags           []string `json:"tags"`
	Enabled        bool     `json:"enabled"`
	InstallCommand []string `json:"install_command"`
	StartCommand   []string `json:"start_command,omitempty"`
}

func runTemplates(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	var kind project.Kind
	if templatesKind != "" {
		if kind, err = project.ParseKind(templatesKind); err != nil {
			return err
		}
	}
	entries := filterTemplates(cat.Templates(), kind, templatesAll)

	if templatesJSON {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling templates: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No templates available.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PACKAGE\tNAME\tVERSION\tKIND\tENABLED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", e.Package, e.Name, e.Version, strings.Join(e.Tags, ","), e.Enabled)
	}
	return w.Flush()
}

// filterTemplates keeps templates tagged with kind (any kind when empty) and
// drops disabled ones unless all is set.
func filterTemplates(templates []catalog.Template, kind project.Kind, all bool) []templateEntry {
	entries := []templateEntry{}
	for _, t := range templates {
		if !t.Enabled && !all {
			continue
		}
		if kind != "" && !t.HasTag(string(kind)) {
			continue
		}
		entries = append(entries, templateEntry{
			Package:        t.PackageName,
			Name:           t.Name,
			Version:        t.Version,
			Tags:           t.Tags,
			Enabled:        t.Enabled,
			InstallCommand: t.InstallCommand,
			StartCommand:   t.StartCommand,
		})
	}
	return entries
}
