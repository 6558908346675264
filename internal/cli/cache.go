package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dapp-labs/dapp-cli/internal/pkgcache"
	"github.com/dapp-labs/dapp-cli/internal/registry"
)

var cachePathVersion string

func init() {
	cachePathCmd.Flags().StringVar(&cachePathVersion, "version", registry.LatestTag, "Version, range, or \"latest\"")
	cacheCmd.AddCommand(cachePathCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the template store",
}

var cachePathCmd = &cobra.Command{
	Use:   "path <package>",
	Short: "Print the store directory for a template package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := registry.New(cfg.Registry)
		pkg, err := pkgcache.New(pkgcache.Options{
			StoreDir:  cfg.StoreDir,
			Name:      args[0],
			Version:   cachePathVersion,
			Resolver:  client,
			Installer: pkgcache.NewTarballInstaller(client),
		})
		if err != nil {
			return err
		}
		cached, err := pkg.Exists(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !cached {
			fmt.Fprintf(out, "%s (not cached)\n", pkg.Dir())
			return nil
		}
		fmt.Fprintf(out, "%s (cached)\n", pkg.Dir())
		if root := pkg.RootFile(); root != "" {
			fmt.Fprintf(out, "  entry: %s\n", root)
		}
		return nil
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached template package",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfg.StoreDir); os.IsNotExist(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "Template store is already empty.")
			return nil
		}
		if err := os.RemoveAll(cfg.StoreDir); err != nil {
			return fmt.Errorf("removing %s: %w", cfg.StoreDir, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", cfg.StoreDir)
		return nil
	},
}
