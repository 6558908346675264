package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dapp-labs/dapp-cli/internal/prompt"
	"github.com/dapp-labs/dapp-cli/internal/registry"
	"github.com/dapp-labs/dapp-cli/internal/scaffold"
)

var (
	initForce bool
	initDir   string
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Initialize even if the directory is not empty, without clearing it")
	initCmd.Flags().StringVar(&initDir, "dir", "", "Directory to initialize (default: current directory)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [projectName]",
	Short: "Create a project or component from a template",
	Long: `Create a new project or component in the current directory.

The directory is checked first: if it contains anything besides dotfiles and
node_modules you are asked whether to continue and whether to clear it. The
chosen template package is downloaded into the local store (or updated when
already cached), copied, rendered with your project details, and its install
and start commands are run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	client := registry.New(cfg.Registry)

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	in := &scaffold.Initializer{
		Catalog:  cat,
		Prompter: prompt.New(cmd.InOrStdin(), cmd.ErrOrStderr(), interactive),
		Cache:    newCacheFactory(cfg, client),
		Runner:   &scaffold.ExecRunner{},
		Logger:   logger,
		Out:      cmd.OutOrStdout(),
	}

	opts := scaffold.Options{TargetDir: initDir, Force: initForce}
	if len(args) > 0 {
		opts.ProjectName = args[0]
	}

	res, err := in.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if res.State == scaffold.StateAborted {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nCreated %s %q in %s (%d files from %s)\n",
		res.Info.Kind, res.Info.Name, res.Dir, len(res.Files), res.Template.PackageName)
	return nil
}
