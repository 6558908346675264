package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dapp-labs/dapp-cli/internal/branding"
	"github.com/dapp-labs/dapp-cli/internal/config"
	"github.com/dapp-labs/dapp-cli/internal/registry"
	"github.com/dapp-labs/dapp-cli/internal/updater"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagDebug      bool
	flagTargetPath string
	flagRegistry   string

	// Set by the root PersistentPreRunE for every command.
	cfg    *config.Config
	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` scaffolds dapp projects and components from versioned
template packages published to an npm registry.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagDebug, "debug", "d", false, "Enable debug logging")
	pf.StringVar(&flagTargetPath, "target-path", "", "Use a local template package directory instead of the registry")
	pf.StringVar(&flagRegistry, "registry", "", "npm registry base URL")
}

// setup resolves configuration and logging, then prints the cached update
// banner. It never waits on the network.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(config.Overrides{
		Registry:   flagRegistry,
		TargetPath: flagTargetPath,
		Debug:      flagDebug,
	})
	if err != nil {
		return err
	}
	cfg = c
	logger = newLogger(cfg.Debug)
	logger.Debug("configuration loaded",
		"home", cfg.Home,
		"store", cfg.StoreDir,
		"registry", cfg.Registry,
		"target_path", cfg.TargetPath,
	)

	if cmd.Name() == "version" || !cfg.UpdateCheck {
		return nil
	}
	u := updater.New(buildVersion, branding.NpmName(), registry.New(cfg.Registry))
	u.CheckAndPrintBanner(cmd.ErrOrStderr(), cfg.Home)
	return nil
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command with build info injected via ldflags. Errors
// are printed to stderr as a single line; the caller only sets the exit code.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Debug("command failed", "error_type", fmt.Sprintf("%T", err), "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
