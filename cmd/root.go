// Package cmd defines and implements the CLI commands for the mission-site executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/JakeFAU/mission-site/internal/api"
	"github.com/JakeFAU/mission-site/internal/app"
	"github.com/JakeFAU/mission-site/internal/build"
	"github.com/JakeFAU/mission-site/internal/config"
	"github.com/JakeFAU/mission-site/internal/logging"
	"github.com/JakeFAU/mission-site/internal/schedule"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands will use.
// This allows us to inject a fake app during tests.
type App interface {
	Close()
	GetConfig() config.Config
	GetLogger() *zap.Logger
	GetOrchestrator() *build.Orchestrator
	GetSitemap() *api.SitemapHandler
	GetServer() *api.Server
	GetRebuilder() (*schedule.Rebuilder, error)
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.NewApp(ctx, cfg, logger)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "mission-site",
		Short: "Static site generator for the freelance mission board.",
		Long: `mission-site reads the mission collection and publishes one static page per
job together with sitemap.xml and robots.txt. It can also serve the live
sitemap and a cached job API, rebuilding the site on a schedule.`,
		SilenceUsage: true,

		// Runs after flag parsing and before the subcommand's RunE.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)

			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		// Skipped by cobra when RunE fails; executeRoot closes the app then.
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			closeApp(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (env MISSIONS_* and .env are also read)")

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSitemapCmd())

	return cmd
}

// loadConfig reads the config file and environment, then applies any
// subcommand flags the user set explicitly.
func loadConfig(path string, flags *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if f := flags.Lookup(flagOutput); f != nil && f.Changed {
		cfg.Output.Target = config.TargetLocal
		cfg.Output.Dir = f.Value.String()
	}
	if f := flags.Lookup(flagSkipInvalid); f != nil && f.Changed {
		cfg.Build.SkipInvalid, _ = flags.GetBool(flagSkipInvalid)
	}
	if f := flags.Lookup(flagPort); f != nil && f.Changed {
		cfg.Server.Port, _ = flags.GetInt(flagPort)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// executeRoot runs root and releases the application services of the executed
// command when it fails.
func executeRoot(ctx context.Context, root *cobra.Command) error {
	cmd, err := root.ExecuteContextC(ctx)
	if err != nil && cmd != nil {
		closeApp(cmd)
	}
	return err
}

func closeApp(cmd *cobra.Command) {
	if cmd.Context() == nil {
		return
	}
	if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
		appInstance.Close()
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	logger, err := logging.New(logging.Config{Level: "info"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = executeRoot(ctx, newRootCmd())
	stop()
	if err != nil {
		logger.Fatal("Command execution failed", zap.Error(err))
	}
}
