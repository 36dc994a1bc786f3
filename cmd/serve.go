package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	flagPort        = "port"
	flagBuildOnBoot = "build-on-start"
	shutdownTimeout = 10 * time.Second
)

// newServeCmd creates the 'serve' subcommand: the live sitemap, robots.txt,
// the cached job API and optional scheduled rebuilds.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live sitemap and job API",
		Long: `Starts the HTTP server with /sitemap.xml, /robots.txt, /api/jobs, health and
metrics endpoints. When schedule.rebuild_cron is set the site is rebuilt on
that schedule while the server runs. Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: runServeCommand,
	}
	cmd.Flags().Int(flagPort, 0, "listen port (overrides server.port)")
	cmd.Flags().Bool(flagBuildOnBoot, false, "run one build before accepting requests")
	return cmd
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := appInstance.GetLogger()

	if buildFirst, _ := cmd.Flags().GetBool(flagBuildOnBoot); buildFirst {
		if _, err := appInstance.GetOrchestrator().Run(ctx); err != nil {
			return fmt.Errorf("initial build: %w", err)
		}
	}

	rebuilder, err := appInstance.GetRebuilder()
	if err != nil {
		return fmt.Errorf("init rebuild schedule: %w", err)
	}
	if rebuilder != nil {
		if err := rebuilder.Start(ctx); err != nil {
			return fmt.Errorf("start rebuild schedule: %w", err)
		}
		defer rebuilder.Stop()
	}

	port := appInstance.GetConfig().Server.Port
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", port, err)
	}
	srv := &http.Server{
		Handler:           appInstance.GetServer().Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server started", zap.Int("port", port))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
