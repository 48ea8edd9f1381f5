package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/speclist/config"
	"github.com/giygas/speclist/data"
	"github.com/giygas/speclist/logging"
	"github.com/giygas/speclist/scheduler"
	"github.com/giygas/speclist/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the species list over HTTP and refresh it on a schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, closeLogs, err := setup()
		if err != nil {
			return err
		}
		defer closeLogs()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runServe(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe loads the data, starts the API and blocks until ctx is done
func runServe(ctx context.Context, cfg *config.Config) error {
	dataContainer := data.NewDataContainer()

	// A refresh covers the download plus the parse
	sched := scheduler.NewScheduler(dataContainer, newConverter(cfg), cfg.UpdateTimes, 2*cfg.FetchTimeout)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, dataContainer, sched)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		logging.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-serverErr
}
