package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/ideology-sim/internal/api"
	"github.com/talgya/ideology-sim/internal/persistence"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /simulate over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port, _ = cmd.Flags().GetInt("port")
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			var db *persistence.DB
			if cfg.Database.Path != "" {
				db, err = persistence.Open(cfg.Database.Path)
				if err != nil {
					return err
				}
				defer db.Close()
				slog.Info("run archive opened", "path", cfg.Database.Path)
			} else {
				slog.Warn("database.path not set, runs will not be archived")
			}

			srv := api.NewServer(cfg, db)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(srv.Start)
			g.Go(func() error {
				<-ctx.Done()
				slog.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().Int("port", 0, "Listen port (overrides config)")
	return cmd
}
