package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klass-lk/blogboot/internal/app"
	"github.com/klass-lk/blogboot/internal/config"
	"github.com/klass-lk/blogboot/internal/observability"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, or the Lambda handler when RUNTIME=lambda",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			observability.SetupLogger(os.Stdout, cfg.Env, cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := a.Close(closeCtx); err != nil {
					slog.Error("shutdown failed", "error", err)
				}
			}()

			return a.Start(ctx, cfg.Port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "port to listen on, overrides PORT")
	return cmd
}
