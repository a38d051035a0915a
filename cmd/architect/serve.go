package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/architect/internal/cli"
	httpAdapter "github.com/aretw0/architect/pkg/adapters/http"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Exposes generation, validation and sessions as a JSON API over HTTP,
with Server-Sent Events per session and Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, cfg, err := buildStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()
		logger := stack.Logger

		addr := cfg.Server.Addr
		if v, _ := cmd.Flags().GetString("addr"); v != "" {
			addr = v
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(stack.Metrics.Handler()),
		}
		if len(cfg.Server.CORSOrigins) > 0 {
			opts = append(opts, httpAdapter.WithCORSOrigins(cfg.Server.CORSOrigins...))
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           httpAdapter.NewHandler(stack.Engine, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting Architect Server", "addr", srv.Addr, "models", stack.Engine.Models())
			serverErrors <- srv.ListenAndServe()
		}()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			logger.Info("Start shutdown...", "signal", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			logger.Info("Architect Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
	serveCmd.Flags().Bool("mock", false, "Use the offline demo model")
}
