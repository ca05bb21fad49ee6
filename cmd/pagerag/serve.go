package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/pagerag/internal/transport/chi"
	"github.com/kailas-cloud/pagerag/internal/version"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.cfg
			logger := c.logger

			logger.Info("Starting pagerag API server",
				zap.String("version", version.Version),
				zap.String("commit", version.Commit),
				zap.String("env", c.env),
				zap.Int("http_port", cfg.HTTP.Port),
			)

			a := newApp(cmd.Context(), cfg, logger, true)
			defer a.Close()

			server := chiTransport.NewServer(a.index, a.answer, a.health, logger)
			r := chiTransport.NewRouter(server, logger)

			addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
			srv := &http.Server{
				Addr:         addr,
				Handler:      r,
				ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
				WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				logger.Info("Received shutdown signal")
			case err := <-errCh:
				return fmt.Errorf("http server: %w", err)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Error during shutdown", zap.Error(err))
			}

			logger.Info("Server stopped gracefully")
			return nil
		},
	}
}
