package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/fars-data/internal/adapter/http"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the summary, year and map API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newServiceApp(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				a.cfg.HTTPAddr = addr
			}
			newRenderer, err := a.renderers()
			if err != nil {
				return err
			}

			srv := httpadapter.NewServer(a.cfg.HTTPAddr, a.pipeline, httpadapter.MapRendering{
				New:           newRenderer,
				DefaultFormat: a.cfg.PlotFormat,
			}, a.logger)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			ctx := cmd.Context()
			select {
			case <-ctx.Done():
			case err := <-errCh:
				return fmt.Errorf("http server: %w", err)
			}
			a.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("http server shutdown error", "error", err)
			}
			a.logger.Info("shutdown complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}
