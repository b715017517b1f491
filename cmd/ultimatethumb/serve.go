package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dixieflatline76/UltimateThumb/config"
	"github.com/dixieflatline76/UltimateThumb/pkg/api"
	"github.com/dixieflatline76/UltimateThumb/util/log"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve thumbnails over HTTP",
		Long: `Serve thumbnails by name, rendering missing files on demand.

Routes:
  <prefix><hash>/<file>       1x thumbnail
  <prefix>2x/<hash>/<file>    2x thumbnail
  /health                     health status
  /metrics                    Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := api.NewServer(a.engine, api.Options{
				Addr:           c.cfg.Server.Addr,
				Prefix:         c.cfg.Server.Prefix,
				XAccelRedirect: c.cfg.Server.XAccelRedirect,
				AllowedOrigins: c.cfg.Server.AllowedOrigins,
				RenderRate:     c.cfg.Server.RenderRate,
				RenderBurst:    c.cfg.Server.RenderBurst,
				H2C:            c.cfg.Server.H2C,
				Version:        config.AppVersion,
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Print("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
}
