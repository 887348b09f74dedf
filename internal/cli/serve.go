package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/drawview/internal/server"
	"github.com/matzehuels/drawview/pkg/cache"
	"github.com/matzehuels/drawview/pkg/pipeline"
	"github.com/matzehuels/drawview/pkg/settings"
)

// shutdownTimeout bounds how long in-flight requests may finish after a
// signal.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command, which runs the HTTP host.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the decode, render and export endpoints over HTTP",
		Long: `Run the HTTP host.

Decoded documents and SVG renderings are cached in memory, or in Redis
when --redis (or server.redis in the configuration) is set so that
several instances share one cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if !cmd.Flags().Changed("addr") {
				addr = c.config.Server.Addr
			}
			if !cmd.Flags().Changed("redis") {
				redisAddr = c.config.Server.Redis
			}

			st, err := c.config.Export.Settings()
			if err != nil {
				return err
			}
			store, err := c.serverCache(ctx, redisAddr)
			if err != nil {
				return err
			}
			var keyer cache.Keyer
			if prefix := c.config.Server.KeyPrefix; prefix != "" {
				keyer = cache.NewScopedKeyer(nil, prefix)
			}
			runner := pipeline.NewRunner(store, keyer, logger)
			runner.Settings = settings.NewStore(st)
			defer runner.Close()

			srv := server.New(runner, logger, server.WithMaxPixels(c.config.Server.MaxPixels))
			errc := make(chan error, 1)
			go func() { errc <- srv.Start(ctx, addr) }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errc
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address (host:port) for a shared cache")
	return cmd
}

// serverCache returns a Redis cache when addr is set and an in-process
// cache otherwise.
func (c *CLI) serverCache(ctx context.Context, addr string) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	if addr == "" {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: addr})
	if err != nil {
		return nil, err
	}
	c.Logger.Info("using redis cache", "addr", addr)
	return rc, nil
}
