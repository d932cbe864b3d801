package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftforge/runweaver/internal/server"
	"github.com/driftforge/runweaver/pkg/cache"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		redisDB   int
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the generation HTTP API for editor tooling",
		Long: `Host the generation HTTP API for editor tooling.

Endpoints:
  POST /api/generate  {"seed": "...", "rules": {...}}  -> map JSON
  POST /api/validate  {"map": {...}, "rules": {...}}   -> validation report
  POST /api/batch     {"seeds": [...], "rules": {...}} -> aggregate stats
  GET  /healthz

By default maps are cached on the local filesystem. With --redis the
cache is shared across server instances.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.serveCache(cmd.Context(), noCache, redisAddr, redisDB)
			if err != nil {
				return err
			}
			defer store.Close()

			printInfo("Serving on %s", StyleHighlight.Render(addr))
			return server.New(c.Logger, store).ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for a shared cache (e.g. localhost:6379)")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "redis database number")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// serveCache picks the cache backend: redis when requested, otherwise the
// local file cache.
func (c *CLI) serveCache(ctx context.Context, noCache bool, redisAddr string, redisDB int) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		store, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr, DB: redisDB})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("using redis cache", "addr", redisAddr, "db", redisDB)
		return store, nil
	}
	return newCache(false)
}
