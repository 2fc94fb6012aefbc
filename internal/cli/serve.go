package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/HunterLewis000/newspaper-app/internal/config"
	"github.com/HunterLewis000/newspaper-app/internal/server"
	"github.com/HunterLewis000/newspaper-app/internal/store"
)

func newServeCmd() *cobra.Command {
	var addr, dbPath, redisURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the article desk server",
		Long: strings.TrimSpace(`
Serve the REST API, the broadcast websocket, and file storage on one address.

Set --redis-url (or NEWSPAPER_REDIS_URL) to bridge broadcasts across several
server instances; without it a single instance fans out locally.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if v := strings.TrimSpace(addr); v != "" {
				cfg.Addr = v
			}
			if v := strings.TrimSpace(dbPath); v != "" {
				cfg.DBPath = v
			}
			if v := strings.TrimSpace(redisURL); v != "" {
				cfg.RedisURL = v
			}

			ctx := cmd.Context()

			st, err := store.Open(ctx, cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			var rdb *redis.Client
			if cfg.RedisURL != "" {
				opt, err := redis.ParseURL(cfg.RedisURL)
				if err != nil {
					return fmt.Errorf("bad redis url: %w", err)
				}
				rdb = redis.NewClient(opt)
				pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				err = rdb.Ping(pingCtx).Err()
				cancel()
				if err != nil {
					return fmt.Errorf("redis unreachable: %w", err)
				}
				defer rdb.Close()
			}

			hub := server.NewHub(rdb)
			go hub.Run(ctx)

			srv := server.New(st, hub)
			fmt.Fprintf(cmd.OutOrStdout(), "newspaper server listening on %s (db %s)\n", cfg.Addr, cfg.DBPath)

			httpSrv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpSrv.Shutdown(shutCtx)
			}()

			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: NEWSPAPER_ADDR or :5000)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: NEWSPAPER_DB)")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL for cross-instance broadcasts (default: NEWSPAPER_REDIS_URL)")

	return cmd
}
