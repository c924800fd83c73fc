package cli

import (
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/splice/internal/config"
	"github.com/matzehuels/splice/internal/server"
	"github.com/matzehuels/splice/pkg/cache"
	"github.com/matzehuels/splice/pkg/nodes"
	"github.com/matzehuels/splice/pkg/pipeline"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the document store and engine over HTTP",
		Long: `Serve the configured document store over HTTP, with endpoints to validate,
compile and render documents. Rendered artifacts are cached in redis when the
store uses redis, on disk otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			artifacts, err := serverCache(cfg.Store)
			if err != nil {
				return err
			}
			defer artifacts.Close()

			runner := pipeline.NewRunner(nodes.Standard(), artifacts, c.Logger)
			srv := server.New(st, runner,
				server.WithLogger(c.Logger),
				server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
			)
			c.Logger.Info("starting server", "backend", cfg.Store.Backend)
			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

// serverCache opens the artifact cache for the server. A redis store gets a
// redis cache on its own connection.
func serverCache(sc config.StoreConfig) (cache.Cache, error) {
	if sc.Backend == config.BackendRedis {
		client := backend.NewClient(&backend.Options{
			Addr:     sc.RedisAddr,
			Password: sc.RedisPassword,
			DB:       sc.RedisDB,
		})
		return cache.NewRedisCache(client, sc.RedisPrefix+"cache:"), nil
	}
	return newCache(false)
}
