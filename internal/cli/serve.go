package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okanele/orrery/internal/api"
	"github.com/okanele/orrery/pkg/cache"
	"github.com/okanele/orrery/pkg/pipeline"
	"github.com/okanele/orrery/pkg/store"
)

const shutdownTimeout = 10 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	listen   string
	redisURL string
	mongoURI string
	noCache  bool
}

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout HTTP API",
		Long: `Serve starts the HTTP API. Drawings are kept in memory unless a
MongoDB URI is configured; the pipeline cache uses Redis when a Redis
URL is configured and the local file cache otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.listen, "listen", "", "listen address (default from config, then :8080)")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "redis URL for the pipeline cache")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for drawing storage")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts *serveOpts) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listen := opts.listen
	if listen == "" {
		listen = c.Config.Listen
	}

	cc, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(cc, nil, c.Logger)
	defer runner.Close()

	st, err := c.serveStore(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = st.Close(closeCtx)
	}()

	server := &http.Server{
		Addr:              listen,
		Handler:           api.NewServer(runner, st, c.Logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("serving", "addr", listen)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// serveCache selects the pipeline cache backend: Redis when configured,
// otherwise the local file cache.
func (c *CLI) serveCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	redisURL := opts.redisURL
	if redisURL == "" {
		redisURL = c.Config.RedisURL
	}
	if redisURL != "" {
		c.Logger.Debug("using redis cache", "url", redisURL)
		return cache.NewRedisCache(ctx, redisURL)
	}
	return c.newCache(false)
}

// serveStore selects the drawing store backend: MongoDB when
// configured, otherwise an in-memory store.
func (c *CLI) serveStore(ctx context.Context, opts *serveOpts) (store.Store, error) {
	mongoURI := opts.mongoURI
	if mongoURI == "" {
		mongoURI = c.Config.MongoURI
	}
	if mongoURI != "" {
		c.Logger.Debug("using mongo store", "database", c.Config.MongoDatabase)
		return store.NewMongoStore(ctx, mongoURI, c.Config.MongoDatabase, "drawings")
	}
	c.Logger.Debug("using in-memory store")
	return store.NewMemoryStore(), nil
}
