package apicmder

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/worldchef/backend/internal/database"
	"github.com/pageza/worldchef/backend/internal/router"
	"github.com/pageza/worldchef/backend/internal/server"
)

const serveShortDesc string = "Start the HTTP server"

type serveCommander struct{}

func newServeCommander() *serveCommander {
	return &serveCommander{}
}

func (c *serveCommander) command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd.Context())
		},
	}
}

// run serves until SIGINT or SIGTERM
func (c *serveCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(os.Stdout)
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	redisClient, err := database.NewRedisClient(ctx, a.cfg, a.logger)
	if err != nil {
		a.logger.Warn("redis unavailable, rate limiting falls back to in-process counters", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	handler := router.SetupRouter(router.Dependencies{
		Config:  a.cfg,
		Relay:   a.relay,
		Redis:   redisClient,
		Metrics: a.metrics,
		Logger:  a.logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(a.cfg, handler, a.logger).Run(ctx)
}
