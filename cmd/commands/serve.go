package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/mvpshare/internal/adapters/http/api"
	"github.com/okian/mvpshare/internal/adapters/http/swagger"
	service "github.com/okian/mvpshare/internal/app"
	"github.com/okian/mvpshare/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backtest and serve its results over HTTP",
	Long: `Serve starts the HTTP API, runs the backtest in the background and
publishes the result once it completes. Until then read endpoints answer 503.

Endpoints:
  GET /healthz                             - liveness and readiness
  GET /metrics                             - Prometheus metrics
  GET /summary                             - run summary
  GET /seasons                             - evaluated seasons
  GET /seasons/{year}?limit=&order=        - ranked players of a season
  GET /seasons/{year}/players/{player}     - one player's ranks
  GET /api-docs                            - API reference

Example:
  mvpshare serve --input seasons.csv --addr :9080`,
	RunE: runServer,
}

var addr string

func init() {
	rootCmd.AddCommand(serveCmd)
	addPipelineFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides addr)")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	svc := service.New(service.WithConfig(cfg), service.WithLogger(log.Named("service")))

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	runErr := make(chan error, 1)
	go func() {
		_, err := svc.Run(ctx)
		runErr <- err
	}()

	var result error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		result = err
	case err := <-runErr:
		if err != nil {
			log.Error(ctx, "backtest failed", logger.Error(err))
			result = err
			break
		}
		log.Info(ctx, "results published")
		select {
		case <-ctx.Done():
		case err := <-serveErr:
			result = err
		}
	}

	log.Info(ctx, "shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return result
}
