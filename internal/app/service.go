// Package service runs the backtest pipeline and implements the dependencies
// required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/mvpshare/internal/adapters/repository"
	"github.com/okian/mvpshare/internal/backtest"
	"github.com/okian/mvpshare/internal/config"
	"github.com/okian/mvpshare/internal/domain/filter"
	"github.com/okian/mvpshare/internal/domain/model"
	"github.com/okian/mvpshare/internal/domain/regression"
	"github.com/okian/mvpshare/internal/domain/season"
	"github.com/okian/mvpshare/internal/domain/types"
	"github.com/okian/mvpshare/pkg/logger"
	"github.com/okian/mvpshare/pkg/metrics"
)

// PredictionSink persists every prediction of a run.
type PredictionSink interface {
	Write(ctx context.Context, res *model.BacktestResult) (int64, error)
}

// Service loads a season table, backtests it and publishes the result.
type Service struct {
	mu sync.Mutex

	cfg     *config.Config
	table   *season.Table
	factory regression.Factory
	sink    PredictionSink
	store   *repository.ResultStore

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the run configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTable backtests t instead of reading the configured input file.
func WithTable(t *season.Table) Option {
	return func(s *Service) {
		s.table = t
	}
}

// WithModelFactory replaces the ridge model built from ridge_alpha.
func WithModelFactory(f regression.Factory) Option {
	return func(s *Service) {
		if f != nil {
			s.factory = f
		}
	}
}

// WithPredictionSink sets where predictions are persisted. It takes
// precedence over postgres_dsn.
func WithPredictionSink(sink PredictionSink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithStore publishes results into store.
func WithStore(store *repository.ResultStore) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:   config.New(),
		store: repository.NewResultStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.factory == nil {
		s.factory = regression.NewRidgeFactory(s.cfg.RidgeAlpha)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Run executes one backtest: load, filter, evaluate, persist and publish. A
// failing sink fails the run and nothing is published.
func (s *Service) Run(ctx context.Context) (*model.BacktestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.engine().Run(ctx, table, s.factory)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, res); err != nil {
		return nil, err
	}

	s.store.Publish(res)
	return res, nil
}

// Predict ranks one target season with a model trained on every earlier
// season. The forecast is written to output_path when set; it is never
// published to the store.
func (s *Service) Predict(ctx context.Context, year int) (*model.Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	fc, err := s.engine().Predict(ctx, table, s.factory, year)
	if err != nil {
		return nil, err
	}

	if path := s.cfg.OutputPath; path != "" {
		if err := repository.SavePredictionsCSV(path, fc.Rows); err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "forecast written", logger.String("path", path), logger.Int("rows", len(fc.Rows)))
	}
	return fc, nil
}

// prepare loads the table and applies the row filter.
func (s *Service) prepare(ctx context.Context) (*season.Table, error) {
	table, err := s.load()
	if err != nil {
		return nil, err
	}

	f, err := filter.Compile(s.cfg.RowFilter)
	if err != nil {
		return nil, err
	}
	if f.Empty() {
		return table, nil
	}
	before := table.Len()
	if table, err = f.Apply(table); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "row filter applied",
		logger.String("expr", f.Expr()),
		logger.Int("rows_before", before),
		logger.Int("rows_after", table.Len()),
	)
	return table, nil
}

func (s *Service) engine() *backtest.Engine {
	return backtest.New(
		backtest.WithLogger(s.logger.Named("backtest")),
		backtest.WithWarmup(s.cfg.Warmup),
		backtest.WithCutoff(s.cfg.Cutoff),
		backtest.WithWorkerCount(s.cfg.WorkerCount),
		backtest.WithSkipInvalidSeasons(s.cfg.SkipInvalidSeasons),
		backtest.WithMSELimit(s.cfg.MSELimit),
		backtest.WithFeatureSpec(s.cfg.FeatureSpec()),
	)
}

func (s *Service) load() (*season.Table, error) {
	if s.table != nil {
		return s.table, nil
	}
	if s.cfg.InputPath == "" {
		return nil, fmt.Errorf("%w: input_path is required", config.ErrInvalidConfig)
	}
	return repository.LoadCSV(s.cfg.InputPath, s.cfg.Target)
}

// persist writes every configured output. The metrics textfile goes last so it
// includes the rows the other sinks recorded.
func (s *Service) persist(ctx context.Context, res *model.BacktestResult) error {
	if path := s.cfg.OutputPath; path != "" {
		if err := repository.SavePredictionsCSV(path, res.AllPredictions); err != nil {
			return err
		}
		s.logger.Info(ctx, "predictions written", logger.String("path", path), logger.Int("rows", len(res.AllPredictions)))
	}

	if path := s.cfg.SummaryPath; path != "" {
		if err := repository.WriteSummary(path, res); err != nil {
			return err
		}
		s.logger.Info(ctx, "summary written", logger.String("path", path))
	}

	if err := s.writeSink(ctx, res); err != nil {
		return err
	}

	if path := s.cfg.MetricsPath; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) writeSink(ctx context.Context, res *model.BacktestResult) error {
	sink := s.sink
	if sink == nil && s.cfg.PostgresDSN != "" {
		pg, err := repository.OpenPostgres(ctx, s.cfg.PostgresDSN,
			repository.WithTable(s.cfg.PostgresTable),
			repository.WithPostgresLogger(s.logger.Named("postgres")),
		)
		if err != nil {
			return err
		}
		defer pg.Close()
		sink = pg
	}
	if sink == nil {
		return nil
	}

	start := time.Now()
	n, err := sink.Write(ctx, res)
	if err != nil {
		return fmt.Errorf("persist predictions: %w", err)
	}
	s.logger.Debug(ctx, "prediction sink done", logger.Int64("rows", n), logger.Duration("took", time.Since(start)))
	return nil
}

// Store returns the read model the HTTP API serves.
func (s *Service) Store() *repository.ResultStore { return s.store }

// Ready reports whether a result has been published.
func (s *Service) Ready() bool { return s.store.Ready() }

// Summary returns the run-level report.
func (s *Service) Summary(ctx context.Context) (types.Summary, error) {
	return s.store.Summary(ctx)
}

// Seasons returns every evaluated season.
func (s *Service) Seasons(ctx context.Context) ([]types.Season, error) {
	return s.store.Seasons(ctx)
}

// Season returns a season with its top-n entries.
func (s *Service) Season(ctx context.Context, year, n int, order repository.Order) (types.SeasonDetail, error) {
	return s.store.Season(ctx, year, n, order)
}

// TopN returns the top-n entries of a season.
func (s *Service) TopN(ctx context.Context, year, n int, order repository.Order) ([]types.Entry, error) {
	return s.store.TopN(ctx, year, n, order)
}

// Player returns one player's entry in a season.
func (s *Service) Player(ctx context.Context, year int, name string) (types.Entry, error) {
	return s.store.Player(ctx, year, name)
}
