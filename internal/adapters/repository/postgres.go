package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/mvpshare/internal/domain/model"
	"github.com/okian/mvpshare/pkg/logger"
	"github.com/okian/mvpshare/pkg/metrics"
)

// DefaultTable receives predictions when no table is configured.
const DefaultTable = "season_predictions"

const pingTimeout = 5 * time.Second

var predictionTableColumns = []string{
	"run_id", "year", "player", "share", "predicted",
	"actual_rank", "predicted_rank", "rank_difference",
}

// DB is the subset of *pgxpool.Pool the sink needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// PostgresSink bulk-loads predictions into a table, one run per run_id.
type PostgresSink struct {
	db       DB
	pool     *pgxpool.Pool
	table    pgx.Identifier
	maxConns int32
	logger   logger.Logger
}

func newPostgresSink(opts []PostgresOption) *PostgresSink {
	s := &PostgresSink{table: pgx.Identifier{DefaultTable}}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("postgres")
	}
	return s
}

// NewPostgresSink wraps an existing connection.
func NewPostgresSink(db DB, opts ...PostgresOption) *PostgresSink {
	s := newPostgresSink(opts)
	s.db = db
	return s
}

// OpenPostgres connects to dsn, verifies the connection and returns a sink
// that owns the pool.
func OpenPostgres(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresSink, error) {
	s := newPostgresSink(opts)

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if s.maxConns > 0 {
		cfg.MaxConns = s.maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = pool
	s.pool = pool
	return s, nil
}

// Table returns the sanitized destination table name.
func (s *PostgresSink) Table() string { return s.table.Sanitize() }

// EnsureTable creates the destination table if it does not exist.
func (s *PostgresSink) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id          TEXT             NOT NULL,
	year            INTEGER          NOT NULL,
	player          TEXT             NOT NULL,
	share           DOUBLE PRECISION NOT NULL,
	predicted       DOUBLE PRECISION NOT NULL,
	actual_rank     INTEGER          NOT NULL,
	predicted_rank  INTEGER          NOT NULL,
	rank_difference INTEGER          NOT NULL,
	created_at      TIMESTAMPTZ      NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, year, player)
)`, s.Table())

	if _, err := s.db.Exec(ctx, ddl); err != nil {
		metrics.RecordErrorByComponent("postgres", "create_table")
		return fmt.Errorf("create table %s: %w", s.Table(), err)
	}
	return nil
}

// Write creates the table if needed and copies every prediction of res,
// tagged with its run id. It returns the number of rows copied.
func (s *PostgresSink) Write(ctx context.Context, res *model.BacktestResult) (int64, error) {
	if err := s.EnsureTable(ctx); err != nil {
		return 0, err
	}

	rows := res.AllPredictions
	src := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		r := rows[i]
		return []any{
			res.RunID,
			int32(r.Year),
			r.Player,
			r.Share,
			r.Predicted,
			int32(r.ActualRank),
			int32(r.PredictedRank),
			int32(r.RankDifference),
		}, nil
	})

	n, err := s.db.CopyFrom(ctx, s.table, predictionTableColumns, src)
	if err != nil {
		metrics.RecordErrorByComponent("postgres", "copy")
		return n, fmt.Errorf("copy predictions into %s: %w", s.Table(), err)
	}

	metrics.RecordRowsPersisted("postgres", int(n))
	s.logger.Info(ctx, "predictions persisted",
		logger.String("table", s.Table()),
		logger.String("run_id", res.RunID),
		logger.Int64("rows", n),
	)
	return n, nil
}

// Close releases the pool when the sink opened it.
func (s *PostgresSink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
