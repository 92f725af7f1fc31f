package repository

import (
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/okian/mvpshare/pkg/logger"
)

// PostgresOption applies a configuration option to the PostgresSink.
type PostgresOption func(*PostgresSink)

// WithTable sets the destination table; a dotted name selects a schema.
func WithTable(name string) PostgresOption {
	return func(s *PostgresSink) {
		if name = strings.TrimSpace(name); name != "" {
			s.table = pgx.Identifier(strings.Split(name, "."))
		}
	}
}

// WithMaxConns caps the pool opened by OpenPostgres.
func WithMaxConns(n int32) PostgresOption {
	return func(s *PostgresSink) {
		if n > 0 {
			s.maxConns = n
		}
	}
}

// WithPostgresLogger sets a custom logger for the sink.
func WithPostgresLogger(l logger.Logger) PostgresOption {
	return func(s *PostgresSink) {
		if l != nil {
			s.logger = l
		}
	}
}
