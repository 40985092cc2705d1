package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/critload/internal/db"
)

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// PostgresStore implements Relational on a Postgres connection pool.
type PostgresStore struct {
	pool      db.Pool
	batchSize int
	closeFn   func()
}

// NewPostgresStore wraps an existing pool. copyBatchSize bounds the rows per
// COPY in Append (0 = db.DefaultBatchSize).
func NewPostgresStore(pool db.Pool, copyBatchSize int) *PostgresStore {
	return &PostgresStore{pool: pool, batchSize: copyBatchSize}
}

// NewPostgres opens and pings a connection pool for connString.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig, copyBatchSize int) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool, batchSize: copyBatchSize, closeFn: pool.Close}, nil
}

// Close releases the pool if this store opened it.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Append implements Relational using COPY.
func (s *PostgresStore) Append(ctx context.Context, schema, table string, ds Dataset) (int64, error) {
	if err := ds.Validate(); err != nil {
		return 0, err
	}
	if ds.Len() == 0 {
		return 0, nil
	}

	n, err := db.CopyFromSchema(ctx, s.pool, schema, table, ds.Columns, ds.Rows, s.batchSize)
	if err != nil {
		return n, eris.Wrapf(err, "store: append %s.%s", schema, table)
	}

	zap.L().Debug("store: appended rows",
		zap.String("schema", schema),
		zap.String("table", table),
		zap.Int64("rows", n),
	)
	return n, nil
}

// Query implements Relational.
func (s *PostgresStore) Query(ctx context.Context, sql string, args ...any) (Dataset, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return Dataset{}, eris.Wrap(err, "store: query")
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	ds := Dataset{Columns: make([]string, len(fields))}
	for i, f := range fields {
		ds.Columns[i] = f.Name
	}

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return Dataset{}, eris.Wrap(err, "store: scan row")
		}
		ds.Rows = append(ds.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return Dataset{}, eris.Wrap(err, "store: iterate rows")
	}

	return ds, nil
}
