// Package db provides the connection pool interface and bulk COPY helpers
// shared by the Postgres-backed stores.
package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// DefaultBatchSize is the number of rows sent per COPY when none is given.
const DefaultBatchSize = 50000

// Pool is the subset of *pgxpool.Pool used by this module. pgxmock pools
// satisfy it too.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// CopyFromSchema bulk-inserts rows into a schema-qualified table, sending at
// most batchSize rows per COPY (0 = DefaultBatchSize). On failure the count
// of rows already copied is returned with the error.
func CopyFromSchema(ctx context.Context, pool Pool, schema, table string, columns []string, rows [][]any, batchSize int) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var total int64
	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))

		n, err := pool.CopyFrom(ctx, pgx.Identifier{schema, table}, columns, pgx.CopyFromRows(rows[i:end]))
		if err != nil {
			return total, eris.Wrapf(err, "db: COPY INTO %s.%s (batch %d-%d)", schema, table, i, end)
		}
		total += n
	}

	return total, nil
}

// SanitizeTable quotes a table name, handling schema-qualified names like
// "deposition.dep_values_0_1deg_grid".
func SanitizeTable(table string) string {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}
