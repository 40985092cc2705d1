// Package store provides the relational store the exceedance workflow reads
// critical loads and deposition from and appends results to.
package store

import (
	"context"

	"github.com/rotisserie/eris"
)

// Dataset is a rectangular result or insert set: one value per column per row.
type Dataset struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Rows) }

// Index returns a column name to position map.
func (d Dataset) Index() map[string]int {
	idx := make(map[string]int, len(d.Columns))
	for i, c := range d.Columns {
		idx[c] = i
	}
	return idx
}

// Validate checks that every row has exactly one value per column.
func (d Dataset) Validate() error {
	if len(d.Columns) == 0 && len(d.Rows) > 0 {
		return eris.New("store: dataset has rows but no columns")
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return eris.Errorf("store: row %d has %d values, want %d", i, len(row), len(d.Columns))
		}
	}
	return nil
}

// Relational is an append-only table store with a query interface.
type Relational interface {
	// Append inserts every row of ds into schema.table and returns the
	// number of rows written.
	Append(ctx context.Context, schema, table string, ds Dataset) (int64, error)

	// Query runs sql and returns the full result set.
	Query(ctx context.Context, sql string, args ...any) (Dataset, error)
}
