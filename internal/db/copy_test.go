package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFromSchema_EmptyRows(t *testing.T) {
	n, err := CopyFromSchema(context.TODO(), nil, "deposition", "dep_values", []string{"a"}, [][]any{}, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFromSchema_SingleBatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"deposition", "dep_values"}, []string{"a", "b"}).WillReturnResult(5)

	rows := [][]any{{1, "x"}, {2, "y"}, {3, "z"}, {4, "w"}, {5, "v"}}
	n, err := CopyFromSchema(context.Background(), mock, "deposition", "dep_values", []string{"a", "b"}, rows, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromSchema_Batches(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ident := pgx.Identifier{"critical_loads", "exceedance_values"}
	mock.ExpectCopyFrom(ident, []string{"a"}).WillReturnResult(2)
	mock.ExpectCopyFrom(ident, []string{"a"}).WillReturnResult(2)
	mock.ExpectCopyFrom(ident, []string{"a"}).WillReturnResult(1)

	rows := [][]any{{1}, {2}, {3}, {4}, {5}}
	n, err := CopyFromSchema(context.Background(), mock, "critical_loads", "exceedance_values", []string{"a"}, rows, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromSchema_ErrorReturnsPartialCount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ident := pgx.Identifier{"deposition", "dep_values"}
	mock.ExpectCopyFrom(ident, []string{"a"}).WillReturnResult(2)
	mock.ExpectCopyFrom(ident, []string{"a"}).WillReturnError(fmt.Errorf("permission denied"))

	rows := [][]any{{1}, {2}, {3}}
	n, err := CopyFromSchema(context.Background(), mock, "deposition", "dep_values", []string{"a"}, rows, 2)
	require.Error(t, err)
	assert.Equal(t, int64(2), n)
	assert.Contains(t, err.Error(), "COPY INTO deposition.dep_values (batch 2-3)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSanitizeTable(t *testing.T) {
	assert.Equal(t, `"deposition"."dep_values_0_1deg_grid"`, SanitizeTable("deposition.dep_values_0_1deg_grid"))
	assert.Equal(t, `"clf_values"`, SanitizeTable("clf_values"))
}
