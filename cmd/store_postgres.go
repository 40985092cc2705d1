package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/critload/internal/store"
)

func initStore(ctx context.Context) (*store.PostgresStore, error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, eris.New("database URL is required (CRITLOAD_STORE_DATABASE_URL)")
	}

	return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	}, cfg.Batch.CopyBatchSize)
}
