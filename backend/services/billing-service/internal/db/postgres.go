package db

import (
	"context"
	"database/sql"

	libdb "evcdr/backend/libs/db"
)

// NewPostgres returns shared DB connection.
func NewPostgres(ctx context.Context, dsn string, pool libdb.PoolOptions) (*sql.DB, error) {
	return libdb.NewPostgresDB(ctx, dsn, pool)
}
