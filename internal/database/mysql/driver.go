// Package mysql implements database.DB for MySQL-family engines on top of
// go-sql-driver/mysql.
package mysql

import (
	"context"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/database/sqldb"
)

// New opens a bounded MySQL pool for cfg and pings it before returning.
func New(ctx context.Context, cfg *database.Config) (database.DB, error) {
	db, err := sqldb.Open(ctx, "mysql", buildDSN(cfg), cfg, mapError)
	if err != nil {
		return nil, err
	}
	return db, nil
}
