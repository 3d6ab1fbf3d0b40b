package session

import (
	"context"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/database/mysql"
	"github.com/koustreak/duckgate/internal/database/postgres"
	"github.com/koustreak/duckgate/internal/database/sqlite"
)

// Opener creates a pinged pool for cfg.
type Opener func(ctx context.Context, cfg *database.Config) (database.DB, error)

// DefaultOpeners returns the production driver for every engine.
func DefaultOpeners() map[database.Driver]Opener {
	return map[database.Driver]Opener{
		database.DriverPostgres: func(ctx context.Context, cfg *database.Config) (database.DB, error) {
			d, err := postgres.New(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
		database.DriverMySQL:  mysql.New,
		database.DriverSQLite: sqlite.New,
	}
}
