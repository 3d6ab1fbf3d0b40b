// Package sqldb adapts a database/sql pool to database.DB. The mysql and
// sqlite drivers are thin constructors over it; each supplies its own
// MapFunc so engine errors still map to the right errs kinds.
package sqldb

import (
	"context"
	"database/sql"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/errs"
)

// MapFunc translates a native driver error into *errs.Error.
type MapFunc func(err error, msg string) *errs.Error

// DB is a database.DB implemented over *sql.DB.
// It is safe for concurrent use by multiple goroutines.
type DB struct {
	db     *sql.DB
	mapErr MapFunc
}

// Wrap adapts an already-open pool. The pool is owned by the returned DB.
func Wrap(db *sql.DB, mapErr MapFunc) *DB {
	return &DB{db: db, mapErr: mapErr}
}

// Open creates a pool for driverName, applies the pool settings from cfg and
// pings it within cfg.ConnectTimeout. On failure the pool is closed.
func Open(ctx context.Context, driverName, dsn string, cfg *database.Config, mapErr MapFunc) (*DB, error) {
	pool, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid connection settings", err)
	}

	pool.SetMaxOpenConns(int(cfg.MaxConns))
	pool.SetMaxIdleConns(int(max(cfg.MinConns, 1)))
	pool.SetConnMaxLifetime(cfg.MaxConnLifetime)
	pool.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	d := Wrap(pool, mapErr)

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := d.Ping(pingCtx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return d, nil
}

// --- database.DB implementation ---

func (d *DB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return d.mapErr(err, "ping failed")
	}
	return nil
}

func (d *DB) Close() {
	_ = d.db.Close()
}

func (d *DB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, d.mapErr(err, "query failed")
	}
	return &sqlRows{rows: rows, mapErr: d.mapErr}, nil
}

func (d *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, d.mapErr(err, "statement failed")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, d.mapErr(err, "rows affected unavailable")
	}
	return n, nil
}

// --- *sql.Rows wrapper ---

type sqlRows struct {
	rows   *sql.Rows
	mapErr MapFunc
}

func (r *sqlRows) Next() bool { return r.rows.Next() }

func (r *sqlRows) Scan(dest ...any) error {
	if err := r.rows.Scan(dest...); err != nil {
		return r.mapErr(err, "failed to scan row")
	}
	return nil
}

func (r *sqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *sqlRows) Close()                     { _ = r.rows.Close() }

func (r *sqlRows) Err() error {
	if err := r.rows.Err(); err != nil {
		return r.mapErr(err, "error during row iteration")
	}
	return nil
}

var _ database.DB = (*DB)(nil)
