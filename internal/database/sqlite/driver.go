// Package sqlite implements database.DB for single-file databases on top of
// the pure-Go modernc.org/sqlite engine.
package sqlite

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/database/sqldb"
	"github.com/koustreak/duckgate/internal/errs"
)

// busyTimeoutMillis is how long a writer waits on a locked file.
const busyTimeoutMillis = "5000"

// New opens (creating if needed) the database file named by cfg.Database.
// Network fields of cfg are ignored.
func New(ctx context.Context, cfg *database.Config) (database.DB, error) {
	if strings.TrimSpace(cfg.Database) == "" {
		return nil, errs.New(errs.ErrKindValidation, "database file path is required")
	}
	db, err := sqldb.Open(ctx, "sqlite", buildDSN(cfg.Database), cfg, mapError)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// buildDSN enables foreign keys and a busy timeout on every pooled connection.
func buildDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout("+busyTimeoutMillis+")")
	return "file:" + path + "?" + q.Encode()
}

// mapError translates modernc.org/sqlite result codes into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if e, ok := database.ContextError(err, msg); ok {
		return e
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		return errs.Wrap(classify(se.Code()), msg, err)
	}
	return errs.Wrap(errs.ErrKindExecution, msg, err)
}

// classify looks at the primary result code; extended codes carry it in the
// low byte.
func classify(code int) errs.ErrKind {
	switch code & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return errs.ErrKindConflict
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return errs.ErrKindTimeout
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_AUTH, sqlite3.SQLITE_PERM:
		return errs.ErrKindConnectionFailed
	default:
		return errs.ErrKindExecution
	}
}
