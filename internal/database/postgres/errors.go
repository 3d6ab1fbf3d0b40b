package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/errs"
)

// PostgreSQL SQLSTATE codes and classes
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgClassConnection      = "08"
	pgClassIntegrity       = "23"
	pgClassInvalidAuth     = "28"
	pgErrInvalidCatalog    = "3D000"
	pgErrQueryCanceled     = "57014"
	pgErrTooManyConnection = "53300"
)

// mapError translates pgx / pgconn native errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if e, ok := database.ContextError(err, msg); ok {
		return e
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	// Postgres server-side error (SQLSTATE codes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(classify(pgErr.Code), msg, err)
	}

	// Fallthrough: connection-level errors (TLS, network, auth)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

func classify(code string) errs.ErrKind {
	switch {
	case code == pgErrQueryCanceled:
		return errs.ErrKindTimeout
	case code == pgErrInvalidCatalog, code == pgErrTooManyConnection:
		return errs.ErrKindConnectionFailed
	case len(code) < 2:
		return errs.ErrKindExecution
	}

	switch code[:2] {
	case pgClassConnection, pgClassInvalidAuth:
		return errs.ErrKindConnectionFailed
	case pgClassIntegrity:
		return errs.ErrKindConflict
	default:
		return errs.ErrKindExecution
	}
}
