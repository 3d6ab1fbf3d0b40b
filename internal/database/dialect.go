package database

import (
	"strconv"
	"strings"

	"github.com/koustreak/duckgate/internal/errs"
)

// Dialect is the per-engine strategy every builder and catalog call goes
// through. There is exactly one implementation per Driver; obtain it with
// DialectFor.
type Dialect interface {
	Catalog

	// Driver returns the engine this dialect formats for.
	Driver() Driver

	// DisplayName is the engine's human-readable name ("PostgreSQL").
	DisplayName() string

	// Quote wraps an already-validated identifier in the engine's quotes.
	Quote(ident string) string

	// Placeholder returns the n-th (1-based) positional parameter marker.
	Placeholder(n int) string

	// Literal renders a string as an escaped SQL string literal.
	Literal(value string) string

	// ColumnType maps a logical type to the native type name. keyed is
	// true when the column takes part in a PRIMARY KEY or UNIQUE constraint.
	ColumnType(logical string, keyed bool) string

	// AutoIncrement is the native type of an auto-incrementing integer key.
	AutoIncrement() string

	// NeedsTextCast reports whether table reads should cast every column to
	// text before the driver sees them.
	NeedsTextCast() bool

	// TextCast renders the select-list expression casting column to text,
	// aliased back to the column's own name.
	TextCast(column string) string
}

// Catalog yields the engine-specific metadata queries. Every query returns
// its SQL plus the bindings; names go through Literal where the engine
// cannot bind them.
type Catalog interface {
	// TablesQuery projects (name, table_type, row_count_estimate).
	TablesQuery(database string) (string, []any)

	// ColumnsQuery projects (name, data_type, is_nullable, default, pk).
	ColumnsQuery(database, table string) (string, []any)

	// IndexesQuery projects (name, column_names, is_unique, is_primary).
	// column_names is NULL when the engine needs IndexColumnsQuery.
	IndexesQuery(database, table string) (string, []any)

	// IndexColumnsQuery lists the columns of one index, one per row.
	// ok is false for engines that aggregate columns in IndexesQuery.
	IndexColumnsQuery(index string) (sql string, args []any, ok bool)

	// ForeignKeysQuery projects (constraint_name, column, foreign_table, foreign_column).
	ForeignKeysQuery(database, table string) (string, []any)

	// PrimaryKeyQuery returns the first primary-key column of table.
	PrimaryKeyQuery(database, table string) (string, []any)

	// ColumnNamesQuery lists the columns of table in ordinal order.
	ColumnNamesQuery(database, table string) (string, []any)

	// VersionQuery returns the engine version string.
	VersionQuery() string

	// TableCountQuery counts user tables.
	TableCountQuery(database string) (string, []any)
}

var dialects = map[Driver]Dialect{
	DriverPostgres: postgresDialect{},
	DriverMySQL:    mysqlDialect{},
	DriverSQLite:   sqliteDialect{},
}

// DialectFor returns the strategy for d.
func DialectFor(d Driver) (Dialect, error) {
	if dl, ok := dialects[d]; ok {
		return dl, nil
	}
	return nil, errs.Newf(errs.ErrKindValidation, "unsupported database type: %q", d)
}

// MustDialect is DialectFor for drivers known at compile time.
func MustDialect(d Driver) Dialect {
	dl, err := DialectFor(d)
	if err != nil {
		panic(err)
	}
	return dl
}

// Logical column types accepted by DDL requests.
const (
	TypeText     = "TEXT"
	TypeInteger  = "INTEGER"
	TypeBoolean  = "BOOLEAN"
	TypeDateTime = "DATETIME"
	TypeFloat    = "FLOAT"
	TypeUUID     = "UUID"
)

// logicalType normalises a caller-facing type name; anything unknown is TEXT.
func logicalType(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case TypeInteger, "INT", "BIGINT":
		return TypeInteger
	case TypeBoolean, "BOOL":
		return TypeBoolean
	case TypeDateTime, "TIMESTAMP":
		return TypeDateTime
	case TypeFloat, "DOUBLE", "REAL", "DECIMAL":
		return TypeFloat
	case TypeUUID:
		return TypeUUID
	default:
		return TypeText
	}
}

// --- Postgres ---

type postgresDialect struct{}

func (postgresDialect) Driver() Driver              { return DriverPostgres }
func (postgresDialect) DisplayName() string         { return "PostgreSQL" }
func (postgresDialect) Quote(ident string) string   { return ansiQuote(ident) }
func (postgresDialect) Placeholder(n int) string    { return "$" + strconv.Itoa(n) }
func (postgresDialect) Literal(value string) string { return EscapeStringLiteral(value, DriverPostgres) }
func (postgresDialect) AutoIncrement() string       { return "SERIAL" }
func (postgresDialect) NeedsTextCast() bool         { return true }

func (postgresDialect) TextCast(column string) string {
	q := ansiQuote(column)
	return q + "::text AS " + q
}

func (postgresDialect) ColumnType(logical string, _ bool) string {
	switch logicalType(logical) {
	case TypeInteger:
		return "INTEGER"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDateTime:
		return "TIMESTAMP"
	case TypeFloat:
		return "DOUBLE PRECISION"
	case TypeUUID:
		return "UUID"
	default:
		return "TEXT"
	}
}

// --- MySQL ---

type mysqlDialect struct{}

func (mysqlDialect) Driver() Driver              { return DriverMySQL }
func (mysqlDialect) DisplayName() string         { return "MySQL" }
func (mysqlDialect) Quote(ident string) string   { return backtickQuote(ident) }
func (mysqlDialect) Placeholder(int) string      { return "?" }
func (mysqlDialect) Literal(value string) string { return EscapeStringLiteral(value, DriverMySQL) }
func (mysqlDialect) AutoIncrement() string       { return "INT AUTO_INCREMENT" }
func (mysqlDialect) NeedsTextCast() bool         { return true }

func (mysqlDialect) TextCast(column string) string {
	q := backtickQuote(column)
	return "CAST(" + q + " AS CHAR) AS " + q
}

func (mysqlDialect) ColumnType(logical string, keyed bool) string {
	switch logicalType(logical) {
	case TypeInteger:
		return "INT"
	case TypeBoolean:
		return "TINYINT(1)"
	case TypeDateTime:
		return "DATETIME"
	case TypeFloat:
		return "DOUBLE"
	case TypeUUID:
		return "CHAR(36)"
	default:
		// TEXT cannot carry a key without a prefix length
		if keyed {
			return "VARCHAR(255)"
		}
		return "TEXT"
	}
}

// --- SQLite ---

type sqliteDialect struct{}

func (sqliteDialect) Driver() Driver              { return DriverSQLite }
func (sqliteDialect) DisplayName() string         { return "SQLite" }
func (sqliteDialect) Quote(ident string) string   { return ansiQuote(ident) }
func (sqliteDialect) Placeholder(int) string      { return "?" }
func (sqliteDialect) Literal(value string) string { return EscapeStringLiteral(value, DriverSQLite) }
func (sqliteDialect) AutoIncrement() string       { return "INTEGER" }
func (sqliteDialect) NeedsTextCast() bool         { return false }
func (sqliteDialect) TextCast(column string) string {
	return ansiQuote(column)
}

func (sqliteDialect) ColumnType(logical string, _ bool) string {
	switch logicalType(logical) {
	case TypeInteger:
		return "INTEGER"
	case TypeBoolean:
		return "INTEGER"
	case TypeDateTime:
		return "DATETIME"
	case TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}
