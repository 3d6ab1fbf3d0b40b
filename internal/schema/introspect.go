package schema

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/errs"
)

// FallbackPrimaryKey is assumed when a table declares no primary key.
const FallbackPrimaryKey = "id"

// unknownVersion is reported when the version probe fails.
const unknownVersion = "Unknown"

// Introspector implements Reader through a dialect's catalog queries.
type Introspector struct {
	db       database.DB
	dialect  database.Dialect
	database string
}

// New creates an Introspector for the database named dbName on db.
func New(db database.DB, d database.Dialect, dbName string) *Introspector {
	return &Introspector{db: db, dialect: d, database: dbName}
}

// ListTables returns all user tables and views, sorted by name.
func (i *Introspector) ListTables(ctx context.Context) ([]TableInfo, error) {
	q, args := i.dialect.TablesQuery(i.database)
	rows, err := i.query(ctx, q, args)
	if err != nil {
		return nil, catalogError("failed to list tables", err)
	}

	tables := make([]TableInfo, 0, len(rows))
	for _, r := range rows {
		tables = append(tables, TableInfo{
			Name:             text(r[0]),
			TableType:        tableType(r[1]),
			RowCountEstimate: count(r[2]),
		})
	}
	return tables, nil
}

// Columns returns column details for a single table
func (i *Introspector) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	q, args := i.dialect.ColumnsQuery(i.database, table)
	rows, err := i.query(ctx, q, args)
	if err != nil {
		return nil, catalogError("failed to list columns", err)
	}

	cols := make([]ColumnInfo, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, ColumnInfo{
			Name:         text(r[0]),
			DataType:     text(r[1]),
			Nullable:     flag(r[2]),
			DefaultValue: textPtr(r[3]),
			IsPrimaryKey: flag(r[4]),
		})
	}
	return cols, nil
}

// Indexes returns the indexes of table. Engines that cannot aggregate
// column lists get one extra catalog query per index.
func (i *Introspector) Indexes(ctx context.Context, table string) ([]IndexInfo, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	q, args := i.dialect.IndexesQuery(i.database, table)
	rows, err := i.query(ctx, q, args)
	if err != nil {
		return nil, catalogError("failed to list indexes", err)
	}

	indexes := make([]IndexInfo, 0, len(rows))
	for _, r := range rows {
		idx := IndexInfo{
			Name:        text(r[0]),
			ColumnNames: splitColumns(r[1]),
			IsUnique:    flag(r[2]),
			IsPrimary:   flag(r[3]),
		}
		if r[1] == nil {
			if idx.ColumnNames, err = i.indexColumns(ctx, idx.Name); err != nil {
				return nil, err
			}
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}

func (i *Introspector) indexColumns(ctx context.Context, index string) ([]string, error) {
	q, args, ok := i.dialect.IndexColumnsQuery(index)
	if !ok {
		return []string{}, nil
	}
	rows, err := i.query(ctx, q, args)
	if err != nil {
		return nil, catalogError("failed to list index columns", err)
	}
	return firstColumn(rows), nil
}

// ForeignKeys returns the outgoing foreign keys of table.
func (i *Introspector) ForeignKeys(ctx context.Context, table string) ([]ForeignKeyInfo, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	q, args := i.dialect.ForeignKeysQuery(i.database, table)
	rows, err := i.query(ctx, q, args)
	if err != nil {
		return nil, catalogError("failed to list foreign keys", err)
	}

	fks := make([]ForeignKeyInfo, 0, len(rows))
	for _, r := range rows {
		fks = append(fks, ForeignKeyInfo{
			ConstraintName: text(r[0]),
			ColumnName:     text(r[1]),
			ForeignTable:   text(r[2]),
			ForeignColumn:  text(r[3]),
		})
	}
	return fks, nil
}

// PrimaryKey returns the first primary-key column of table, or
// FallbackPrimaryKey when the catalog reports none. A failing catalog query
// is an error, not a fallback.
func (i *Introspector) PrimaryKey(ctx context.Context, table string) (string, error) {
	if err := checkTable(table); err != nil {
		return "", err
	}
	q, args := i.dialect.PrimaryKeyQuery(i.database, table)
	rows, err := i.query(ctx, q, args)
	if err != nil {
		return "", catalogError("failed to resolve primary key", err)
	}
	if names := firstColumn(rows); len(names) > 0 && names[0] != "" {
		return names[0], nil
	}
	return FallbackPrimaryKey, nil
}

// ColumnNames returns the column names of table in ordinal order.
func (i *Introspector) ColumnNames(ctx context.Context, table string) ([]string, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	q, args := i.dialect.ColumnNamesQuery(i.database, table)
	rows, err := i.query(ctx, q, args)
	if err != nil {
		return nil, catalogError("failed to list column names", err)
	}
	return firstColumn(rows), nil
}

// Info probes the version and the table count concurrently. A failed probe
// reports "Unknown" or 0 instead of failing the call.
func (i *Introspector) Info(ctx context.Context) DatabaseInfo {
	info := DatabaseInfo{
		Database: i.database,
		DBType:   i.dialect.DisplayName(),
		Version:  unknownVersion,
	}

	var g errgroup.Group
	g.Go(func() error {
		rows, err := i.query(ctx, i.dialect.VersionQuery(), nil)
		if err == nil && len(rows) > 0 {
			if v := text(rows[0][0]); v != "" {
				info.Version = v
			}
		}
		return nil
	})
	g.Go(func() error {
		q, args := i.dialect.TableCountQuery(i.database)
		rows, err := i.query(ctx, q, args)
		if err == nil && len(rows) > 0 {
			if n := count(rows[0][0]); n != nil {
				info.TableCount = *n
			}
		}
		return nil
	})
	_ = g.Wait()

	return info
}

// catalogWidth is the widest projection any catalog query has; shorter
// rows are padded with nulls so callers can index cells by position.
const catalogWidth = 5

// query runs a catalog statement and returns its normalized cells by
// position.
func (i *Introspector) query(ctx context.Context, q string, args []any) ([][]any, error) {
	rows, err := i.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([][]any, 0)
	for rows.Next() {
		dest := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for n := range dest {
			ptrs[n] = &dest[n]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		cells := make([]any, max(len(cols), catalogWidth))
		for n, v := range dest {
			cells[n] = database.Normalize(v)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func firstColumn(rows [][]any) []string {
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		if len(r) > 0 {
			names = append(names, text(r[0]))
		}
	}
	return names
}

func checkTable(table string) error {
	if !database.ValidIdentifier(table) {
		return errs.Newf(errs.ErrKindValidation, "Invalid table name: %s", table)
	}
	return nil
}

// catalogError relabels a driver failure as an introspection error while
// keeping the engine's own message. Timeouts and connection failures keep
// their kind.
func catalogError(msg string, err error) error {
	var e *errs.Error
	if !errors.As(err, &e) {
		return errs.Wrap(errs.ErrKindIntrospection, msg, err)
	}
	switch e.Kind {
	case errs.ErrKindTimeout, errs.ErrKindConnectionFailed:
		return e
	}
	cause := e.Cause
	if cause == nil {
		cause = errors.New(e.Message)
	}
	return errs.Wrap(errs.ErrKindIntrospection, msg, cause)
}

var _ Reader = (*Introspector)(nil)
