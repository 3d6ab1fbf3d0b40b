// Package schema reads catalog metadata through the session's dialect and
// normalizes it into engine-independent shapes.
package schema

import "context"

// Reader is the interface for introspecting the connected database.
// Table arguments must already have passed database.ValidIdentifier.
type Reader interface {
	// ListTables returns all user tables and views.
	ListTables(ctx context.Context) ([]TableInfo, error)

	// Columns returns the columns of table in ordinal order.
	Columns(ctx context.Context, table string) ([]ColumnInfo, error)

	// Indexes returns the indexes of table.
	Indexes(ctx context.Context, table string) ([]IndexInfo, error)

	// ForeignKeys returns the outgoing foreign keys of table.
	ForeignKeys(ctx context.Context, table string) ([]ForeignKeyInfo, error)

	// PrimaryKey returns the key column used for update/delete by id.
	PrimaryKey(ctx context.Context, table string) (string, error)

	// ColumnNames returns just the column names of table.
	ColumnNames(ctx context.Context, table string) ([]string, error)

	// Info returns the version and table count summary.
	Info(ctx context.Context) DatabaseInfo
}
