package schema

// Table types after normalization.
const (
	TableTypeTable = "TABLE"
	TableTypeView  = "VIEW"
)

// TableInfo describes one table or view of the connected database.
type TableInfo struct {
	Name             string `json:"name"`
	TableType        string `json:"table_type"`
	RowCountEstimate *int64 `json:"row_count_estimate"` // nil when the engine has no cheap estimate
}

// ColumnInfo describes a single column in a table
type ColumnInfo struct {
	Name         string  `json:"name"`
	DataType     string  `json:"data_type"`
	Nullable     bool    `json:"nullable"`
	IsPrimaryKey bool    `json:"is_primary_key"`
	DefaultValue *string `json:"default_value"` // nil if no default
}

// IndexInfo describes an index and its columns in key order.
type IndexInfo struct {
	Name        string   `json:"name"`
	ColumnNames []string `json:"column_names"`
	IsUnique    bool     `json:"is_unique"`
	IsPrimary   bool     `json:"is_primary"`
}

// ForeignKeyInfo describes a single-column relationship to another table
type ForeignKeyInfo struct {
	ConstraintName string `json:"constraint_name"`
	ColumnName     string `json:"column_name"`
	ForeignTable   string `json:"foreign_table"`
	ForeignColumn  string `json:"foreign_column"`
}

// DatabaseInfo summarises the connected database.
type DatabaseInfo struct {
	Database   string `json:"database"`
	DBType     string `json:"db_type"`
	Version    string `json:"version"`
	TableCount int64  `json:"table_count"`
}
