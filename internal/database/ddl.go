package database

import (
	"strconv"
	"strings"
)

// ColumnDefinition describes one column of a CREATE TABLE or ADD COLUMN.
type ColumnDefinition struct {
	Name          string  `json:"name"`
	DataType      string  `json:"data_type"`
	Nullable      bool    `json:"nullable"`
	IsPrimaryKey  bool    `json:"is_primary_key"`
	Unique        bool    `json:"unique,omitempty"`
	AutoIncrement bool    `json:"auto_increment,omitempty"`
	DefaultValue  *string `json:"default_value,omitempty"`
}

// ForeignKeyDefinition is a single-column REFERENCES clause.
type ForeignKeyDefinition struct {
	ColumnName    string `json:"column_name"`
	ForeignTable  string `json:"foreign_table"`
	ForeignColumn string `json:"foreign_column"`
	OnDelete      string `json:"on_delete,omitempty"`
}

// CreateTableRequest is the body of POST /schema/table.
type CreateTableRequest struct {
	Name        string                 `json:"name"`
	Columns     []ColumnDefinition     `json:"columns"`
	ForeignKeys []ForeignKeyDefinition `json:"foreign_keys,omitempty"`
}

// AlterType names one of the supported ALTER TABLE operations.
type AlterType string

const (
	AlterRenameTable AlterType = "RenameTable"
	AlterAddColumn   AlterType = "AddColumn"
	AlterDropColumn  AlterType = "DropColumn"
)

// AlterTableRequest is the body of PUT /schema/table/{name}. Which fields are
// read depends on AlterType.
type AlterTableRequest struct {
	AlterType        AlterType         `json:"alter_type"`
	NewName          string            `json:"new_name,omitempty"`
	ColumnDefinition *ColumnDefinition `json:"column_definition,omitempty"`
	ColumnName       string            `json:"column_name,omitempty"`
}

var onDeleteActions = map[string]bool{
	"CASCADE":     true,
	"SET NULL":    true,
	"SET DEFAULT": true,
	"RESTRICT":    true,
	"NO ACTION":   true,
}

var bareDefaults = map[string]bool{
	"CURRENT_TIMESTAMP": true,
	"CURRENT_DATE":      true,
	"CURRENT_TIME":      true,
	"NULL":              true,
	"TRUE":              true,
	"FALSE":             true,
}

// defaultExpr renders a DEFAULT value. Keywords and numbers are emitted
// as-is; everything else becomes an escaped string literal.
func defaultExpr(d Dialect, v string) string {
	if bareDefaults[strings.ToUpper(v)] {
		return strings.ToUpper(v)
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	return d.Literal(v)
}

// columnSQL renders one column definition. inlinePK is false when the table
// carries a composite key declared separately.
func columnSQL(d Dialect, c ColumnDefinition, inlinePK bool) (string, error) {
	if !ValidIdentifier(c.Name) {
		return "", errValidationf("Invalid column name: %s", c.Name)
	}

	var sb strings.Builder
	sb.WriteString(d.Quote(c.Name))
	sb.WriteByte(' ')
	if c.AutoIncrement {
		sb.WriteString(d.AutoIncrement())
	} else {
		sb.WriteString(d.ColumnType(c.DataType, c.IsPrimaryKey || c.Unique))
	}

	if !c.Nullable && !(c.IsPrimaryKey && inlinePK) {
		sb.WriteString(" NOT NULL")
	}
	if c.IsPrimaryKey && inlinePK {
		sb.WriteString(" PRIMARY KEY")
	}
	if c.Unique && !c.IsPrimaryKey {
		sb.WriteString(" UNIQUE")
	}
	if c.DefaultValue != nil && *c.DefaultValue != "" {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(defaultExpr(d, *c.DefaultValue))
	}
	return sb.String(), nil
}

func foreignKeySQL(d Dialect, fk ForeignKeyDefinition) (string, error) {
	if !ValidIdentifier(fk.ColumnName) {
		return "", errValidationf("Invalid column name: %s", fk.ColumnName)
	}
	if !ValidIdentifier(fk.ForeignTable) {
		return "", errValidationf("Invalid table name: %s", fk.ForeignTable)
	}
	if !ValidIdentifier(fk.ForeignColumn) {
		return "", errValidationf("Invalid column name: %s", fk.ForeignColumn)
	}

	s := "FOREIGN KEY (" + d.Quote(fk.ColumnName) + ") REFERENCES " +
		d.Quote(fk.ForeignTable) + " (" + d.Quote(fk.ForeignColumn) + ")"

	if fk.OnDelete != "" {
		action := strings.ToUpper(strings.Join(strings.Fields(fk.OnDelete), " "))
		if !onDeleteActions[action] {
			return "", errValidationf("Invalid ON DELETE action: %s", fk.OnDelete)
		}
		s += " ON DELETE " + action
	}
	return s, nil
}

// CreateTable compiles a CreateTableRequest. A single primary-key column is
// declared inline; several produce a table-level PRIMARY KEY (…).
func CreateTable(d Dialect, req CreateTableRequest) (Statement, error) {
	if !ValidIdentifier(req.Name) {
		return Statement{}, errValidationf("Invalid table name: %s", req.Name)
	}
	if len(req.Columns) == 0 {
		return Statement{}, errValidation("At least one column is required")
	}

	var pks []string
	for _, c := range req.Columns {
		if c.IsPrimaryKey {
			pks = append(pks, c.Name)
		}
	}
	inlinePK := len(pks) <= 1

	defs := make([]string, 0, len(req.Columns)+len(req.ForeignKeys)+1)
	for _, c := range req.Columns {
		def, err := columnSQL(d, c, inlinePK)
		if err != nil {
			return Statement{}, err
		}
		defs = append(defs, def)
	}
	if !inlinePK {
		quoted := make([]string, len(pks))
		for i, pk := range pks {
			quoted[i] = d.Quote(pk)
		}
		defs = append(defs, "PRIMARY KEY ("+strings.Join(quoted, ", ")+")")
	}
	for _, fk := range req.ForeignKeys {
		def, err := foreignKeySQL(d, fk)
		if err != nil {
			return Statement{}, err
		}
		defs = append(defs, def)
	}

	sql := "CREATE TABLE " + d.Quote(req.Name) + " (" + strings.Join(defs, ", ") + ")"
	return Statement{SQL: sql}, nil
}

// AlterTable compiles one of RenameTable, AddColumn or DropColumn.
func AlterTable(d Dialect, table string, req AlterTableRequest) (Statement, error) {
	if !ValidIdentifier(table) {
		return Statement{}, errValidationf("Invalid table name: %s", table)
	}
	prefix := "ALTER TABLE " + d.Quote(table)

	switch req.AlterType {
	case AlterRenameTable:
		if !ValidIdentifier(req.NewName) {
			return Statement{}, errValidationf("Invalid table name: %s", req.NewName)
		}
		return Statement{SQL: prefix + " RENAME TO " + d.Quote(req.NewName)}, nil

	case AlterAddColumn:
		if req.ColumnDefinition == nil {
			return Statement{}, errValidation("column_definition is required")
		}
		def, err := columnSQL(d, *req.ColumnDefinition, true)
		if err != nil {
			return Statement{}, err
		}
		return Statement{SQL: prefix + " ADD COLUMN " + def}, nil

	case AlterDropColumn:
		if !ValidIdentifier(req.ColumnName) {
			return Statement{}, errValidationf("Invalid column name: %s", req.ColumnName)
		}
		return Statement{SQL: prefix + " DROP COLUMN " + d.Quote(req.ColumnName)}, nil

	default:
		return Statement{}, errValidationf("Unsupported alter operation: %s", req.AlterType)
	}
}

// DropTable compiles DROP TABLE.
func DropTable(d Dialect, table string) (Statement, error) {
	if !ValidIdentifier(table) {
		return Statement{}, errValidationf("Invalid table name: %s", table)
	}
	return Statement{SQL: "DROP TABLE " + d.Quote(table)}, nil
}
