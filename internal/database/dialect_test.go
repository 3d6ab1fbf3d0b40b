package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/duckgate/internal/errs"
)

func TestDialectFor(t *testing.T) {
	for _, d := range []Driver{DriverPostgres, DriverMySQL, DriverSQLite} {
		dl, err := DialectFor(d)
		require.NoError(t, err)
		assert.Equal(t, d, dl.Driver())
	}

	_, err := DialectFor("oracle")
	assert.True(t, errs.IsValidation(err))
	assert.Panics(t, func() { MustDialect("oracle") })
}

func TestParseDriver(t *testing.T) {
	d, err := ParseDriver(" Postgres ")
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, d)

	_, err = ParseDriver("mssql")
	assert.True(t, errs.IsValidation(err))

	assert.Equal(t, 5432, DriverPostgres.DefaultPort())
	assert.Equal(t, 3306, DriverMySQL.DefaultPort())
	assert.Equal(t, 0, DriverSQLite.DefaultPort())
}

func TestDialect_Placeholder(t *testing.T) {
	assert.Equal(t, "$1", MustDialect(DriverPostgres).Placeholder(1))
	assert.Equal(t, "$12", MustDialect(DriverPostgres).Placeholder(12))
	assert.Equal(t, "?", MustDialect(DriverMySQL).Placeholder(3))
	assert.Equal(t, "?", MustDialect(DriverSQLite).Placeholder(3))
}

func TestDialect_ColumnType(t *testing.T) {
	tests := []struct {
		logical  string
		keyed    bool
		postgres string
		mysql    string
		sqlite   string
	}{
		{"TEXT", false, "TEXT", "TEXT", "TEXT"},
		{"text", true, "TEXT", "VARCHAR(255)", "TEXT"},
		{"INTEGER", false, "INTEGER", "INT", "INTEGER"},
		{"bigint", false, "INTEGER", "INT", "INTEGER"},
		{"BOOLEAN", false, "BOOLEAN", "TINYINT(1)", "INTEGER"},
		{"DATETIME", false, "TIMESTAMP", "DATETIME", "DATETIME"},
		{"FLOAT", false, "DOUBLE PRECISION", "DOUBLE", "REAL"},
		{"UUID", false, "UUID", "CHAR(36)", "TEXT"},
		{"geometry", false, "TEXT", "TEXT", "TEXT"},
	}

	for _, tt := range tests {
		t.Run(tt.logical, func(t *testing.T) {
			assert.Equal(t, tt.postgres, MustDialect(DriverPostgres).ColumnType(tt.logical, tt.keyed))
			assert.Equal(t, tt.mysql, MustDialect(DriverMySQL).ColumnType(tt.logical, tt.keyed))
			assert.Equal(t, tt.sqlite, MustDialect(DriverSQLite).ColumnType(tt.logical, tt.keyed))
		})
	}
}

func TestDialect_TextCast(t *testing.T) {
	assert.Equal(t, `"created_at"::text AS "created_at"`, MustDialect(DriverPostgres).TextCast("created_at"))
	assert.Equal(t, "CAST(`created_at` AS CHAR) AS `created_at`", MustDialect(DriverMySQL).TextCast("created_at"))
	assert.False(t, MustDialect(DriverSQLite).NeedsTextCast())
}

func TestCatalog_SQLiteInlinesEscapedNames(t *testing.T) {
	q, args := MustDialect(DriverSQLite).ColumnsQuery("", "o'brien")
	assert.Contains(t, q, "pragma_table_info('o''brien')")
	assert.Empty(t, args)

	_, _, ok := MustDialect(DriverSQLite).IndexColumnsQuery("idx")
	assert.True(t, ok)
	_, _, ok = MustDialect(DriverPostgres).IndexColumnsQuery("idx")
	assert.False(t, ok)
}

func TestCatalog_BindsNames(t *testing.T) {
	_, args := MustDialect(DriverPostgres).ColumnsQuery("shop", "users")
	assert.Equal(t, []any{"users"}, args)

	_, args = MustDialect(DriverMySQL).ColumnsQuery("shop", "users")
	assert.Equal(t, []any{"shop", "users"}, args)
}
