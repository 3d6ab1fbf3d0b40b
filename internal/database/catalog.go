package database

// Catalog queries, one block per engine. Postgres reads the public schema of
// the connected database; MySQL filters information_schema by database
// name; SQLite reads pragma table-valued functions, whose arguments are
// inlined as literals because PRAGMA arguments cannot be bound.

// --- Postgres ---

func (postgresDialect) TablesQuery(string) (string, []any) {
	const q = `
		SELECT table_name,
		       table_type,
		       NULL::bigint AS row_count_estimate
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name`
	return q, nil
}

func (postgresDialect) ColumnsQuery(_, table string) (string, []any) {
	const q = `
		SELECT c.column_name,
		       c.data_type,
		       c.is_nullable,
		       c.column_default,
		       EXISTS (
		           SELECT 1
		           FROM information_schema.table_constraints tc
		           JOIN information_schema.key_column_usage kcu
		             ON tc.constraint_name = kcu.constraint_name
		            AND tc.table_schema    = kcu.table_schema
		           WHERE tc.constraint_type = 'PRIMARY KEY'
		             AND tc.table_schema    = c.table_schema
		             AND tc.table_name      = c.table_name
		             AND kcu.column_name    = c.column_name
		       ) AS is_primary_key
		FROM information_schema.columns c
		WHERE c.table_schema = 'public'
		  AND c.table_name   = $1
		ORDER BY c.ordinal_position`
	return q, []any{table}
}

func (postgresDialect) IndexesQuery(_, table string) (string, []any) {
	const q = `
		SELECT i.relname,
		       string_agg(a.attname, ',' ORDER BY array_position(ix.indkey::int2[], a.attnum)),
		       ix.indisunique,
		       ix.indisprimary
		FROM pg_class t
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_index ix    ON ix.indrelid = t.oid
		JOIN pg_class i     ON i.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE n.nspname = 'public'
		  AND t.relname = $1
		GROUP BY i.relname, ix.indisunique, ix.indisprimary
		ORDER BY i.relname`
	return q, []any{table}
}

func (postgresDialect) IndexColumnsQuery(string) (string, []any, bool) { return "", nil, false }

func (postgresDialect) ForeignKeysQuery(_, table string) (string, []any) {
	const q = `
		SELECT tc.constraint_name,
		       kcu.column_name,
		       ccu.table_name  AS foreign_table,
		       ccu.column_name AS foreign_column
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema    = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
		  ON ccu.constraint_name = tc.constraint_name
		 AND ccu.table_schema    = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema    = 'public'
		  AND tc.table_name      = $1
		ORDER BY tc.constraint_name`
	return q, []any{table}
}

func (postgresDialect) PrimaryKeyQuery(_, table string) (string, []any) {
	const q = `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema    = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema    = 'public'
		  AND tc.table_name      = $1
		ORDER BY kcu.ordinal_position
		LIMIT 1`
	return q, []any{table}
}

func (postgresDialect) ColumnNamesQuery(_, table string) (string, []any) {
	const q = `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = 'public'
		  AND table_name   = $1
		ORDER BY ordinal_position`
	return q, []any{table}
}

func (postgresDialect) VersionQuery() string { return "SELECT version()" }

func (postgresDialect) TableCountQuery(string) (string, []any) {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public'", nil
}

// --- MySQL ---

func (mysqlDialect) TablesQuery(database string) (string, []any) {
	const q = `
		SELECT table_name,
		       table_type,
		       table_rows
		FROM information_schema.tables
		WHERE table_schema = ?
		ORDER BY table_name`
	return q, []any{database}
}

func (mysqlDialect) ColumnsQuery(database, table string) (string, []any) {
	const q = `
		SELECT column_name,
		       column_type,
		       is_nullable,
		       column_default,
		       column_key = 'PRI' AS is_primary_key
		FROM information_schema.columns
		WHERE table_schema = ?
		  AND table_name   = ?
		ORDER BY ordinal_position`
	return q, []any{database, table}
}

func (mysqlDialect) IndexesQuery(database, table string) (string, []any) {
	const q = `
		SELECT index_name,
		       GROUP_CONCAT(column_name ORDER BY seq_in_index SEPARATOR ','),
		       MIN(non_unique) = 0,
		       index_name = 'PRIMARY'
		FROM information_schema.statistics
		WHERE table_schema = ?
		  AND table_name   = ?
		GROUP BY index_name
		ORDER BY index_name`
	return q, []any{database, table}
}

func (mysqlDialect) IndexColumnsQuery(string) (string, []any, bool) { return "", nil, false }

func (mysqlDialect) ForeignKeysQuery(database, table string) (string, []any) {
	const q = `
		SELECT constraint_name,
		       column_name,
		       referenced_table_name,
		       referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
		  AND table_name   = ?
		  AND referenced_table_name IS NOT NULL
		ORDER BY constraint_name`
	return q, []any{database, table}
}

func (mysqlDialect) PrimaryKeyQuery(database, table string) (string, []any) {
	const q = `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema    = ?
		  AND table_name      = ?
		  AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
		LIMIT 1`
	return q, []any{database, table}
}

func (mysqlDialect) ColumnNamesQuery(database, table string) (string, []any) {
	const q = `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = ?
		  AND table_name   = ?
		ORDER BY ordinal_position`
	return q, []any{database, table}
}

func (mysqlDialect) VersionQuery() string { return "SELECT version()" }

func (mysqlDialect) TableCountQuery(database string) (string, []any) {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = ?", []any{database}
}

// --- SQLite ---

func (sqliteDialect) TablesQuery(string) (string, []any) {
	const q = `
		SELECT name,
		       type,
		       NULL AS row_count_estimate
		FROM sqlite_master
		WHERE type IN ('table', 'view')
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name`
	return q, nil
}

func (d sqliteDialect) ColumnsQuery(_, table string) (string, []any) {
	return `
		SELECT name,
		       type,
		       CASE WHEN "notnull" = 0 THEN 'YES' ELSE 'NO' END,
		       dflt_value,
		       pk
		FROM pragma_table_info(` + d.Literal(table) + `)
		ORDER BY cid`, nil
}

func (d sqliteDialect) IndexesQuery(_, table string) (string, []any) {
	return `
		SELECT name,
		       NULL,
		       "unique",
		       origin = 'pk'
		FROM pragma_index_list(` + d.Literal(table) + `)
		ORDER BY name`, nil
}

func (d sqliteDialect) IndexColumnsQuery(index string) (string, []any, bool) {
	return `
		SELECT name
		FROM pragma_index_info(` + d.Literal(index) + `)
		ORDER BY seqno`, nil, true
}

// SQLite does not name foreign keys; the name is derived from the pragma row id.
func (d sqliteDialect) ForeignKeysQuery(_, table string) (string, []any) {
	lit := d.Literal(table)
	return `
		SELECT 'fk_' || ` + lit + ` || '_' || id,
		       "from",
		       "table",
		       "to"
		FROM pragma_foreign_key_list(` + lit + `)
		ORDER BY id, seq`, nil
}

func (d sqliteDialect) PrimaryKeyQuery(_, table string) (string, []any) {
	return `
		SELECT name
		FROM pragma_table_info(` + d.Literal(table) + `)
		WHERE pk > 0
		ORDER BY pk
		LIMIT 1`, nil
}

func (d sqliteDialect) ColumnNamesQuery(_, table string) (string, []any) {
	return `
		SELECT name
		FROM pragma_table_info(` + d.Literal(table) + `)
		ORDER BY cid`, nil
}

func (sqliteDialect) VersionQuery() string { return "SELECT sqlite_version()" }

func (sqliteDialect) TableCountQuery(string) (string, []any) {
	return "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'", nil
}
