package database

import (
	"strconv"
	"strings"
)

// Pagination bounds for table reads.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Page is a clamped page/limit pair: Number ≥ 1 and 1 ≤ Limit ≤ MaxLimit.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps raw request values into a valid Page.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: number, Limit: limit}
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// SortDirection controls the ORDER BY direction.
type SortDirection bool

const (
	Asc  SortDirection = false
	Desc SortDirection = true
)

// ParseSortDirection reads "desc" (any case) as Desc; everything else is Asc.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Desc
	}
	return Asc
}

func (s SortDirection) String() string {
	if s == Desc {
		return "DESC"
	}
	return "ASC"
}

// SelectBuilder constructs a paginated SELECT for one table.
// Page bounds are computed server-side and inlined as integers.
//
// Usage (Postgres):
//
//	stmt, err := Select(MustDialect(DriverPostgres), "users").
//	    Plan(plan).
//	    OrderBy("created_at", Desc).
//	    Page(NewPage(2, 20)).
//	    Build()
type SelectBuilder struct {
	dialect Dialect
	table   string
	plan    ReadPlan
	sort    string
	dir     SortDirection
	page    Page
}

// Select starts a new SelectBuilder for the given table and dialect.
// Without Plan the builder selects every column uncast.
func Select(d Dialect, table string) *SelectBuilder {
	return &SelectBuilder{dialect: d, table: table, page: NewPage(1, DefaultLimit)}
}

// Plan chooses between the cast column list and a raw SELECT *.
func (b *SelectBuilder) Plan(p ReadPlan) *SelectBuilder {
	b.plan = p
	return b
}

// OrderBy sets the sort column. An empty or invalid column drops ORDER BY.
func (b *SelectBuilder) OrderBy(column string, dir SortDirection) *SelectBuilder {
	b.sort = column
	b.dir = dir
	return b
}

// Page sets the page window.
func (b *SelectBuilder) Page(p Page) *SelectBuilder {
	b.page = NewPage(p.Number, p.Limit)
	return b
}

// Build produces the final SQL. Only an invalid table name is an error.
func (b *SelectBuilder) Build() (Statement, error) {
	if !ValidIdentifier(b.table) {
		return Statement{}, errValidationf("Invalid table name: %s", b.table)
	}
	table := b.dialect.Quote(b.table)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(b.selectList())
	sb.WriteString(" FROM ")
	sb.WriteString(table)

	// qualified so that cast aliases never shadow the source column
	if b.sort != "" && ValidIdentifier(b.sort) {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(table)
		sb.WriteByte('.')
		sb.WriteString(b.dialect.Quote(b.sort))
		sb.WriteByte(' ')
		sb.WriteString(b.dir.String())
	}

	sb.WriteString(" LIMIT ")
	sb.WriteString(strconv.Itoa(b.page.Limit))
	sb.WriteString(" OFFSET ")
	sb.WriteString(strconv.Itoa(b.page.Offset()))

	return Statement{SQL: sb.String()}, nil
}

func (b *SelectBuilder) selectList() string {
	if b.plan.Mode != ReadCast || len(b.plan.Columns) == 0 {
		return "*"
	}
	exprs := make([]string, len(b.plan.Columns))
	for i, c := range b.plan.Columns {
		exprs[i] = b.dialect.TextCast(c)
	}
	return strings.Join(exprs, ", ")
}

// IsSelect reports whether a raw statement takes the row-returning path:
// it begins with SELECT in any case after leading whitespace.
func IsSelect(sql string) bool {
	s := strings.TrimLeft(sql, " \t\r\n\f\v")
	return len(s) >= 6 && strings.EqualFold(s[:6], "SELECT")
}

// SelectPage is the one-call form of Select used by table reads and exports.
func SelectPage(d Dialect, table string, plan ReadPlan, sort string, dir SortDirection, page Page) (Statement, error) {
	return Select(d, table).Plan(plan).OrderBy(sort, dir).Page(page).Build()
}
