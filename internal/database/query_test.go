package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/duckgate/internal/errs"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"first page", 1, 50, 1, 50, 0},
		{"third page", 3, 20, 3, 20, 40},
		{"page zero clamps", 0, 10, 1, 10, 0},
		{"negative page clamps", -4, 10, 1, 10, 0},
		{"limit 500 clamps", 2, 500, 2, 100, 100},
		{"limit zero clamps", 1, 0, 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p.Number)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantOffset, p.Offset())
		})
	}
}

func TestNewPage_OffsetProperty(t *testing.T) {
	for page := 1; page <= 20; page++ {
		for limit := 1; limit <= MaxLimit; limit++ {
			assert.Equal(t, (page-1)*limit, NewPage(page, limit).Offset())
		}
	}
}

func TestSelectBuilder(t *testing.T) {
	pg := MustDialect(DriverPostgres)
	my := MustDialect(DriverMySQL)

	tests := []struct {
		name    string
		builder *SelectBuilder
		want    string
	}{
		{
			name:    "defaults",
			builder: Select(pg, "users"),
			want:    `SELECT * FROM "users" LIMIT 50 OFFSET 0`,
		},
		{
			name:    "sort and page",
			builder: Select(pg, "users").OrderBy("name", Desc).Page(NewPage(3, 10)),
			want:    `SELECT * FROM "users" ORDER BY "users"."name" DESC LIMIT 10 OFFSET 20`,
		},
		{
			name:    "invalid sort dropped",
			builder: Select(pg, "users").OrderBy("name; DROP TABLE users", Asc),
			want:    `SELECT * FROM "users" LIMIT 50 OFFSET 0`,
		},
		{
			name:    "cast plan",
			builder: Select(my, "users").Plan(ReadPlan{Mode: ReadCast, Columns: []string{"id", "born"}}).OrderBy("id", Asc),
			want:    "SELECT CAST(`id` AS CHAR) AS `id`, CAST(`born` AS CHAR) AS `born` FROM `users` ORDER BY `users`.`id` ASC LIMIT 50 OFFSET 0",
		},
		{
			name:    "degraded plan selects star",
			builder: Select(my, "users").Plan(PlanRead(my, nil, errors.New("denied"))),
			want:    "SELECT * FROM `users` LIMIT 50 OFFSET 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := tt.builder.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, stmt.SQL)
			assert.Empty(t, stmt.Args)
		})
	}
}

func TestSelectBuilder_InvalidTable(t *testing.T) {
	for _, name := range []string{"users;--", "1users", ""} {
		_, err := Select(MustDialect(DriverSQLite), name).Build()
		require.Error(t, err, name)
		assert.True(t, errs.IsValidation(err))
		assert.Contains(t, err.Error(), "Invalid table name: "+name)
	}

	_, err := Select(MustDialect(DriverSQLite), "users--").Build()
	assert.NoError(t, err)
}

func TestParseSortDirection(t *testing.T) {
	assert.Equal(t, Desc, ParseSortDirection("DESC"))
	assert.Equal(t, Desc, ParseSortDirection(" desc"))
	assert.Equal(t, Asc, ParseSortDirection("asc"))
	assert.Equal(t, Asc, ParseSortDirection(""))
	assert.Equal(t, Asc, ParseSortDirection("sideways"))
}

func TestIsSelect(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"select 1", true},
		{"SELECT * FROM t", true},
		{"  \n\tSeLeCt now()", true},
		{"update t set x=1", false},
		{"with x as (select 1) select * from x", false},
		{"sel", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSelect(tt.sql))
		})
	}
}

func TestPlanRead(t *testing.T) {
	pg := MustDialect(DriverPostgres)

	p := PlanRead(pg, []string{"id"}, nil)
	assert.Equal(t, ReadCast, p.Mode)
	assert.False(t, p.Degraded)

	p = PlanRead(pg, nil, errors.New("permission denied"))
	assert.Equal(t, ReadRaw, p.Mode)
	assert.True(t, p.Degraded)

	p = PlanRead(pg, nil, nil)
	assert.Equal(t, ReadRaw, p.Mode)
	assert.True(t, p.Degraded)

	p = PlanRead(MustDialect(DriverSQLite), []string{"id"}, nil)
	assert.Equal(t, ReadRaw, p.Mode)
	assert.False(t, p.Degraded)
	assert.Equal(t, "raw", p.Mode.String())
}

func TestSelectPage(t *testing.T) {
	stmt, err := SelectPage(MustDialect(DriverSQLite), "t", ReadPlan{}, "id", Asc, NewPage(2, 500))
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "t" ORDER BY "t"."id" ASC LIMIT 100 OFFSET 100`, stmt.SQL)
}
