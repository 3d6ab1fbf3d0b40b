package gateway

import (
	"context"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/schema"
	"github.com/koustreak/duckgate/internal/session"
)

// ReadParams are the table read query parameters. Page and Limit are
// clamped; an empty or invalid Sort reads unordered.
type ReadParams struct {
	Page  int
	Limit int
	Sort  string
	Order database.SortDirection
}

// PaginatedRows is one page of a table read.
type PaginatedRows struct {
	Rows  []*database.Record `json:"rows"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// MutationResult is returned by row writes and DDL.
type MutationResult struct {
	Message      string `json:"message"`
	RowsAffected int64  `json:"rows_affected"`
}

// QueryResult is the outcome of a raw statement. Row-returning statements
// fill Rows and RowCount; everything else fills Message and RowsAffected.
type QueryResult struct {
	Rows         []*database.Record `json:"rows,omitzero"`
	RowCount     *int               `json:"row_count,omitempty"`
	Message      string             `json:"message,omitempty"`
	RowsAffected *int64             `json:"rows_affected,omitempty"`
}

// ReadRows returns one page of table.
func (g *Service) ReadRows(ctx context.Context, s *session.Session, table string, p ReadParams) (*PaginatedRows, error) {
	in, err := introspector(s)
	if err != nil {
		return nil, err
	}
	page := database.NewPage(p.Page, p.Limit)
	plan := g.readPlan(ctx, in, s.Dialect(), table)

	stmt, err := database.SelectPage(s.Dialect(), table, plan, p.Sort, p.Order, page)
	if err != nil {
		return nil, err
	}
	recs, err := query(ctx, s.DB(), stmt)
	if err != nil {
		return nil, err
	}
	return &PaginatedRows{Rows: recs, Page: page.Number, Limit: page.Limit}, nil
}

// readPlan probes the catalog only on engines that read through text casts.
func (g *Service) readPlan(ctx context.Context, in schema.Reader, d database.Dialect, table string) database.ReadPlan {
	if !d.NeedsTextCast() {
		return database.PlanRead(d, nil, nil)
	}
	cols, err := in.ColumnNames(ctx, table)
	plan := database.PlanRead(d, cols, err)
	if plan.Degraded {
		g.log.WarnWith("column probe failed, reading uncast", err, map[string]any{
			"table":   table,
			"db_type": string(d.Driver()),
		})
	}
	return plan
}

// InsertRow inserts values as one row of table.
func (g *Service) InsertRow(ctx context.Context, s *session.Session, table string, values database.Values) (*MutationResult, error) {
	if err := connected(s); err != nil {
		return nil, err
	}
	stmt, err := database.Insert(s.Dialect(), table, values, database.BindPlaceholders)
	if err != nil {
		return nil, err
	}
	return exec(ctx, s.DB(), stmt, "Row inserted successfully")
}

// UpdateRow sets values on the row of table whose primary key equals id.
func (g *Service) UpdateRow(ctx context.Context, s *session.Session, table, id string, values database.Values) (*MutationResult, error) {
	in, err := introspector(s)
	if err != nil {
		return nil, err
	}
	pk, err := in.PrimaryKey(ctx, table)
	if err != nil {
		return nil, err
	}
	stmt, err := database.Update(s.Dialect(), table, pk, id, values, database.BindPlaceholders)
	if err != nil {
		return nil, err
	}
	return exec(ctx, s.DB(), stmt, "Row updated successfully")
}

// DeleteRow deletes the row of table whose primary key equals id.
func (g *Service) DeleteRow(ctx context.Context, s *session.Session, table, id string) (*MutationResult, error) {
	in, err := introspector(s)
	if err != nil {
		return nil, err
	}
	pk, err := in.PrimaryKey(ctx, table)
	if err != nil {
		return nil, err
	}
	stmt, err := database.Delete(s.Dialect(), table, pk, id)
	if err != nil {
		return nil, err
	}
	return exec(ctx, s.DB(), stmt, "Row deleted successfully")
}

// Execute runs a raw statement with the session's full privileges.
func (g *Service) Execute(ctx context.Context, s *session.Session, sql string) (*QueryResult, error) {
	if err := connected(s); err != nil {
		return nil, err
	}
	if sql == "" {
		return nil, errValidation("sql is required")
	}

	if database.IsSelect(sql) {
		recs, err := query(ctx, s.DB(), database.Statement{SQL: sql})
		if err != nil {
			return nil, err
		}
		n := len(recs)
		return &QueryResult{Rows: recs, RowCount: &n}, nil
	}

	n, err := s.DB().Exec(ctx, sql)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Message: "Query executed successfully", RowsAffected: &n}, nil
}

func query(ctx context.Context, db database.DB, stmt database.Statement) ([]*database.Record, error) {
	rows, err := db.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	return database.ScanRecords(rows)
}

func exec(ctx context.Context, db database.DB, stmt database.Statement, msg string) (*MutationResult, error) {
	n, err := db.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Message: msg, RowsAffected: n}, nil
}
