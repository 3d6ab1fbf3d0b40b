package gateway

import (
	"context"
	"fmt"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/errs"
	"github.com/koustreak/duckgate/internal/schema"
	"github.com/koustreak/duckgate/internal/session"
)

func errValidation(msg string) error {
	return errs.New(errs.ErrKindValidation, msg)
}

// ListTables lists the tables and views of the session's database.
func (g *Service) ListTables(ctx context.Context, s *session.Session) ([]schema.TableInfo, error) {
	in, err := introspector(s)
	if err != nil {
		return nil, err
	}
	return in.ListTables(ctx)
}

// Columns describes the columns of table.
func (g *Service) Columns(ctx context.Context, s *session.Session, table string) ([]schema.ColumnInfo, error) {
	in, err := introspector(s)
	if err != nil {
		return nil, err
	}
	return in.Columns(ctx, table)
}

// Indexes describes the indexes of table.
func (g *Service) Indexes(ctx context.Context, s *session.Session, table string) ([]schema.IndexInfo, error) {
	in, err := introspector(s)
	if err != nil {
		return nil, err
	}
	return in.Indexes(ctx, table)
}

// ForeignKeys describes the outgoing foreign keys of table.
func (g *Service) ForeignKeys(ctx context.Context, s *session.Session, table string) ([]schema.ForeignKeyInfo, error) {
	in, err := introspector(s)
	if err != nil {
		return nil, err
	}
	return in.ForeignKeys(ctx, table)
}

// CreateTable creates a table from req.
func (g *Service) CreateTable(ctx context.Context, s *session.Session, req database.CreateTableRequest) (*MutationResult, error) {
	if err := connected(s); err != nil {
		return nil, err
	}
	stmt, err := database.CreateTable(s.Dialect(), req)
	if err != nil {
		return nil, err
	}
	return g.ddl(ctx, s, stmt, fmt.Sprintf("Table %s created successfully", req.Name))
}

// AlterTable applies one alter operation to table.
func (g *Service) AlterTable(ctx context.Context, s *session.Session, table string, req database.AlterTableRequest) (*MutationResult, error) {
	if err := connected(s); err != nil {
		return nil, err
	}
	stmt, err := database.AlterTable(s.Dialect(), table, req)
	if err != nil {
		return nil, err
	}
	return g.ddl(ctx, s, stmt, fmt.Sprintf("Table %s altered successfully", table))
}

// DropTable drops table.
func (g *Service) DropTable(ctx context.Context, s *session.Session, table string) (*MutationResult, error) {
	if err := connected(s); err != nil {
		return nil, err
	}
	stmt, err := database.DropTable(s.Dialect(), table)
	if err != nil {
		return nil, err
	}
	return g.ddl(ctx, s, stmt, fmt.Sprintf("Table %s dropped successfully", table))
}

func (g *Service) ddl(ctx context.Context, s *session.Session, stmt database.Statement, msg string) (*MutationResult, error) {
	res, err := exec(ctx, s.DB(), stmt, msg)
	if err != nil {
		return nil, err
	}
	g.log.InfoWith("schema changed", map[string]any{
		"database": s.Database(),
		"db_type":  string(s.Dialect().Driver()),
		"sql":      stmt.SQL,
	})
	return res, nil
}
