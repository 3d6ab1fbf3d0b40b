package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/errs"
	"github.com/koustreak/duckgate/internal/schema"
	"github.com/koustreak/duckgate/internal/session"
)

const exportContentType = "application/x-ndjson"

// ExportResult locates a finished table export.
type ExportResult struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Rows   int    `json:"rows"`
	Size   int64  `json:"size"`
	ETag   string `json:"etag,omitempty"`
}

// ExportTable streams every row of table as JSON lines into the export
// bucket. Rows are read page by page with the same plan as ReadRows.
func (g *Service) ExportTable(ctx context.Context, s *session.Session, table string) (*ExportResult, error) {
	if g.exports == nil {
		return nil, errs.New(errs.ErrKindUnavailable, "table export is not configured")
	}
	in, err := introspector(s)
	if err != nil {
		return nil, err
	}
	if !database.ValidIdentifier(table) {
		return nil, errs.Newf(errs.ErrKindValidation, "Invalid table name: %s", table)
	}

	cols, probeErr := in.ColumnNames(ctx, table)
	plan := database.PlanRead(s.Dialect(), cols, probeErr)
	order := exportOrder(ctx, in, table, cols)
	key := exportKey(s.Database(), table, g.now())

	pr, pw := io.Pipe()
	eg, ectx := errgroup.WithContext(ctx)

	var (
		rows       int
		werr, perr error
	)
	cw := &countingWriter{w: pw}
	eg.Go(func() error {
		rows, werr = g.writeRows(ectx, s, table, plan, order, cw)
		pw.CloseWithError(werr)
		return werr
	})

	eg.Go(func() error {
		_, perr = g.exports.PutObject(ectx, g.bucket, key, pr, -1, exportContentType)
		// unblock the writer if the upload gave up early
		pr.CloseWithError(perr)
		return perr
	})

	if eg.Wait() != nil {
		err := exportError(werr, perr)
		g.log.WarnWith("export failed", err, map[string]any{"table": table, "key": key})
		return nil, err
	}

	res := &ExportResult{Bucket: g.bucket, Key: key, Rows: rows, Size: cw.n}
	if info, err := g.exports.StatObject(ctx, g.bucket, key); err != nil {
		g.log.WarnWith("export stat failed", err, map[string]any{"key": key})
	} else {
		res.Size = info.Size
		res.ETag = info.ETag
	}

	g.log.InfoWith("table exported", map[string]any{
		"table": table,
		"key":   key,
		"rows":  rows,
		"bytes": res.Size,
	})
	return res, nil
}

func (g *Service) writeRows(ctx context.Context, s *session.Session, table string, plan database.ReadPlan, order string, w io.Writer) (int, error) {
	enc := json.NewEncoder(w)
	total := 0
	for n := 1; ; n++ {
		page := database.NewPage(n, database.MaxLimit)
		stmt, err := database.SelectPage(s.Dialect(), table, plan, order, database.Asc, page)
		if err != nil {
			return total, err
		}
		recs, err := query(ctx, s.DB(), stmt)
		if err != nil {
			return total, err
		}
		for _, rec := range recs {
			if err := enc.Encode(rec); err != nil {
				return total, errs.Wrap(errs.ErrKindExecution, "failed to write export", err)
			}
		}
		total += len(recs)
		if len(recs) < page.Limit {
			return total, nil
		}
	}
}

// exportOrder picks a stable sort column so pages never overlap: the
// primary key when it exists, else the first column.
func exportOrder(ctx context.Context, in schema.Reader, table string, cols []string) string {
	if len(cols) == 0 {
		return ""
	}
	if pk, err := in.PrimaryKey(ctx, table); err == nil && slices.Contains(cols, pk) {
		return pk
	}
	return cols[0]
}

// exportKey is exports/<database>/<table>/<UTC timestamp>.jsonl. A SQLite
// file path contributes only its base name.
func exportKey(dbName, table string, at time.Time) string {
	base := filepath.Base(dbName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("exports/%s/%s/%s.jsonl", base, table, at.UTC().Format("20060102T150405.000Z"))
}

// exportError picks the root cause out of the two pipe ends. Each side
// sees the other's failure through the pipe.
func exportError(werr, perr error) error {
	switch {
	case perr == nil:
		return werr
	case werr == nil:
		return perr
	case errors.Is(perr, werr):
		return werr
	default:
		return perr
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
