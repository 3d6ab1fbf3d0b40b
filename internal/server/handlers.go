package server

import (
	"net/http"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/gateway"
	"github.com/koustreak/duckgate/internal/session"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- connection ---

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var creds session.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.svc.Connect(r.Context(), creds)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, resp)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.svc.Status(optionalToken(r)))
}

func (s *Server) disconnect(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.svc.Disconnect(optionalToken(r)))
}

func (s *Server) databaseInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.svc.Info(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, info)
}

// --- schema ---

func (s *Server) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.svc.ListTables(r.Context(), sessionFrom(r))
	respond(w, r, tables, err)
}

func (s *Server) tableColumns(w http.ResponseWriter, r *http.Request) {
	cols, err := s.svc.Columns(r.Context(), sessionFrom(r), pathParam(r, "name"))
	respond(w, r, cols, err)
}

func (s *Server) tableIndexes(w http.ResponseWriter, r *http.Request) {
	idx, err := s.svc.Indexes(r.Context(), sessionFrom(r), pathParam(r, "name"))
	respond(w, r, idx, err)
}

func (s *Server) tableForeignKeys(w http.ResponseWriter, r *http.Request) {
	fks, err := s.svc.ForeignKeys(r.Context(), sessionFrom(r), pathParam(r, "name"))
	respond(w, r, fks, err)
}

func (s *Server) createTable(w http.ResponseWriter, r *http.Request) {
	var req database.CreateTableRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.CreateTable(r.Context(), sessionFrom(r), req)
	respond(w, r, res, err)
}

func (s *Server) alterTable(w http.ResponseWriter, r *http.Request) {
	var req database.AlterTableRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.AlterTable(r.Context(), sessionFrom(r), pathParam(r, "name"), req)
	respond(w, r, res, err)
}

func (s *Server) dropTable(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.DropTable(r.Context(), sessionFrom(r), pathParam(r, "name"))
	respond(w, r, res, err)
}

// --- rows ---

func (s *Server) readRows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := gateway.ReadParams{
		Page:  intQuery(r, "page", 1),
		Limit: intQuery(r, "limit", database.DefaultLimit),
		Sort:  q.Get("sort"),
		Order: database.ParseSortDirection(q.Get("order")),
	}
	page, err := s.svc.ReadRows(r.Context(), sessionFrom(r), pathParam(r, "name"), params)
	respond(w, r, page, err)
}

func (s *Server) insertRow(w http.ResponseWriter, r *http.Request) {
	var values database.Values
	if err := decodeJSON(w, r, &values); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.InsertRow(r.Context(), sessionFrom(r), pathParam(r, "name"), values)
	respond(w, r, res, err)
}

func (s *Server) updateRow(w http.ResponseWriter, r *http.Request) {
	var values database.Values
	if err := decodeJSON(w, r, &values); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.UpdateRow(r.Context(), sessionFrom(r), pathParam(r, "name"), pathParam(r, "id"), values)
	respond(w, r, res, err)
}

func (s *Server) deleteRow(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.DeleteRow(r.Context(), sessionFrom(r), pathParam(r, "name"), pathParam(r, "id"))
	respond(w, r, res, err)
}

func (s *Server) exportTable(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.ExportTable(r.Context(), sessionFrom(r), pathParam(r, "name"))
	respond(w, r, res, err)
}

// --- raw query ---

type queryRequest struct {
	SQL string `json:"sql"`
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.Execute(r.Context(), sessionFrom(r), req.SQL)
	respond(w, r, res, err)
}

func respond(w http.ResponseWriter, r *http.Request, data any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, data)
}
