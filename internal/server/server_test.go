package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/duckgate/internal/config"
	"github.com/koustreak/duckgate/internal/gateway"
	"github.com/koustreak/duckgate/internal/logger"
	"github.com/koustreak/duckgate/internal/session"
)

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type harness struct {
	t   *testing.T
	h   http.Handler
	reg *session.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logger.New(&logger.Config{Level: "error", Output: io.Discard})
	reg := session.NewRegistry(nil, session.WithLogger(log))
	t.Cleanup(reg.CloseAll)

	srv := New(gateway.New(reg, gateway.WithLogger(log)), reg, log, config.Default().Server)
	return &harness{t: t, h: srv.Handler(), reg: reg}
}

func (h *harness) do(method, path, token string, body any) (int, response) {
	h.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)

	var resp response
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func (h *harness) connect() string {
	h.t.Helper()
	code, resp := h.do(http.MethodPost, "/api/connect", "", map[string]any{
		"database": filepath.Join(h.t.TempDir(), "api.db"),
		"db_type":  "sqlite",
	})
	require.Equal(h.t, http.StatusOK, code, resp.Error)

	var out struct {
		Token  string `json:"token"`
		DBType string `json:"db_type"`
	}
	require.NoError(h.t, json.Unmarshal(resp.Data, &out))
	assert.Equal(h.t, "sqlite", out.DBType)
	return out.Token
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name   string
		header string
		msg    string
	}{
		{"missing header", "", session.MsgMissingHeader},
		{"wrong scheme", "Token abc", session.MsgInvalidFormat},
		{"lowercase scheme", "bearer abc", session.MsgInvalidFormat},
		{"unknown token", "Bearer abc", session.MsgInvalidSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/schema/tables", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"success":false,"error":"`+tt.msg+`"}`, rec.Body.String())
		})
	}
}

func TestTableFlow(t *testing.T) {
	h := newHarness(t)
	token := h.connect()

	code, resp := h.do(http.MethodPost, "/api/schema/table", token, map[string]any{
		"name": "t",
		"columns": []map[string]any{
			{"name": "id", "data_type": "INTEGER", "is_primary_key": true},
			{"name": "name", "data_type": "TEXT", "nullable": false},
		},
	})
	require.Equal(t, http.StatusOK, code, resp.Error)

	code, resp = h.do(http.MethodPost, "/api/table/t", token, map[string]any{"name": "a"})
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.JSONEq(t, `{"message":"Row inserted successfully","rows_affected":1}`, string(resp.Data))

	code, resp = h.do(http.MethodGet, "/api/table/t?page=1&limit=50", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"rows":[{"id":1,"name":"a"}],"page":1,"limit":50}`, string(resp.Data))

	code, resp = h.do(http.MethodPut, "/api/table/t/1", token, map[string]any{"name": "b"})
	require.Equal(t, http.StatusOK, code, resp.Error)

	_, resp = h.do(http.MethodGet, "/api/table/t?page=abc&limit=500&sort=id&order=desc", token, nil)
	assert.JSONEq(t, `{"rows":[{"id":1,"name":"b"}],"page":1,"limit":100}`, string(resp.Data))

	code, resp = h.do(http.MethodDelete, "/api/table/t/1", token, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)

	_, resp = h.do(http.MethodGet, "/api/table/t", token, nil)
	assert.JSONEq(t, `{"rows":[],"page":1,"limit":50}`, string(resp.Data))
}

func TestRowIDsWithEscapes(t *testing.T) {
	h := newHarness(t)
	token := h.connect()

	code, resp := h.do(http.MethodPost, "/api/schema/table", token, map[string]any{
		"name": "t",
		"columns": []map[string]any{
			{"name": "id", "data_type": "TEXT", "is_primary_key": true},
			{"name": "name", "data_type": "TEXT"},
		},
	})
	require.Equal(t, http.StatusOK, code, resp.Error)

	tests := []struct {
		id   string
		path string
	}{
		{"a%20b", "/api/table/t/a%2520b"},
		{"100%25", "/api/table/t/100%2525"},
		{"a/b", "/api/table/t/a%2Fb"},
		{"a b", "/api/table/t/a%20b"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			code, resp := h.do(http.MethodPost, "/api/table/t", token, map[string]any{"id": tt.id, "name": "x"})
			require.Equal(t, http.StatusOK, code, resp.Error)

			code, resp = h.do(http.MethodPut, tt.path, token, map[string]any{"name": "y"})
			require.Equal(t, http.StatusOK, code, resp.Error)
			assert.JSONEq(t, `{"message":"Row updated successfully","rows_affected":1}`, string(resp.Data))

			code, resp = h.do(http.MethodDelete, tt.path, token, nil)
			require.Equal(t, http.StatusOK, code, resp.Error)
			assert.JSONEq(t, `{"message":"Row deleted successfully","rows_affected":1}`, string(resp.Data))
		})
	}
}

func TestSchemaRoutes(t *testing.T) {
	h := newHarness(t)
	token := h.connect()

	_, resp := h.do(http.MethodPost, "/api/query", token, map[string]string{
		"sql": "CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT UNIQUE)",
	})
	require.True(t, resp.Success, resp.Error)
	_, resp = h.do(http.MethodPost, "/api/query", token, map[string]string{
		"sql": "CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER REFERENCES users(id))",
	})
	require.True(t, resp.Success, resp.Error)

	_, resp = h.do(http.MethodGet, "/api/schema/tables", token, nil)
	assert.JSONEq(t, `[
		{"name":"orders","table_type":"TABLE","row_count_estimate":null},
		{"name":"users","table_type":"TABLE","row_count_estimate":null}
	]`, string(resp.Data))

	_, resp = h.do(http.MethodGet, "/api/schema/table/orders/foreign-keys", token, nil)
	assert.JSONEq(t, `[{"constraint_name":"fk_orders_0","column_name":"user_id","foreign_table":"users","foreign_column":"id"}]`, string(resp.Data))

	_, resp = h.do(http.MethodGet, "/api/schema/table/users/indexes", token, nil)
	var idx []map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &idx))
	require.Len(t, idx, 1)
	assert.Equal(t, true, idx[0]["is_unique"])
	assert.Equal(t, []any{"email"}, idx[0]["column_names"])

	code, resp := h.do(http.MethodPut, "/api/schema/table/orders", token, map[string]any{
		"alter_type": "RenameTable",
		"new_name":   "purchases",
	})
	require.Equal(t, http.StatusOK, code, resp.Error)

	_, resp = h.do(http.MethodGet, "/api/schema/table/purchases", token, nil)
	var cols []map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &cols))
	assert.Len(t, cols, 2)

	code, _ = h.do(http.MethodDelete, "/api/schema/table/purchases", token, nil)
	assert.Equal(t, http.StatusOK, code)

	_, resp = h.do(http.MethodGet, "/api/database/info", token, nil)
	var info map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &info))
	assert.Equal(t, "SQLite", info["db_type"])
	assert.EqualValues(t, 1, info["table_count"])
}

func TestQueryRoute(t *testing.T) {
	h := newHarness(t)
	token := h.connect()

	_, resp := h.do(http.MethodPost, "/api/query", token, map[string]string{"sql": "SELECT 1 AS one"})
	assert.JSONEq(t, `{"rows":[{"one":1}],"row_count":1}`, string(resp.Data))

	_, resp = h.do(http.MethodPost, "/api/query", token, map[string]string{"sql": "CREATE TABLE x (a INTEGER)"})
	var res map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &res))
	assert.Equal(t, "Query executed successfully", res["message"])
	assert.Contains(t, res, "rows_affected")
	assert.NotContains(t, res, "rows")

	code, resp := h.do(http.MethodPost, "/api/query", token, map[string]string{"sql": "SELECT * FROM nowhere"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "no such table")
}

func TestValidationErrors(t *testing.T) {
	h := newHarness(t)
	token := h.connect()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		msg    string
	}{
		{"empty object", http.MethodPost, "/api/table/t", "{}", "Request body must be a non-empty JSON object"},
		{"no body", http.MethodPost, "/api/table/t", nil, "Request body is required"},
		{"not json", http.MethodPost, "/api/table/t", "name=a", "Invalid JSON body"},
		{"bad column", http.MethodPost, "/api/table/t", `{"a b":1}`, "Invalid column name: a b"},
		{"bad table", http.MethodGet, "/api/table/t;drop", nil, "Invalid table name: t;drop"},
		{"escaped table", http.MethodGet, "/api/schema/table/a%20b", nil, "Invalid table name: a b"},
		{"bad alter", http.MethodPut, "/api/schema/table/t", `{"alter_type":"ModifyColumn"}`, "Unsupported alter operation: ModifyColumn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := h.do(tt.method, tt.path, token, tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.msg)
		})
	}
}

func TestExportUnavailable(t *testing.T) {
	h := newHarness(t)
	token := h.connect()

	code, resp := h.do(http.MethodPost, "/api/table/t/export", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "table export is not configured", resp.Error)
}

func TestConnectErrors(t *testing.T) {
	h := newHarness(t)

	code, resp := h.do(http.MethodPost, "/api/connect", "", map[string]any{"database": "x", "db_type": "oracle"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error, "unsupported database type")

	code, resp = h.do(http.MethodPost, "/api/connect", "", map[string]any{"db_type": "postgres", "database": "shop"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "host is required", resp.Error)

	assert.Equal(t, 0, h.reg.Len())
}

func TestStatusAndDisconnect(t *testing.T) {
	h := newHarness(t)

	_, resp := h.do(http.MethodGet, "/api/status", "", nil)
	assert.JSONEq(t, `{"connected":false,"database":null,"db_type":null}`, string(resp.Data))

	token := h.connect()
	_, resp = h.do(http.MethodGet, "/api/status", token, nil)
	var st struct {
		Connected bool   `json:"connected"`
		DBType    string `json:"db_type"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &st))
	assert.True(t, st.Connected)
	assert.Equal(t, "sqlite", st.DBType)

	code, resp := h.do(http.MethodPost, "/api/disconnect", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"connected":false,"database":null,"db_type":null}`, string(resp.Data))

	code, _ = h.do(http.MethodGet, "/api/schema/tables", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	// idempotent, with or without a token
	code, _ = h.do(http.MethodPost, "/api/disconnect", token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = h.do(http.MethodPost, "/api/disconnect", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestNotFoundEnvelope(t *testing.T) {
	h := newHarness(t)
	code, resp := h.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, resp.Success)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/connect", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_Shutdown(t *testing.T) {
	reg := session.NewRegistry(nil)
	cfg := config.Default().Server
	cfg.ShutdownTimeout = time.Second
	srv := New(gateway.New(reg), reg, logger.New(&logger.Config{Level: "error", Output: io.Discard}), cfg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
