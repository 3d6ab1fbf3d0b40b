package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/koustreak/duckgate/internal/errs"
	"github.com/koustreak/duckgate/internal/logger"
)

// envelope wraps every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeStatus(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Error: msg})
}

// writeError renders err into the envelope. Server-side failures are
// logged with their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorWith("request failed", err, map[string]any{
			"kind": errs.KindOf(err).String(),
		})
	}
	writeStatus(w, status, errs.Public(err))
}

// decodeJSON reads one JSON value from the body into dst. Numbers decode
// as json.Number so integers keep their precision.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errs.New(errs.ErrKindValidation, "Request body is required")
		case errors.As(err, &tooBig):
			return errs.Newf(errs.ErrKindValidation, "Request body exceeds %d bytes", tooBig.Limit)
		default:
			return errs.Wrap(errs.ErrKindValidation, "Invalid JSON body: "+err.Error(), err)
		}
	}
	return nil
}

// pathParam returns the decoded route parameter key. chi matches on
// RawPath only when the request carried escapes such as %2F, so the value
// is unescaped exactly once in that case and returned as-is otherwise.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// intQuery parses an integer query parameter, falling back to def when it
// is absent or malformed.
func intQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
