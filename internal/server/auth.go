package server

import (
	"context"
	"net/http"

	"github.com/koustreak/duckgate/internal/session"
)

type leaseKey struct{}

// requireSession resolves the bearer token and holds a lease on its
// session until the handler returns.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := session.ParseBearer(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		lease, err := s.registry.Acquire(token)
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer lease.Release()

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), leaseKey{}, lease)))
	})
}

// sessionFrom returns the session leased by requireSession.
func sessionFrom(r *http.Request) *session.Session {
	if l, ok := r.Context().Value(leaseKey{}).(*session.Lease); ok {
		return l.Session
	}
	return nil
}

// optionalToken is the bearer token if one was sent, else "".
func optionalToken(r *http.Request) string {
	token, err := session.ParseBearer(r.Header.Get("Authorization"))
	if err != nil {
		return ""
	}
	return token
}
