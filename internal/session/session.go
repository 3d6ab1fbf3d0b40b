// Package session binds opaque bearer tokens to live connection pools.
//
// A Registry owns every Session. Requests borrow a Session through a Lease;
// the pool behind it is closed only after the token has been removed and
// the last outstanding Lease has been released, so a disconnect never cuts
// off statements already running on other requests.
package session

import (
	"sync"
	"time"

	"github.com/koustreak/duckgate/internal/database"
)

// Session is the live binding between a token and a pool.
// Its fields never change after Connect.
type Session struct {
	token     string
	db        database.DB
	dialect   database.Dialect
	database  string
	createdAt time.Time

	mu      sync.Mutex
	refs    int
	retired bool
	closed  bool
}

func (s *Session) Token() string             { return s.token }
func (s *Session) DB() database.DB           { return s.db }
func (s *Session) Dialect() database.Dialect { return s.dialect }
func (s *Session) Database() string          { return s.database }
func (s *Session) CreatedAt() time.Time      { return s.createdAt }

// retain adds a lease; it fails once the session has been retired.
func (s *Session) retain() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retired {
		return false
	}
	s.refs++
	return true
}

// release drops a lease and reports whether the pool must now be closed.
func (s *Session) release() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs--
	return s.retired && s.refs == 0 && s.markClosed()
}

// retire stops new leases and reports whether the pool must now be closed.
func (s *Session) retire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retired = true
	return s.refs == 0 && s.markClosed()
}

func (s *Session) markClosed() bool {
	if s.closed {
		return false
	}
	s.closed = true
	return true
}

// Lease is one request's hold on a Session. Release must be called exactly
// once; further calls are no-ops.
type Lease struct {
	*Session
	registry *Registry
	once     sync.Once
}

// Release returns the lease.
func (l *Lease) Release() {
	l.once.Do(func() {
		if l.release() {
			l.registry.closePool(l.Session)
		}
	})
}
