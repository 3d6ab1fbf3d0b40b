package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/errs"
	"github.com/koustreak/duckgate/internal/logger"
)

// Credentials is the connect request.
type Credentials struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBType   string `json:"db_type"`
}

// Registry maps tokens to sessions. Lookups share a read lock; Connect and
// Disconnect take the write lock only to insert or remove the entry, never
// while a pool is being opened or closed.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	pool    *database.Config
	openers map[database.Driver]Opener
	log     *logger.Logger
	now     func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithOpener replaces the pool constructor for one engine.
func WithOpener(d database.Driver, o Opener) Option {
	return func(r *Registry) { r.openers[d] = o }
}

// WithLogger sets the logger for session lifecycle events.
func WithLogger(l *logger.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithClock overrides the session creation clock.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates an empty registry that opens pools with the tuning in
// pool (database.DefaultConfig when nil).
func NewRegistry(pool *database.Config, opts ...Option) *Registry {
	if pool == nil {
		pool = database.DefaultConfig()
	}
	r := &Registry{
		sessions: make(map[string]*Session),
		pool:     pool,
		openers:  DefaultOpeners(),
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Connect opens a pool for creds and registers it under a new random token.
// On failure the registry is unchanged.
func (r *Registry) Connect(ctx context.Context, creds Credentials) (*Session, error) {
	driver, err := database.ParseDriver(creds.DBType)
	if err != nil {
		return nil, err
	}
	dialect, err := database.DialectFor(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(creds.Database) == "" {
		return nil, errs.New(errs.ErrKindValidation, "database is required")
	}
	if driver != database.DriverSQLite && strings.TrimSpace(creds.Host) == "" {
		return nil, errs.New(errs.ErrKindValidation, "host is required")
	}

	port := creds.Port
	if port == 0 {
		port = driver.DefaultPort()
	}
	cfg := r.pool.WithTarget(driver, creds.Host, port, creds.Username, creds.Password, creds.Database)

	open, ok := r.openers[driver]
	if !ok {
		return nil, errs.Newf(errs.ErrKindValidation, "unsupported database type: %q", driver)
	}

	log := r.log.With().Str("db_type", string(driver)).Str("database", creds.Database).Logger()

	db, err := open(ctx, cfg)
	if err != nil {
		log.WarnWith("connect failed", err, nil)
		return nil, connectError(err)
	}

	s := &Session{
		token:     uuid.NewString(),
		db:        db,
		dialect:   dialect,
		database:  creds.Database,
		createdAt: r.now(),
	}

	r.mu.Lock()
	r.sessions[s.token] = s
	r.mu.Unlock()

	log.InfoWith("session opened", map[string]any{"token": tokenPrefix(s.token)})
	return s, nil
}

// Acquire resolves token and takes a lease on its session.
func (r *Registry) Acquire(token string) (*Lease, error) {
	r.mu.RLock()
	s, ok := r.sessions[token]
	if ok && !s.retain() {
		ok = false
	}
	r.mu.RUnlock()

	if !ok {
		return nil, errs.New(errs.ErrKindUnauthenticated, MsgInvalidSession)
	}
	return &Lease{Session: s, registry: r}, nil
}

// Resolve looks token up without taking a lease.
func (r *Registry) Resolve(token string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[token]
	r.mu.RUnlock()

	if !ok {
		return nil, errs.New(errs.ErrKindUnauthenticated, MsgInvalidSession)
	}
	return s, nil
}

// Disconnect removes token. It reports whether a session was removed;
// an unknown token is not an error.
func (r *Registry) Disconnect(token string) bool {
	r.mu.Lock()
	s, ok := r.sessions[token]
	delete(r.sessions, token)
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.log.InfoWith("session closed", map[string]any{
		"token":    tokenPrefix(token),
		"database": s.database,
		"db_type":  string(s.dialect.Driver()),
	})
	if s.retire() {
		r.closePool(s)
	}
	return true
}

// Len is the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll removes every session; pools with outstanding leases close when
// those are released.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		if s.retire() {
			r.closePool(s)
		}
	}
	if len(all) > 0 {
		r.log.Infof("closed %d sessions", len(all))
	}
}

func (r *Registry) closePool(s *Session) {
	s.db.Close()
	r.log.Debugf("pool closed for session %s", tokenPrefix(s.token))
}

// connectError keeps typed driver errors and labels anything else as a
// connection failure.
func connectError(err error) error {
	switch errs.KindOf(err) {
	case errs.ErrKindUnknown:
		return errs.Wrap(errs.ErrKindConnectionFailed, "connection failed", err)
	case errs.ErrKindExecution:
		return errs.Rekind(err, errs.ErrKindConnectionFailed)
	default:
		return err
	}
}

// tokenPrefix is the part of a token safe to log.
func tokenPrefix(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
