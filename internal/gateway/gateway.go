// Package gateway implements the duckgate operations on top of a session.
//
// Every method except Connect, Status and Disconnect runs against a
// *session.Session the caller already holds a lease on. The transport layer
// owns the lease; the Service never retains a session past one call.
package gateway

import (
	"context"
	"time"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/errs"
	"github.com/koustreak/duckgate/internal/filestore"
	"github.com/koustreak/duckgate/internal/logger"
	"github.com/koustreak/duckgate/internal/schema"
	"github.com/koustreak/duckgate/internal/session"
)

const msgNotConnected = "Not connected to database"

// Service executes gateway operations.
type Service struct {
	registry *session.Registry
	exports  filestore.Store
	bucket   string
	log      *logger.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithExportStore enables ExportTable, writing objects into bucket.
func WithExportStore(store filestore.Store, bucket string) Option {
	return func(s *Service) {
		s.exports = store
		s.bucket = bucket
	}
}

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the clock used for export keys.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service over registry.
func New(registry *session.Registry, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConnectResponse is returned by a successful Connect.
type ConnectResponse struct {
	Token    string          `json:"token"`
	Database string          `json:"database"`
	DBType   database.Driver `json:"db_type"`
}

// StatusResponse describes the caller's connection state.
type StatusResponse struct {
	Connected bool             `json:"connected"`
	Database  *string          `json:"database"`
	DBType    *database.Driver `json:"db_type"`
}

// Connect opens a session for creds.
func (g *Service) Connect(ctx context.Context, creds session.Credentials) (*ConnectResponse, error) {
	s, err := g.registry.Connect(ctx, creds)
	if err != nil {
		return nil, err
	}
	return &ConnectResponse{
		Token:    s.Token(),
		Database: s.Database(),
		DBType:   s.Dialect().Driver(),
	}, nil
}

// Status reports whether token names a live session. It never fails.
func (g *Service) Status(token string) StatusResponse {
	if token == "" {
		return StatusResponse{}
	}
	s, err := g.registry.Resolve(token)
	if err != nil {
		return StatusResponse{}
	}
	name, driver := s.Database(), s.Dialect().Driver()
	return StatusResponse{Connected: true, Database: &name, DBType: &driver}
}

// Disconnect drops token. Unknown or empty tokens are not an error.
func (g *Service) Disconnect(token string) StatusResponse {
	if token != "" {
		g.registry.Disconnect(token)
	}
	return StatusResponse{}
}

// Info summarises the connected database.
func (g *Service) Info(ctx context.Context, s *session.Session) (*schema.DatabaseInfo, error) {
	in, err := introspector(s)
	if err != nil {
		return nil, err
	}
	info := in.Info(ctx)
	return &info, nil
}

func connected(s *session.Session) error {
	if s == nil || s.DB() == nil {
		return errs.New(errs.ErrKindNotConnected, msgNotConnected)
	}
	return nil
}

func introspector(s *session.Session) (*schema.Introspector, error) {
	if err := connected(s); err != nil {
		return nil, err
	}
	return schema.New(s.DB(), s.Dialect(), s.Database()), nil
}
