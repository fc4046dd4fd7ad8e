package grading

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/smarticulous/internal/config"
	"github.com/mind-engage/smarticulous/internal/db"
	"github.com/mind-engage/smarticulous/internal/observability"
	syncx "github.com/mind-engage/smarticulous/internal/sync"
)

var _ Store = (*SQLStore)(nil)

// SQLStore owns the database handle; Close releases it.
type SQLStore struct {
	conn     *sql.DB
	logger   zerolog.Logger
	validate *validator.Validate
	events   *syncx.EventRepo
	metrics  *observability.Metrics
	timeout  time.Duration
	cost     int
}

type Option func(*SQLStore)

func WithLogger(l zerolog.Logger) Option {
	return func(s *SQLStore) { s.logger = l.With().Str("component", "grade_store").Logger() }
}

// WithQueryTimeout bounds every operation; zero disables it.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *SQLStore) { s.timeout = d }
}

func WithPasswordCost(cost int) Option {
	return func(s *SQLStore) { s.cost = cost }
}

func WithSiteID(site string) Option {
	return func(s *SQLStore) { s.events = syncx.NewEventRepo(s.conn, site) }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *SQLStore) { s.metrics = m }
}

func NewSQLStore(conn *sql.DB, opts ...Option) *SQLStore {
	s := &SQLStore{
		conn:     conn,
		logger:   zerolog.Nop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  observability.NewMetrics(nil),
		cost:     bcrypt.DefaultCost,
	}
	s.events = syncx.NewEventRepo(conn, "local")
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open provisions the configured database and returns a store holding it.
func Open(ctx context.Context, cfg config.Config, logger zerolog.Logger, opts ...Option) (*SQLStore, error) {
	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithLogger(logger),
		WithQueryTimeout(cfg.QueryTimeout),
		WithPasswordCost(cfg.PasswordCost),
		WithSiteID(cfg.SiteID),
	}
	s := NewSQLStore(conn, append(base, opts...)...)
	s.logger.Info().Str("driver", string(cfg.DBDriver)).Msg("grade store ready")
	return s, nil
}

// Events exposes the submission event log.
func (s *SQLStore) Events() *syncx.EventRepo { return s.events }

func (s *SQLStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *SQLStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
