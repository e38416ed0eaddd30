// Package bunstore is a CredentialStore backed by SQLite through bun. It is
// meant for desktop and kiosk deployments of the admin console where the
// token pair has to survive restarts alongside other local state.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Entry is one persisted key/value pair
type Entry struct {
	bun.BaseModel `bun:"table:credentials,alias:cred"`

	Key       string    `bun:"key,pk" json:"key"`
	Value     string    `bun:"value,notnull" json:"value"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Store implements session.CredentialStore on top of a bun.DB
type Store struct {
	db      *bun.DB
	timeout time.Duration
}

// Option customizes the store
type Option func(*Store)

// WithTimeout bounds each storage operation
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New wraps an existing bun.DB. Call Init before first use.
func New(db *bun.DB, opts ...Option) *Store {
	s := &Store{
		db:      db,
		timeout: 5 * time.Second,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Open creates a SQLite-backed store at dsn (use "file::memory:?cache=shared"
// for tests) and runs Init.
func Open(dsn string, opts ...Option) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to open credential database")
	}

	s := New(bun.NewDB(sqldb, sqlitedialect.New()), opts...)

	if err := s.Init(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Init creates the credentials table if it does not exist
func (s *Store) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.NewCreateTable().
		Model((*Entry)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to create credentials table")
	}

	return nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(key string) (string, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	entry := &Entry{}
	err := s.db.NewSelect().
		Model(entry).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to read credential")
	}

	return entry.Value, nil
}

func (s *Store) Set(key, value string) error {
	ctx, cancel := s.opCtx()
	defer cancel()

	entry := &Entry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	if _, err := s.db.NewInsert().
		Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to write credential")
	}

	return nil
}

func (s *Store) Remove(key string) error {
	ctx, cancel := s.opCtx()
	defer cancel()

	if _, err := s.db.NewDelete().
		Model((*Entry)(nil)).
		Where("key = ?", key).
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to remove credential")
	}

	return nil
}

func (s *Store) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}
