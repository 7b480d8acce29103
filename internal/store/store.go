package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"jobpilot/internal/config"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store bundles the Postgres-backed repositories. A nil *Store is a valid
// stateless mode: callers must check Enabled()/nil before use.
type Store struct {
	pool *pgxpool.Pool

	Profiles     *ProfileRepository
	Jobs         *JobRepository
	Applications *ApplicationRepository
	Matches      *MatchRepository

	persistMatches bool
}

// New connects to Postgres and initializes all repositories. Returns
// (nil, nil) when the store is disabled in configuration.
func New(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	profiles, err := NewProfileRepository(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	jobs, err := NewJobRepository(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	applications, err := NewApplicationRepository(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	matches, err := NewMatchRepository(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{
		pool:           pool,
		Profiles:       profiles,
		Jobs:           jobs,
		Applications:   applications,
		Matches:        matches,
		persistMatches: cfg.PersistMatches,
	}, nil
}

// PersistMatches reports whether recomputed job matches should be stored
func (s *Store) PersistMatches() bool {
	return s != nil && s.persistMatches
}

// Ping verifies database connectivity, used by health checks
func (s *Store) Ping(ctx context.Context) error {
	if s == nil {
		return errors.New("store: disabled")
	}
	return s.pool.Ping(ctx)
}

// Close releases the connection pool
func (s *Store) Close() {
	if s != nil {
		s.pool.Close()
	}
}
