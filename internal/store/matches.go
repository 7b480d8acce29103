package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpilot/internal/types"
)

// MatchRepository stores the latest computed job matches per user. Matches
// are replaced wholesale on each recomputation, never merged.
type MatchRepository struct {
	pool *pgxpool.Pool
}

func NewMatchRepository(ctx context.Context, pool *pgxpool.Pool) (*MatchRepository, error) {
	r := &MatchRepository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MatchRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS job_matches (
	user_id UUID NOT NULL,
	job_id TEXT NOT NULL,
	match_score INT NOT NULL,
	reasons JSONB NOT NULL DEFAULT '[]'::jsonb,
	missing_skills JSONB NOT NULL DEFAULT '[]'::jsonb,
	recommendations JSONB NOT NULL DEFAULT '[]'::jsonb,
	computed_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, job_id)
);
`)
	return err
}

// Replace drops a user's previous matches and stores the new set
func (r *MatchRepository) Replace(ctx context.Context, userID uuid.UUID, matches []types.JobMatch) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM job_matches WHERE user_id = $1`, userID); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, m := range matches {
		if _, err := tx.Exec(ctx, `
INSERT INTO job_matches (user_id, job_id, match_score, reasons, missing_skills, recommendations, computed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, userID, m.JobID, m.MatchScore, m.Reasons, m.MissingSkills, m.Recommendations, now); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListByUser returns a user's stored matches ordered by score, best first
func (r *MatchRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]types.JobMatch, error) {
	rows, err := r.pool.Query(ctx, `
SELECT job_id, match_score, reasons, missing_skills, recommendations
FROM job_matches WHERE user_id = $1
ORDER BY match_score DESC, job_id ASC
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []types.JobMatch
	for rows.Next() {
		var m types.JobMatch
		if err := rows.Scan(&m.JobID, &m.MatchScore, &m.Reasons, &m.MissingSkills, &m.Recommendations); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
