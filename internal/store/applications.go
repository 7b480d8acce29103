package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpilot/internal/types"
)

// Application is a generated application artifact kept for a user: the cover
// letter text and optionally the interview questions prepared for the same
// posting.
type Application struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	JobID       string    `json:"jobId,omitempty"`
	Company     string    `json:"company"`
	CoverLetter string    `json:"coverLetter"`
	Questions   []string  `json:"questions,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ApplicationRepository stores generated cover letters and interview prep.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(ctx context.Context, pool *pgxpool.Pool) (*ApplicationRepository, error) {
	r := &ApplicationRepository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ApplicationRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS applications (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	job_id TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	cover_letter TEXT NOT NULL DEFAULT '',
	questions JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS applications_user_idx ON applications (user_id, created_at DESC);
`)
	return err
}

// SaveCoverLetter records a generated cover letter for a user
func (r *ApplicationRepository) SaveCoverLetter(ctx context.Context, userID uuid.UUID, jobID string, letter types.CoverLetter) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `
INSERT INTO applications (id, user_id, job_id, company, cover_letter, questions, created_at)
VALUES ($1, $2, $3, $4, $5, '[]'::jsonb, $6)
`, id, userID, jobID, letter.Company, letter.Content, time.Now().UTC())
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// SaveInterviewPrep records generated interview questions for a user
func (r *ApplicationRepository) SaveInterviewPrep(ctx context.Context, userID uuid.UUID, jobID string, prep types.InterviewPrep) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `
INSERT INTO applications (id, user_id, job_id, questions, created_at)
VALUES ($1, $2, $3, $4, $5)
`, id, userID, jobID, prep.Questions, time.Now().UTC())
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// ListByUser returns a user's stored application artifacts, newest first
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Application, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, job_id, company, cover_letter, questions, created_at
FROM applications WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var app Application
		var created time.Time
		if err := rows.Scan(&app.ID, &app.UserID, &app.JobID, &app.Company,
			&app.CoverLetter, &app.Questions, &created); err != nil {
			return nil, err
		}
		app.CreatedAt = created.UTC()
		apps = append(apps, app)
	}
	return apps, rows.Err()
}
