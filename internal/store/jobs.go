package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpilot/internal/types"
)

// JobRepository stores job listings used as matching input.
type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(ctx context.Context, pool *pgxpool.Pool) (*JobRepository, error) {
	r := &JobRepository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *JobRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	requirements JSONB NOT NULL DEFAULT '[]'::jsonb,
	location TEXT NOT NULL DEFAULT '',
	salary_range TEXT NOT NULL DEFAULT '',
	job_type TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL
);
`)
	return err
}

// Upsert creates or replaces a job listing
func (r *JobRepository) Upsert(ctx context.Context, job types.JobListing) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO jobs (id, title, company, description, requirements, location, salary_range, job_type, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	company = EXCLUDED.company,
	description = EXCLUDED.description,
	requirements = EXCLUDED.requirements,
	location = EXCLUDED.location,
	salary_range = EXCLUDED.salary_range,
	job_type = EXCLUDED.job_type,
	updated_at = EXCLUDED.updated_at
`, job.ID, job.Title, job.Company, job.Description, job.Requirements,
		job.Location, job.SalaryRange, job.JobType, time.Now().UTC())
	return err
}

// UpsertBatch stores a batch of listings in one transaction
func (r *JobRepository) UpsertBatch(ctx context.Context, jobs []types.JobListing) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	for _, job := range jobs {
		if _, err := tx.Exec(ctx, `
INSERT INTO jobs (id, title, company, description, requirements, location, salary_range, job_type, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	company = EXCLUDED.company,
	description = EXCLUDED.description,
	requirements = EXCLUDED.requirements,
	location = EXCLUDED.location,
	salary_range = EXCLUDED.salary_range,
	job_type = EXCLUDED.job_type,
	updated_at = EXCLUDED.updated_at
`, job.ID, job.Title, job.Company, job.Description, job.Requirements,
			job.Location, job.SalaryRange, job.JobType, now); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Get returns one job listing by id
func (r *JobRepository) Get(ctx context.Context, id string) (types.JobListing, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, title, company, description, requirements, location, salary_range, job_type
FROM jobs WHERE id = $1
`, id)
	var job types.JobListing
	if err := row.Scan(&job.ID, &job.Title, &job.Company, &job.Description,
		&job.Requirements, &job.Location, &job.SalaryRange, &job.JobType); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.JobListing{}, ErrNotFound
		}
		return types.JobListing{}, err
	}
	return job, nil
}

// List returns stored job listings, most recently updated first
func (r *JobRepository) List(ctx context.Context, limit, offset int) ([]types.JobListing, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, title, company, description, requirements, location, salary_range, job_type
FROM jobs
ORDER BY updated_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []types.JobListing
	for rows.Next() {
		var job types.JobListing
		if err := rows.Scan(&job.ID, &job.Title, &job.Company, &job.Description,
			&job.Requirements, &job.Location, &job.SalaryRange, &job.JobType); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
