package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpilot/internal/types"
)

// Profile is a stored user profile: contact details, the parsed resume, the
// preferred AI provider with its key, and job search preferences.
//
// APIKey is excluded from JSON rendering via types.Credential; it is never
// written to logs.
type Profile struct {
	UserID      uuid.UUID           `json:"userId"`
	FullName    string              `json:"fullName"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone,omitempty"`
	Resume      *types.ResumeRecord `json:"resume,omitempty"`
	Credential  types.Credential    `json:"credential"`
	Preferences types.Preferences   `json:"preferences"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// ProfileRepository stores user profiles and their AI credentials.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(ctx context.Context, pool *pgxpool.Pool) (*ProfileRepository, error) {
	r := &ProfileRepository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ProfileRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS profiles (
	user_id UUID PRIMARY KEY,
	full_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	resume_data JSONB,
	ai_provider TEXT NOT NULL DEFAULT '',
	ai_api_key TEXT NOT NULL DEFAULT '',
	preferences JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL
);
`)
	return err
}

// Upsert creates or replaces a profile
func (r *ProfileRepository) Upsert(ctx context.Context, p Profile) error {
	if p.UserID == uuid.Nil {
		p.UserID = uuid.New()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO profiles (user_id, full_name, email, phone, resume_data, ai_provider, ai_api_key, preferences, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (user_id) DO UPDATE SET
	full_name = EXCLUDED.full_name,
	email = EXCLUDED.email,
	phone = EXCLUDED.phone,
	resume_data = EXCLUDED.resume_data,
	ai_provider = EXCLUDED.ai_provider,
	ai_api_key = EXCLUDED.ai_api_key,
	preferences = EXCLUDED.preferences,
	updated_at = EXCLUDED.updated_at
`, p.UserID, p.FullName, p.Email, p.Phone, p.Resume, p.Credential.ProviderID, p.Credential.APIKey, p.Preferences, p.UpdatedAt)
	return err
}

// Get returns a profile by user id
func (r *ProfileRepository) Get(ctx context.Context, userID uuid.UUID) (Profile, error) {
	row := r.pool.QueryRow(ctx, `
SELECT user_id, full_name, email, phone, resume_data, ai_provider, ai_api_key, preferences, updated_at
FROM profiles WHERE user_id = $1
`, userID)
	var p Profile
	var updated time.Time
	if err := row.Scan(&p.UserID, &p.FullName, &p.Email, &p.Phone, &p.Resume,
		&p.Credential.ProviderID, &p.Credential.APIKey, &p.Preferences, &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.UpdatedAt = updated.UTC()
	return p, nil
}

// GetCredential returns only the stored AI credential for a user
func (r *ProfileRepository) GetCredential(ctx context.Context, userID uuid.UUID) (types.Credential, error) {
	row := r.pool.QueryRow(ctx, `
SELECT ai_provider, ai_api_key FROM profiles WHERE user_id = $1
`, userID)
	var cred types.Credential
	if err := row.Scan(&cred.ProviderID, &cred.APIKey); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Credential{}, ErrNotFound
		}
		return types.Credential{}, err
	}
	return cred, nil
}

// UpsertResume stores a freshly parsed resume on an existing or new profile,
// filling contact fields from the resume itself.
func (r *ProfileRepository) UpsertResume(ctx context.Context, userID uuid.UUID, resume types.ResumeRecord) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO profiles (user_id, full_name, email, phone, resume_data, preferences, updated_at)
VALUES ($1, $2, $3, $4, $5, '{}'::jsonb, $6)
ON CONFLICT (user_id) DO UPDATE SET
	full_name = EXCLUDED.full_name,
	email = EXCLUDED.email,
	phone = EXCLUDED.phone,
	resume_data = EXCLUDED.resume_data,
	updated_at = EXCLUDED.updated_at
`, userID, resume.FullName, resume.Email, resume.Phone, resume, time.Now().UTC())
	return err
}

// GetResume returns the stored parsed resume for a user
func (r *ProfileRepository) GetResume(ctx context.Context, userID uuid.UUID) (types.ResumeRecord, error) {
	row := r.pool.QueryRow(ctx, `
SELECT resume_data FROM profiles WHERE user_id = $1 AND resume_data IS NOT NULL
`, userID)
	var resume types.ResumeRecord
	if err := row.Scan(&resume); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.ResumeRecord{}, ErrNotFound
		}
		return types.ResumeRecord{}, err
	}
	return resume, nil
}
