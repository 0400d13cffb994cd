package store

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		job_id              BIGSERIAL PRIMARY KEY,
		title               TEXT NOT NULL,
		company             TEXT NOT NULL,
		company_type        TEXT NOT NULL DEFAULT '',
		location            TEXT NOT NULL DEFAULT '',
		experience_required TEXT NOT NULL DEFAULT '',
		skills_required     TEXT NOT NULL DEFAULT '',
		salary              TEXT NOT NULL DEFAULT '',
		job_description     TEXT NOT NULL DEFAULT '',
		application_link    TEXT NOT NULL DEFAULT '',
		source_platform     TEXT NOT NULL DEFAULT '',
		posting_date        TIMESTAMPTZ NOT NULL DEFAULT now(),
		scraped_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		relevance_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
		applied             BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (title, company, location)
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		application_id BIGSERIAL PRIMARY KEY,
		job_id         BIGINT NOT NULL REFERENCES jobs (job_id) ON DELETE CASCADE,
		applied_date   TIMESTAMPTZ NOT NULL DEFAULT now(),
		resume_version TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL DEFAULT 'Applied'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_score ON jobs (relevance_score DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_scraped_at ON jobs (scraped_at)`,
}

// Migrate applies the schema. Statements are idempotent so the method is
// safe to call on every start.
func (g *Gateway) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := g.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
