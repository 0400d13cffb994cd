// Package store persists scored postings in Postgres and tracks
// applications against them.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/abhilashdr/jobscout/internal/job"
)

const (
	// DefaultCleanupMaxScore is the highest score still eligible for cleanup.
	DefaultCleanupMaxScore = 40.0
	// DefaultCleanupMinAge is how old a posting must be before cleanup.
	DefaultCleanupMinAge = 30 * 24 * time.Hour
)

// Gateway wraps the connection pool with the queries the rest of the
// application needs.
type Gateway struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New connects to Postgres, verifies the connection, and prepares the schema.
func New(ctx context.Context, databaseURL string, logger *zap.Logger) (*Gateway, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	g := &Gateway{pool: pool, logger: logger}
	if err := g.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return g, nil
}

// Close releases the underlying pool.
func (g *Gateway) Close() {
	g.pool.Close()
}

// Insert stores a posting unless an equivalent one already exists. The
// returned bool reports whether a new row was created.
func (g *Gateway) Insert(ctx context.Context, p job.Posting) (int64, bool, error) {
	var id int64
	err := g.pool.QueryRow(ctx,
		`INSERT INTO jobs (
			title, company, company_type, location, experience_required,
			skills_required, salary, job_description, application_link,
			source_platform, posting_date, scraped_at, relevance_score, applied
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (title, company, location) DO NOTHING
		RETURNING job_id`,
		p.Title, p.Company, p.CompanyType, p.Location, p.ExperienceRequired,
		p.SkillsRequired, p.Salary, p.Description, p.ApplicationLink,
		p.SourcePlatform, p.PostingDate, p.ScrapedAt, p.RelevanceScore, p.Applied,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("inserting job: %w", err)
	}

	return id, true, nil
}

// Filters narrows down Query results. Zero values disable a filter.
type Filters struct {
	MinScore   float64
	Location   string
	NotApplied bool
}

// Query returns postings matching the filters, best scores first.
func (g *Gateway) Query(ctx context.Context, f Filters, limit int) ([]job.Posting, error) {
	query, args := buildQuery(f, limit)

	var jobs []job.Posting
	if err := pgxscan.Select(ctx, g.pool, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}

	return jobs, nil
}

func buildQuery(f Filters, limit int) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if f.MinScore > 0 {
		args = append(args, f.MinScore)
		clauses = append(clauses, fmt.Sprintf("relevance_score >= $%d", len(args)))
	}
	if f.Location != "" {
		args = append(args, "%"+strings.ToLower(f.Location)+"%")
		clauses = append(clauses, fmt.Sprintf("lower(location) LIKE $%d", len(args)))
	}
	if f.NotApplied {
		clauses = append(clauses, "applied = FALSE")
	}

	query := `SELECT job_id, title, company, company_type, location, experience_required,
		skills_required, salary, job_description, application_link, source_platform,
		posting_date, scraped_at, relevance_score, applied FROM jobs`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY relevance_score DESC, scraped_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return query, args
}

// Stats summarises the stored postings.
type Stats struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	HighPriority int `json:"high_priority"`
	Applied      int `json:"applied"`
}

const highPriorityStatsScore = 80.0

// Stats reports totals over the jobs table. High priority counts unapplied
// postings scoring at least 80.
func (g *Gateway) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := g.pool.QueryRow(ctx,
		`SELECT
			count(*),
			count(*) FILTER (WHERE applied = FALSE),
			count(*) FILTER (WHERE applied = FALSE AND relevance_score >= $1),
			count(*) FILTER (WHERE applied = TRUE)
		FROM jobs`,
		highPriorityStatsScore,
	).Scan(&s.Total, &s.Pending, &s.HighPriority, &s.Applied)
	if err != nil {
		return Stats{}, fmt.Errorf("querying stats: %w", err)
	}

	return s, nil
}

// MarkApplied flags a posting as applied and records the application.
func (g *Gateway) MarkApplied(ctx context.Context, id int64, resumeVersion string) error {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, "UPDATE jobs SET applied = TRUE WHERE job_id = $1", id)
	if err != nil {
		return fmt.Errorf("marking job applied: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %d not found", id)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO applications (job_id, applied_date, resume_version, status)
		VALUES ($1, now(), $2, 'Applied')`,
		id, resumeVersion,
	)
	if err != nil {
		return fmt.Errorf("recording application: %w", err)
	}

	return tx.Commit(ctx)
}

// Cleanup deletes stale low-scoring postings that were never applied to and
// returns the number of removed rows.
func (g *Gateway) Cleanup(ctx context.Context, maxScore float64, minAge time.Duration) (int64, error) {
	if maxScore <= 0 {
		maxScore = DefaultCleanupMaxScore
	}
	if minAge <= 0 {
		minAge = DefaultCleanupMinAge
	}

	tag, err := g.pool.Exec(ctx,
		`DELETE FROM jobs
		WHERE relevance_score < $1
		AND scraped_at < $2
		AND applied = FALSE`,
		maxScore, time.Now().Add(-minAge),
	)
	if err != nil {
		return 0, fmt.Errorf("cleaning up jobs: %w", err)
	}

	removed := tag.RowsAffected()
	if removed > 0 {
		g.logger.Info("removed stale jobs", zap.Int64("count", removed))
	}

	return removed, nil
}
