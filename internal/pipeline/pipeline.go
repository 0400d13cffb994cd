// Package pipeline ties harvesting, scoring, persistence and notification
// into a single run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhilashdr/jobscout/internal/config"
	"github.com/abhilashdr/jobscout/internal/harvest"
	"github.com/abhilashdr/jobscout/internal/job"
	"github.com/abhilashdr/jobscout/internal/logger"
	"github.com/abhilashdr/jobscout/internal/notify"
	"github.com/abhilashdr/jobscout/internal/store"
)

// ErrAlreadyRunning is returned when a run is requested while another run
// holds the pipeline.
var ErrAlreadyRunning = errors.New("a pipeline run is already in progress")

const digestPendingLimit = 20

// Harvester produces the postings a run works on.
type Harvester interface {
	Run(ctx context.Context) ([]job.Posting, []harvest.StageReport, []harvest.SourceReport, error)
}

// Scorer assigns a relevance score to a posting.
type Scorer interface {
	Score(p job.Posting) float64
}

// Storage is the slice of the store the pipeline needs.
type Storage interface {
	Insert(ctx context.Context, p job.Posting) (int64, bool, error)
	Query(ctx context.Context, f store.Filters, limit int) ([]job.Posting, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// Notifier delivers run results to the user.
type Notifier interface {
	SendDigest(ctx context.Context, d notify.Digest) error
	SendAlert(ctx context.Context, p job.Posting) error
}

// SeenStore records the posting keys a run observed. Keys are written only
// after persistence succeeded, so an aborted run leaves the cache untouched.
type SeenStore interface {
	Remember(ctx context.Context, keys []string) error
}

// Report summarises a completed run.
type Report struct {
	Started      time.Time              `json:"started"`
	Finished     time.Time              `json:"finished"`
	Harvested    int                    `json:"harvested"`
	Relevant     int                    `json:"relevant"`
	Saved        int                    `json:"saved"`
	Duplicates   int                    `json:"duplicates"`
	HighPriority int                    `json:"high_priority"`
	Sources      []harvest.SourceReport `json:"sources"`
	Stages       []harvest.StageReport  `json:"stages"`
}

// Runner executes pipeline runs. At most one run is active at a time;
// overlapping requests fail fast with ErrAlreadyRunning.
type Runner struct {
	harvester Harvester
	scorer    Scorer
	storage   Storage
	notifier  Notifier
	seen      SeenStore
	scoring   config.Scoring
	maxAlerts int
	logger    *zap.Logger

	mu sync.Mutex
}

// NewRunner wires a runner. seen may be nil when no cache is configured.
func NewRunner(harvester Harvester, scorer Scorer, storage Storage, notifier Notifier, seen SeenStore, cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{
		harvester: harvester,
		scorer:    scorer,
		storage:   storage,
		notifier:  notifier,
		seen:      seen,
		scoring:   cfg.Scoring,
		maxAlerts: cfg.Email.MaxAlerts,
		logger:    logger,
	}
}

// Running reports whether a run currently holds the pipeline.
func (r *Runner) Running() bool {
	if r.mu.TryLock() {
		r.mu.Unlock()
		return false
	}
	return true
}

// Run performs a full harvest, score, persist and notify cycle.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if !r.mu.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer r.mu.Unlock()

	report := &Report{Started: time.Now()}

	jobs, stages, sources, err := r.harvester.Run(ctx)
	if err != nil {
		return nil, err
	}

	report.Sources = sources
	report.Stages = stages
	for _, s := range sources {
		report.Harvested += s.Jobs
	}

	if len(sources) == 0 {
		r.logger.Warn("no sources enabled, nothing to harvest")
		report.Finished = time.Now()
		return report, nil
	}

	scored := r.score(jobs)
	report.Relevant = len(scored)

	saved, err := r.persist(ctx, scored, report)
	if err != nil {
		return nil, err
	}

	r.rememberSeen(ctx, jobs)
	r.notifyRun(ctx, saved, report)

	report.Finished = time.Now()
	r.logger.Info("pipeline run finished",
		zap.Int("harvested", report.Harvested),
		zap.Int("relevant", report.Relevant),
		zap.Int("saved", report.Saved),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("high_priority", report.HighPriority),
		zap.Duration("took", report.Finished.Sub(report.Started)),
	)

	return report, nil
}

// score assigns relevance scores, drops postings under the configured
// minimum, and orders the rest best first.
func (r *Runner) score(jobs []job.Posting) []job.Posting {
	scored := make([]job.Posting, 0, len(jobs))
	for _, p := range jobs {
		p.RelevanceScore = r.scorer.Score(p)
		if p.RelevanceScore < r.scoring.MinRelevanceScore {
			continue
		}
		scored = append(scored, p)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	return scored
}

// persist inserts the scored postings and returns the newly saved ones.
func (r *Runner) persist(ctx context.Context, jobs []job.Posting, report *Report) ([]job.Posting, error) {
	saved := make([]job.Posting, 0, len(jobs))

	for _, p := range jobs {
		id, inserted, err := r.storage.Insert(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("persisting %q at %q: %w", p.Title, p.Company, err)
		}
		if !inserted {
			report.Duplicates++
			continue
		}

		p.ID = id
		saved = append(saved, p)
		report.Saved++
		if p.RelevanceScore >= r.scoring.HighPriorityScore {
			report.HighPriority++
		}
	}

	return saved, nil
}

// rememberSeen marks the harvested postings as observed once the run got them
// safely into storage. Cache failures are logged and fail open.
func (r *Runner) rememberSeen(ctx context.Context, jobs []job.Posting) {
	if r.seen == nil || len(jobs) == 0 {
		return
	}

	keys := make([]string, 0, len(jobs))
	for _, p := range jobs {
		keys = append(keys, p.Key())
	}

	if err := r.seen.Remember(ctx, keys); err != nil {
		r.logger.Warn("remembering seen postings failed", zap.Error(err))
	}
}

// notifyRun sends high priority alerts for the newly saved postings and a
// digest for the whole run. Notification failures are logged, never fatal.
func (r *Runner) notifyRun(ctx context.Context, saved []job.Posting, report *Report) {
	alerts := 0
	for _, p := range saved {
		if p.RelevanceScore < r.scoring.HighPriorityScore {
			break
		}
		if alerts >= r.maxAlerts {
			break
		}
		if err := r.notifier.SendAlert(ctx, p); err != nil {
			r.logger.Warn("sending alert failed",
				zap.String("title", logger.TruncateForLog(p.Title, 80)),
				zap.Error(err),
			)
			continue
		}
		alerts++
	}

	pending, err := r.storage.Query(ctx, store.Filters{
		MinScore:   r.scoring.MinRelevanceScore,
		NotApplied: true,
	}, digestPendingLimit)
	if err != nil {
		r.logger.Warn("querying pending jobs for digest failed", zap.Error(err))
		pending = saved
	}

	stats, err := r.storage.Stats(ctx)
	if err != nil {
		r.logger.Warn("querying stats for digest failed", zap.Error(err))
	}

	digest := notify.Digest{
		Date:         time.Now(),
		NewJobs:      report.Saved,
		HighPriority: stats.HighPriority,
		Pending:      stats.Pending,
		TopJobs:      pending,
	}
	if err := r.notifier.SendDigest(ctx, digest); err != nil {
		r.logger.Warn("sending digest failed", zap.Error(err))
	}
}
