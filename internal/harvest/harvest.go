// Package harvest fans out over the configured source adapters, collects
// their results, and runs the gathered postings through a sequence of
// refinement stages before they reach scoring and persistence.
package harvest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhilashdr/jobscout/internal/job"
	"github.com/abhilashdr/jobscout/internal/logger"
	"github.com/abhilashdr/jobscout/internal/source"
)

// Stage is a single refinement step applied to the harvested postings.
type Stage interface {
	Name() string
	Apply(ctx context.Context, jobs []job.Posting) ([]job.Posting, error)
}

// StageReport describes the result of executing one stage.
type StageReport struct {
	Name    string `json:"name"`
	Initial int    `json:"initial"`
	Dropped int    `json:"dropped"`
	Left    int    `json:"left"`
}

// SourceReport describes what a single adapter contributed to the run.
// A failed adapter keeps its error here instead of aborting the harvest.
type SourceReport struct {
	Source string `json:"source"`
	Jobs   int    `json:"jobs"`
	Err    string `json:"error,omitempty"`
}

// Harvester runs adapters with bounded concurrency and applies stages
// to the merged result.
type Harvester struct {
	adapters       []source.Adapter
	stages         []Stage
	workers        int
	adapterTimeout time.Duration
	logger         *zap.Logger
}

func New(adapters []source.Adapter, stages []Stage, workers int, adapterTimeout time.Duration, logger *zap.Logger) *Harvester {
	if workers < 1 {
		workers = 1
	}
	return &Harvester{
		adapters:       adapters,
		stages:         stages,
		workers:        workers,
		adapterTimeout: adapterTimeout,
		logger:         logger,
	}
}

// Run fetches from every adapter and pushes the merged postings through the
// stages. Adapter failures are isolated into their SourceReport; only a
// cancelled context or a stage failure aborts the whole run.
func (h *Harvester) Run(ctx context.Context) ([]job.Posting, []StageReport, []SourceReport, error) {
	var (
		mu      sync.Mutex
		jobs    []job.Posting
		reports = make([]SourceReport, 0, len(h.adapters))
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(h.workers)

	for _, adapter := range h.adapters {
		group.Go(func() error {
			fetchCtx := groupCtx
			if h.adapterTimeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(groupCtx, h.adapterTimeout)
				defer cancel()
			}

			started := time.Now()
			result := adapter.Fetch(fetchCtx)

			report := SourceReport{Source: result.Source, Jobs: len(result.Jobs)}
			if report.Source == "" {
				report.Source = adapter.Name()
			}

			srcLogger := logger.WithSourceFields(h.logger, report.Source, result.Company)
			if result.Err != nil {
				report.Err = result.Err.Error()
				srcLogger.Warn("source fetch failed", zap.Error(result.Err))
			} else {
				srcLogger.Info("source fetch finished",
					zap.Int("jobs", len(result.Jobs)),
					zap.Duration("took", time.Since(started)),
				)
			}

			mu.Lock()
			jobs = append(jobs, result.Jobs...)
			reports = append(reports, report)
			mu.Unlock()

			// Fetch errors already live in the report. Propagate only
			// cancellation so sibling adapters keep running otherwise.
			return groupCtx.Err()
		})
	}

	if err := group.Wait(); err != nil {
		return nil, nil, reports, fmt.Errorf("harvesting sources: %w", err)
	}

	stageReports := make([]StageReport, 0, len(h.stages))
	for _, stage := range h.stages {
		initial := len(jobs)

		next, err := stage.Apply(ctx, jobs)
		if err != nil {
			return nil, stageReports, reports, fmt.Errorf("%s: %w", stage.Name(), err)
		}

		report := StageReport{
			Name:    stage.Name(),
			Initial: initial,
			Dropped: initial - len(next),
			Left:    len(next),
		}
		stageReports = append(stageReports, report)

		h.logger.Info("harvest stage",
			zap.String("name", report.Name),
			zap.Int("initial", report.Initial),
			zap.Int("dropped", report.Dropped),
			zap.Int("left", report.Left),
		)

		jobs = next
	}

	return jobs, stageReports, reports, nil
}
