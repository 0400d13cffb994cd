package harvest

import (
	"context"

	"github.com/abhilashdr/jobscout/internal/job"
)

// Relevance decides whether a posting is worth keeping at all.
type Relevance interface {
	IsRelevant(p job.Posting) bool
}

// SeenStore answers whether a posting key was already observed in a
// recent run. Implementations may fail open.
type SeenStore interface {
	Seen(ctx context.Context, key string) (bool, error)
}

type validityStage struct{}

// NewValidity creates a stage that drops postings missing a title or company.
func NewValidity() Stage {
	return validityStage{}
}

func (validityStage) Name() string { return "validity" }

func (validityStage) Apply(_ context.Context, jobs []job.Posting) ([]job.Posting, error) {
	kept := jobs[:0]
	for _, p := range jobs {
		if p.Valid() {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

type relevanceStage struct {
	matcher Relevance
}

// NewRelevance creates a stage that keeps only postings the matcher accepts.
func NewRelevance(matcher Relevance) Stage {
	return &relevanceStage{matcher: matcher}
}

func (s *relevanceStage) Name() string { return "relevance" }

func (s *relevanceStage) Apply(_ context.Context, jobs []job.Posting) ([]job.Posting, error) {
	kept := make([]job.Posting, 0, len(jobs))
	for _, p := range jobs {
		if s.matcher.IsRelevant(p) {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

type dedupStage struct{}

// NewDedup creates a stage that keeps the first posting per dedup key.
// Order is preserved so the earliest source wins.
func NewDedup() Stage {
	return dedupStage{}
}

func (dedupStage) Name() string { return "dedup" }

func (dedupStage) Apply(_ context.Context, jobs []job.Posting) ([]job.Posting, error) {
	seen := make(map[string]struct{}, len(jobs))
	kept := make([]job.Posting, 0, len(jobs))
	for _, p := range jobs {
		key := p.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, p)
	}
	return kept, nil
}

type seenCacheStage struct {
	cache SeenStore
}

// NewSeenCache creates a stage that drops postings observed in recent runs.
// Cache errors fail open and keep the posting. The stage never writes to the
// cache; survivors are remembered only once they were persisted.
func NewSeenCache(cache SeenStore) Stage {
	return &seenCacheStage{cache: cache}
}

func (s *seenCacheStage) Name() string { return "seen_cache" }

func (s *seenCacheStage) Apply(ctx context.Context, jobs []job.Posting) ([]job.Posting, error) {
	kept := make([]job.Posting, 0, len(jobs))

	for _, p := range jobs {
		seen, err := s.cache.Seen(ctx, p.Key())
		if err == nil && seen {
			continue
		}
		kept = append(kept, p)
	}

	return kept, nil
}
