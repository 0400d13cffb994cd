package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhilashdr/jobscout/internal/config"
	"github.com/abhilashdr/jobscout/internal/harvest"
	"github.com/abhilashdr/jobscout/internal/match"
	"github.com/abhilashdr/jobscout/internal/notify"
	"github.com/abhilashdr/jobscout/internal/pipeline"
	"github.com/abhilashdr/jobscout/internal/source"
	"github.com/abhilashdr/jobscout/internal/store"
)

// runtime holds the wired application services shared by the commands.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	gateway *store.Gateway
	seen    *store.SeenCache
	matcher *match.Matcher
	runner  *pipeline.Runner
}

// newRuntime builds the full pipeline from the configuration. The seen cache
// is optional; everything else is required.
func newRuntime(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*runtime, error) {
	gateway, err := store.New(ctx, cfg.Database.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("setting up storage: %w", err)
	}

	var seen *store.SeenCache
	if cfg.Redis.URL != "" {
		seen, err = store.NewSeenCache(ctx, cfg.Redis.URL, cfg.Redis.SeenTTL)
		if err != nil {
			logger.Warn("seen cache disabled", zap.Error(err))
			seen = nil
		}
	}

	adapters, err := buildAdapters(cfg, logger)
	if err != nil {
		gateway.Close()
		return nil, err
	}
	logger.Info("sources configured", zap.Int("adapters", len(adapters)))

	matcher := match.New(cfg.Profile, cfg.Scoring.Weights)

	stages := []harvest.Stage{
		harvest.NewValidity(),
		harvest.NewRelevance(matcher),
		harvest.NewDedup(),
	}
	if seen != nil {
		stages = append(stages, harvest.NewSeenCache(seen))
	}

	harvester := harvest.New(adapters, stages, cfg.Sources.Workers, cfg.Sources.AdapterTimeout, logger)
	sender := notify.NewSender(cfg.Email, logger)

	var seenStore pipeline.SeenStore
	if seen != nil {
		seenStore = seen
	}
	runner := pipeline.NewRunner(harvester, matcher, gateway, sender, seenStore, cfg, logger)

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		gateway: gateway,
		seen:    seen,
		matcher: matcher,
		runner:  runner,
	}, nil
}

func (rt *runtime) close() {
	if rt.seen != nil {
		rt.seen.Close()
	}
	rt.gateway.Close()
}

// buildAdapters constructs one adapter per configured company or portal.
func buildAdapters(cfg *config.Config, logger *zap.Logger) ([]source.Adapter, error) {
	var adapters []source.Adapter

	client := source.NewClient(cfg.Sources.UserAgent, cfg.Sources.RequestTimeout)

	if cfg.Sources.ATS.Enabled {
		companies, _, err := source.LoadCatalog(cfg.Sources.ATS.CompaniesFile)
		if err != nil {
			return nil, fmt.Errorf("loading ats companies: %w", err)
		}
		adapters = append(adapters, source.NewATSAdapters(companies, client, cfg.Profile, logger)...)
		adapters = append(adapters, source.NewInstahyre(cfg.Profile, client, logger))
	}

	if cfg.Sources.CareerPages.Enabled {
		_, pages, err := source.LoadCatalog(cfg.Sources.CareerPages.CompaniesFile)
		if err != nil {
			return nil, fmt.Errorf("loading career pages: %w", err)
		}
		for _, page := range pages {
			adapters = append(adapters, source.NewCareerPageAdapter(page, cfg.Profile, cfg.Sources))
		}
	}

	if cfg.Sources.Browser.Enabled {
		adapters = append(adapters,
			source.NewBrowserAdapter(source.NaukriPortal{}, cfg.Profile, cfg.Sources),
			source.NewBrowserAdapter(source.LinkedInPortal{}, cfg.Profile, cfg.Sources),
		)
	}

	return adapters, nil
}
