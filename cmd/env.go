package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/cliplens/match-cli/internal/cost"
	"github.com/cliplens/match-cli/internal/pipeline"
	"github.com/cliplens/match-cli/internal/schema"
	"github.com/cliplens/match-cli/internal/scoring"
	"github.com/cliplens/match-cli/internal/store"
	"github.com/cliplens/match-cli/pkg/shopsearch"
	"github.com/cliplens/match-cli/pkg/vision"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "cliplens.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func loadRegistry() (*schema.Registry, error) {
	if cfg.Rubrics.Path != "" {
		return schema.LoadFile(cfg.Rubrics.Path)
	}
	return schema.Load()
}

// initMatcher wires the matching pipeline with live clients. The returned
// tracker accumulates vision token usage for the whole invocation.
func initMatcher() (*pipeline.Matcher, *cost.Tracker, error) {
	registry, err := loadRegistry()
	if err != nil {
		return nil, nil, err
	}

	engine := scoring.NewEngine(cfg.Scoring)

	if cfg.Vision.Key == "" {
		return nil, nil, eris.New("vision API key is required (CLIPLENS_VISION_KEY)")
	}
	if cfg.Search.Key == "" {
		return nil, nil, eris.New("search API key is required (CLIPLENS_SEARCH_KEY)")
	}

	visionClient := vision.NewClient(cfg.Vision.Key,
		vision.WithModel(cfg.Vision.Model),
		vision.WithMaxTokens(int64(cfg.Vision.MaxTokens)),
	)
	tracker := cost.NewTracker(cfg.Vision.Model)

	searchClient := shopsearch.NewClient(cfg.Search.Key,
		shopsearch.WithBaseURL(cfg.Search.BaseURL),
		shopsearch.WithEngine(cfg.Search.Engine),
		shopsearch.WithRateLimit(cfg.Search.RatePerSec),
	)

	m := pipeline.NewMatcher(registry, engine, tracker.Wrap(visionClient), searchClient)
	return m, tracker, nil
}

func rankOptions() pipeline.Options {
	return pipeline.Options{
		MaxCandidates:      cfg.Pipeline.MaxCandidates,
		ExtractConcurrency: cfg.Pipeline.ExtractConcurrency,
		DisableTiebreak:    !cfg.Tiebreak.Enabled,
		TiebreakMinScore:   cfg.Tiebreak.MinScore,
		TiebreakMaxGap:     cfg.Tiebreak.MaxGap,
		SearchTimeout:      time.Duration(cfg.Pipeline.SearchTimeoutSecs) * time.Second,
		ExtractTimeout:     time.Duration(cfg.Pipeline.ExtractTimeoutSecs) * time.Second,
	}
}
