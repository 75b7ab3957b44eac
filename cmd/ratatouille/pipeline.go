// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/brooondooon/ratatouille/internal/cache"
	"github.com/brooondooon/ratatouille/internal/enrich"
	"github.com/brooondooon/ratatouille/internal/hunt"
	"github.com/brooondooon/ratatouille/internal/llm"
	"github.com/brooondooon/ratatouille/internal/pipeline"
	"github.com/brooondooon/ratatouille/internal/plan"
	"github.com/brooondooon/ratatouille/internal/rank"
	"github.com/brooondooon/ratatouille/pkg/types"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "ratatouille/0.1"
	defaultCachePath = "cache/search.db"
	defaultCacheTTL  = 24 * time.Hour
)

// loadConfig assembles component configuration from viper, the secrets
// directory, and the environment. Zero values left in place fall back to
// each component's own defaults.
func loadConfig() types.Config {
	cfg := types.Config{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			APIKey:            secretDefault("TAVILY_API_KEY", viper.GetString("search.api_key")),
			SearchDepth:       viper.GetString("search.depth"),
			MaxResults:        viper.GetInt("search.max_results"),
			TopPerQuery:       viper.GetInt("search.top_per_query"),
			MaxQueries:        viper.GetInt("search.max_queries"),
			MaxCandidates:     viper.GetInt("search.max_candidates"),
			FreshnessDays:     viper.GetInt("search.freshness_days"),
			RequestsPerSecond: viper.GetFloat64("search.requests_per_second"),
		},
		AI: types.AIConfig{
			Model:       viper.GetString("ai.model"),
			APIKey:      secretDefault("ANTHROPIC_API_KEY", viper.GetString("ai.api_key")),
			Temperature: viper.GetFloat64("ai.temperature"),
			MaxRetries:  viper.GetInt("ai.max_retries"),
		},
		Ranking: types.RankingConfig{
			SelectCount:      viper.GetInt("ranking.select_count"),
			PoolFactor:       viper.GetInt("ranking.pool_factor"),
			SharedTokenLimit: viper.GetInt("ranking.shared_token_limit"),
			OverlapRatio:     viper.GetFloat64("ranking.overlap_ratio"),
			StopWords:        viper.GetStringSlice("ranking.stop_words"),
		},
		Orchestrator: types.OrchestratorConfig{
			MaxRetries:    viper.GetInt("pipeline.max_retries"),
			MinCandidates: viper.GetInt("pipeline.min_candidates"),
		},
		Cache: types.CacheConfig{
			Enabled: viper.GetBool("cache.enabled"),
			Path:    viper.GetString("cache.path"),
			TTL:     viper.GetDuration("cache.ttl"),
		},
		Server: types.ServerConfig{
			Addr: viper.GetString("server.addr"),
		},
	}

	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultModel
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = defaultTimeout
	}
	if cfg.Search.UserAgent == "" {
		cfg.Search.UserAgent = defaultUserAgent
	}
	return cfg
}

// pipelineFlags registers the overrides shared by commands that run the
// pipeline, read back by pipelineConfig.
func pipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("model", "", "AI model identifier (default "+defaultModel+")")
	cmd.Flags().Bool("no-cache", false, "bypass the search cache")
}

func pipelineConfig(cmd *cobra.Command) types.Config {
	cfg := loadConfig()
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.AI.Model = model
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	return cfg
}

// newCompleter builds the model client shared by every stage.
func newCompleter(cfg types.Config) *llm.Client {
	return &llm.Client{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxRetries:  cfg.AI.MaxRetries,
	}
}

// openSearchCache opens the persistent SQLite search cache when caching is
// enabled. The returned closer is safe to call either way. CLI invocations
// are short-lived, so only an on-disk cache makes repeat runs cheap.
func openSearchCache(cfg types.Config) (cache.Store, func() error, error) {
	if !cfg.Cache.Enabled {
		return nil, func() error { return nil }, nil
	}

	path := cfg.Cache.Path
	if path == "" {
		path = defaultCachePath
	}
	sq, err := cache.NewSQLite(path, cacheTTL(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("opening search cache: %w", err)
	}
	return sq, sq.Close, nil
}

func cacheTTL(cfg types.Config) time.Duration {
	if cfg.Cache.TTL == 0 {
		return defaultCacheTTL
	}
	return cfg.Cache.TTL
}

// buildRunner wires the full pipeline around the given search cache.
// A nil store runs uncached.
func buildRunner(cfg types.Config, store cache.Store, log io.Writer) *pipeline.Runner {
	ai := newCompleter(cfg)

	var limiter *rate.Limiter
	if rps := cfg.Search.RequestsPerSecond; rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	extractor := &pipeline.SearchExtractor{
		Planner: &plan.Planner{AI: ai},
		Hunter: &hunt.Searcher{
			APIKey:  cfg.Search.APIKey,
			Client:  &http.Client{Timeout: cfg.Search.Timeout},
			AI:      ai,
			Cache:   store,
			Limiter: limiter,
			Config:  cfg.Search,
		},
		Log: log,
	}

	o := &pipeline.Orchestrator{
		Extractor:     extractor,
		Ranker:        &pipeline.EngineRanker{Engine: rank.NewEngine(cfg.Ranking), Now: time.Now},
		Enricher:      &pipeline.CardEnricher{Annotator: &enrich.Annotator{AI: ai}, Log: log},
		MaxRetries:    cfg.Orchestrator.MaxRetries,
		MinCandidates: cfg.Orchestrator.MinCandidates,
		Log:           log,
	}

	return pipeline.NewRunner(o, log)
}
