package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "ratatouille/0.1"). Per prd003-recipe-hunt R5.2.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the recipe search boundary.
// Per prd003-recipe-hunt R1.3, R5.1-R5.5.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the web search provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// SearchDepth is the provider search depth (default "advanced").
	SearchDepth string `json:"search_depth" yaml:"search_depth"`

	// MaxResults is how many results to request per query (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// TopPerQuery is how many leading results per query are parsed into
	// candidates (default 2).
	TopPerQuery int `json:"top_per_query" yaml:"top_per_query"`

	// MaxQueries caps how many planned queries are executed (default 3).
	MaxQueries int `json:"max_queries" yaml:"max_queries"`

	// MaxCandidates stops extraction once this many candidates have been
	// collected in one pass (default 6).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`

	// FreshnessDays restricts results to pages published within this many
	// days (default 730).
	FreshnessDays int `json:"freshness_days" yaml:"freshness_days"`

	// RequestsPerSecond rate-limits search API calls. Zero disables the
	// limiter.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature is the sampling temperature. Zero leaves the API default.
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// RankingConfig holds the scoring and diversity thresholds.
// Per prd004-ranking R2.1-R2.6. Zero values fall back to the defaults noted
// on each field at the point of use.
type RankingConfig struct {
	// SelectCount is how many recipes a selection presents (default 3).
	SelectCount int `json:"select_count" yaml:"select_count"`

	// PoolFactor sizes the diversity pool as a multiple of SelectCount
	// (default 2).
	PoolFactor int `json:"pool_factor" yaml:"pool_factor"`

	// SharedTokenLimit is the number of shared title tokens at which two
	// recipes count as near-duplicates (default 2).
	SharedTokenLimit int `json:"shared_token_limit" yaml:"shared_token_limit"`

	// OverlapRatio is the token-overlap ratio above which two recipes
	// count as near-duplicates (default 0.3).
	OverlapRatio float64 `json:"overlap_ratio" yaml:"overlap_ratio"`

	// StopWords are title tokens ignored by similarity checks. Empty uses
	// the built-in list.
	StopWords []string `json:"stop_words,omitempty" yaml:"stop_words,omitempty"`
}

// OrchestratorConfig holds the retry policy for the staged pipeline.
// Per prd005-pipeline-core R1.2-R1.4.
type OrchestratorConfig struct {
	// MaxRetries caps broadened extraction passes after the initial one
	// (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MinCandidates is the candidate count below which the decision stage
	// retries extraction (default 2).
	MinCandidates int `json:"min_candidates" yaml:"min_candidates"`
}

// CacheConfig holds settings for the optional search-response cache.
// Per prd008-caching R1.1-R1.3.
type CacheConfig struct {
	// Enabled turns the cache on. Off by default.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database path (default "cache/search.db").
	Path string `json:"path" yaml:"path"`

	// TTL is how long cached responses stay fresh (default 24h).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// ServerConfig holds settings for the HTTP API server.
// Per prd007-http-api R1.1.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// Config groups all component configurations for the pipeline.
type Config struct {
	Search       SearchConfig       `json:"search" yaml:"search"`
	AI           AIConfig           `json:"ai" yaml:"ai"`
	Ranking      RankingConfig      `json:"ranking" yaml:"ranking"`
	Orchestrator OrchestratorConfig `json:"orchestrator" yaml:"orchestrator"`
	Cache        CacheConfig        `json:"cache" yaml:"cache"`
	Server       ServerConfig       `json:"server" yaml:"server"`
}
