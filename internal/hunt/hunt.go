// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hunt retrieves recipe candidates from the web. Searches for each
// planned query run concurrently against the search API; result snippets are
// then parsed into structured candidates in (query, rank) order so the
// candidate list is deterministic for a given set of responses.
//
// Implements: prd003-recipe-hunt (R1.1-R1.4, R2.1-R2.4, R5.1-R5.5).
package hunt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/brooondooon/ratatouille/internal/cache"
	"github.com/brooondooon/ratatouille/internal/httputil"
	"github.com/brooondooon/ratatouille/internal/llm"
	"github.com/brooondooon/ratatouille/pkg/types"
)

// searchAPIBase is a package variable so tests can point the searcher at a
// local httptest server.
var searchAPIBase = "https://api.tavily.com/search"

// searches counts successful search API calls process-wide.
var searches atomic.Int64

// SearchCalls reports the total number of search API calls made by this
// process.
func SearchCalls() int64 { return searches.Load() }

const (
	defaultSearchDepth   = "advanced"
	defaultMaxResults    = 5
	defaultTopPerQuery   = 2
	defaultMaxQueries    = 3
	defaultMaxCandidates = 6
	defaultFreshnessDays = 730

	// searchRetries caps 429/503 retries per search request. Kept low so
	// a throttled provider cannot stall a whole run.
	searchRetries = 2
)

// Searcher runs recipe searches and snippet parsing.
type Searcher struct {
	// APIKey authenticates against the search provider.
	APIKey string

	// Client is the HTTP client for search calls. Nil uses
	// http.DefaultClient.
	Client *http.Client

	// AI parses result snippets into structured recipes.
	AI llm.Completer

	// Cache, when set, stores raw search responses keyed by request.
	Cache cache.Store

	// Limiter, when set, throttles outgoing search calls.
	Limiter *rate.Limiter

	// Config carries the search tuning knobs; zero values use defaults.
	Config types.SearchConfig
}

// Outcome is what one extraction pass produced.
type Outcome struct {
	Candidates  []types.Candidate
	SearchCalls int
	LLMCalls    int
	Warnings    []string
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
	Days        int    `json:"days"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`

	// Score is a pointer so an absent field can fall back to 0.5 while an
	// explicit zero stays zero.
	Score *float64 `json:"score"`

	PublishedDate string `json:"published_date"`
}

// querySlot holds one query's search outcome, written by exactly one worker.
type querySlot struct {
	results []searchResult
	called  bool
	warning string
}

// Hunt searches for every query and parses the leading snippets into
// candidates, stopping once the candidate budget is met. Per-query search
// failures and unparseable snippets become warnings; only context
// cancellation aborts the hunt.
func (s *Searcher) Hunt(ctx context.Context, queries []string, w io.Writer) (Outcome, error) {
	if w == nil {
		w = io.Discard
	}

	maxQueries := s.Config.MaxQueries
	if maxQueries <= 0 {
		maxQueries = defaultMaxQueries
	}
	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}

	var out Outcome
	if len(queries) == 0 {
		return out, nil
	}

	// Fan out the searches; each worker owns one slot so no locking is
	// needed and query order survives the concurrency.
	slots := make([]querySlot, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		i, query := i, query
		g.Go(func() error {
			results, called, err := s.search(gctx, query)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slots[i] = querySlot{warning: fmt.Sprintf("search failed for %q: %v", query, err)}
				return nil
			}
			slots[i] = querySlot{results: results, called: called}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}

	topPerQuery := s.Config.TopPerQuery
	if topPerQuery <= 0 {
		topPerQuery = defaultTopPerQuery
	}
	maxCandidates := s.Config.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}

parsing:
	for _, slot := range slots {
		if slot.warning != "" {
			out.Warnings = append(out.Warnings, slot.warning)
			fmt.Fprintf(w, "warning: %s\n", slot.warning)
			continue
		}
		if slot.called {
			out.SearchCalls++
		}

		results := slot.results
		if len(results) > topPerQuery {
			results = results[:topPerQuery]
		}
		for _, res := range results {
			if res.URL == "" || res.Content == "" {
				continue
			}

			cand, err := s.parseSnippet(ctx, res)
			if err != nil {
				if ctx.Err() != nil {
					return out, ctx.Err()
				}
				msg := fmt.Sprintf("recipe parsing failed for %s: %v", res.URL, err)
				out.Warnings = append(out.Warnings, msg)
				fmt.Fprintf(w, "warning: %s\n", msg)
				continue
			}

			out.LLMCalls++
			out.Candidates = append(out.Candidates, cand)
			fmt.Fprintf(w, "parsed %q (%s)\n", cand.Title, cand.Source)
			if len(out.Candidates) >= maxCandidates {
				break parsing
			}
		}
	}
	return out, nil
}

// search runs one query against the search API, consulting the cache first.
// The returned bool reports whether a live API call succeeded, for call
// accounting; cache hits do not count.
func (s *Searcher) search(ctx context.Context, query string) ([]searchResult, bool, error) {
	depth := s.Config.SearchDepth
	if depth == "" {
		depth = defaultSearchDepth
	}
	maxResults := s.Config.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	days := s.Config.FreshnessDays
	if days <= 0 {
		days = defaultFreshnessDays
	}

	// The provider sees the query with "recipe" appended, mirroring how
	// cooks actually search.
	fullQuery := query + " recipe"
	cacheKey := fmt.Sprintf("%s|%s|%d|%d", fullQuery, depth, maxResults, days)

	if s.Cache != nil {
		if raw, ok, err := s.Cache.Get(ctx, cacheKey); err == nil && ok {
			var parsed searchResponse
			if jerr := json.Unmarshal(raw, &parsed); jerr == nil {
				return parsed.Results, false, nil
			}
			// Corrupt entry: ignore it and search for real.
		}
	}

	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return nil, false, err
		}
	}

	body, err := json.Marshal(searchRequest{
		APIKey:      s.APIKey,
		Query:       fullQuery,
		SearchDepth: depth,
		MaxResults:  maxResults,
		Days:        days,
	})
	if err != nil {
		return nil, false, fmt.Errorf("marshaling search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchAPIBase, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if ua := s.Config.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, searchRetries)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, false, fmt.Errorf("reading search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("search API returned %d: %s", resp.StatusCode, errBody(raw))
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false, fmt.Errorf("decoding search response: %w", err)
	}

	searches.Add(1)
	if s.Cache != nil {
		// A failed cache write only costs a future cache miss.
		_ = s.Cache.Set(ctx, cacheKey, raw)
	}
	return parsed.Results, true, nil
}

func errBody(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
