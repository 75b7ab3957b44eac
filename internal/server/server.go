// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the recommendation pipeline over HTTP: a structured
// recommend endpoint, a conversational chat endpoint, and health probes.
//
// Implements: prd007-http-api (R1.1-R1.6, R2.1-R2.4).
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/brooondooon/ratatouille/internal/intent"
	"github.com/brooondooon/ratatouille/internal/pipeline"
	"github.com/brooondooon/ratatouille/pkg/types"
)

const apiVersion = "1.0.0"

// maxRequestBytes bounds request bodies before JSON decoding.
const maxRequestBytes = 1 << 20

// Recommender runs one full recommendation pass.
type Recommender interface {
	Recommend(ctx context.Context, req pipeline.Request) (*types.Result, error)
}

// IntentParser turns a chat message into structured recipe parameters.
type IntentParser interface {
	Extract(ctx context.Context, message string) (types.Intent, error)
}

// Server routes API requests into the pipeline. Fields are plain so tests can
// stub the collaborators directly.
type Server struct {
	Recommender Recommender
	Intent      IntentParser

	// Health probe inputs.
	AnthropicConfigured bool
	TavilyConfigured    bool
	CacheEnabled        bool

	// SearchCallsTotal and LLMCallsTotal report process-wide call counts
	// for the health endpoint. Nil reports zero.
	SearchCallsTotal func() int64
	LLMCallsTotal    func() int64

	// Log receives request lines. Nil discards them.
	Log io.Writer
}

// Routes builds the handler tree with CORS applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/recommend", s.handleRecommend)
	mux.HandleFunc("/api/chat", s.handleChat)
	return s.cors(mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Ratatouille API is running",
		"status":  "healthy",
		"version": apiVersion,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	var searchTotal, llmTotal int64
	if s.SearchCallsTotal != nil {
		searchTotal = s.SearchCallsTotal()
	}
	if s.LLMCallsTotal != nil {
		llmTotal = s.LLMCallsTotal()
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":               "healthy",
		"anthropic_configured": s.AnthropicConfigured,
		"tavily_configured":    s.TavilyConfigured,
		"cache_enabled":        s.CacheEnabled,
		"search_calls_total":   searchTotal,
		"llm_calls_total":      llmTotal,
	})
}

type recommendRequest struct {
	LearningGoal        string   `json:"learning_goal"`
	SkillLevel          string   `json:"skill_level"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	ExcludedURLs        []string `json:"excluded_urls"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	goal := strings.TrimSpace(req.LearningGoal)
	if n := len(goal); n < 3 || n > 200 {
		s.writeError(w, http.StatusBadRequest, "learning_goal must be between 3 and 200 characters")
		return
	}
	skill, err := types.ParseSkillLevel(req.SkillLevel)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.DietaryRestrictions) > 10 {
		s.writeError(w, http.StatusBadRequest, "dietary_restrictions lists at most 10 entries")
		return
	}

	fmt.Fprintf(s.log(), "recommend: %q (%s)\n", goal, skill)

	res, err := s.Recommender.Recommend(r.Context(), pipeline.Request{
		LearningGoal:        goal,
		SkillLevel:          skill,
		DietaryRestrictions: req.DietaryRestrictions,
		ExcludedURLs:        req.ExcludedURLs,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrNoRecipes) {
			s.writeNotFound(w, res, "No recipes found matching your criteria. Try broadening your search or changing filters.")
			return
		}
		fmt.Fprintf(s.log(), "recommend failed: %v\n", err)
		s.writeError(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

type chatRequest struct {
	Message string `json:"message"`
}

// chatMetadata is the run metadata plus the intent the model read out of the
// message.
type chatMetadata struct {
	types.RunMetadata
	ExtractedIntent types.Intent `json:"extracted_intent"`
}

type chatResponse struct {
	Reply    string       `json:"reply"`
	Recipes  []types.Card `json:"recipes"`
	Metadata chatMetadata `json:"metadata"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	message := strings.TrimSpace(req.Message)
	if n := len(message); n < 3 || n > 500 {
		s.writeError(w, http.StatusBadRequest, "message must be between 3 and 500 characters")
		return
	}

	fmt.Fprintf(s.log(), "chat: %q\n", message)

	it, err := s.Intent.Extract(r.Context(), message)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Could not understand your request. Please try rephrasing: "+err.Error())
		return
	}

	res, err := s.Recommender.Recommend(r.Context(), pipeline.Request{
		LearningGoal:        it.LearningGoal,
		SkillLevel:          it.SkillLevel,
		DietaryRestrictions: it.DietaryRestrictions,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrNoRecipes) {
			s.writeNotFound(w, res, "No recipes found matching your criteria. Try rephrasing your request or broadening your search.")
			return
		}
		fmt.Fprintf(s.log(), "chat failed: %v\n", err)
		s.writeError(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
		return
	}

	meta := chatMetadata{RunMetadata: res.Metadata, ExtractedIntent: it}
	// The intent extraction itself spent one model call.
	meta.LLMCalls++

	s.writeJSON(w, http.StatusOK, chatResponse{
		Reply:    intent.Reply(it.LearningGoal, it.SkillLevel, len(res.Recipes)),
		Recipes:  res.Recipes,
		Metadata: meta,
	})
}

// writeNotFound reports a completed run that selected nothing. The run
// metadata rides along when available so clients can see retries and
// warnings.
func (s *Server) writeNotFound(w http.ResponseWriter, res *types.Result, detail string) {
	payload := map[string]any{"detail": detail}
	if res != nil {
		payload["metadata"] = res.Metadata
	}
	s.writeJSON(w, http.StatusNotFound, payload)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Fprintf(s.log(), "response encoding failed: %v\n", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"detail": message})
}

// cors allows browser frontends on other origins to call the API.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) log() io.Writer {
	if s.Log == nil {
		return io.Discard
	}
	return s.Log
}
