package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/brooondooon/ratatouille/internal/cache"
	"github.com/brooondooon/ratatouille/internal/hunt"
	"github.com/brooondooon/ratatouille/internal/intent"
	"github.com/brooondooon/ratatouille/internal/llm"
	"github.com/brooondooon/ratatouille/internal/server"
)

const defaultAddr = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve exposes the pipeline over HTTP: POST /api/recommend for structured
requests, POST /api/chat for natural-language requests, and GET /health for
liveness and configuration checks. The server shuts down cleanly on SIGINT
and SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	pipelineFlags(serveCmd)

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if addr == "" {
		addr = defaultAddr
	}

	// The server process outlives many runs, so a process-local cache is
	// enough; nothing needs to survive a restart.
	var store cache.Store
	if cfg.Cache.Enabled {
		store = cache.NewMemory(cacheTTL(cfg))
	}
	runner := buildRunner(cfg, store, os.Stderr)

	api := &server.Server{
		Recommender:         runner,
		Intent:              &intent.Parser{AI: newCompleter(cfg)},
		AnthropicConfigured: cfg.AI.APIKey != "",
		TavilyConfigured:    cfg.Search.APIKey != "",
		CacheEnabled:        cfg.Cache.Enabled,
		SearchCallsTotal:    hunt.SearchCalls,
		LLMCallsTotal:       llm.Calls,
		Log:                 os.Stderr,
	}

	srv := &http.Server{
		Addr:        addr,
		Handler:     api.Routes(),
		ReadTimeout: 30 * time.Second,
		// A run spends minutes in model calls; don't close the response early.
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	fmt.Fprintf(os.Stderr, "listening on %s\n", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
