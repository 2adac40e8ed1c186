package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lead-agent/prospect/api"
	"github.com/lead-agent/prospect/cache"
	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/extract"
	"github.com/lead-agent/prospect/fetch"
	"github.com/lead-agent/prospect/llm"
	"github.com/lead-agent/prospect/pipeline"
	"github.com/lead-agent/prospect/search"
	"github.com/lead-agent/prospect/verify"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	_ = godotenv.Load()
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("prospect starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
	)

	// ── 3. Initialise fetch layer ───────────────────────────────────
	memory := fetch.NewDomainMemory(cfg.Fetch.DomainMemoryTTL)
	defer memory.Stop()
	fetcher := fetch.NewDispatcher([]fetch.Client{
		fetch.NewStandardClient(),
		fetch.NewChromeClient(),
	}, memory)

	// ── 4. Initialise providers ─────────────────────────────────────
	var searcher search.Provider
	if cfg.Search.APIKey != "" {
		searcher = search.NewSerpAPI(cfg.Search.APIKey, nil)
	} else {
		slog.Warn("SERPAPI_API_KEY not set, website discovery disabled")
	}

	var judge verify.Completer
	if cfg.LLM.APIKey != "" {
		client, err := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, nil)
		if err != nil {
			slog.Error("failed to initialise LLM client", "error", err)
			os.Exit(1)
		}
		judge = client
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set, verification runs without the judge")
	}

	// ── 5. Assemble the pipeline ────────────────────────────────────
	verifier := verify.NewVerifier(fetcher, judge)
	engine := extract.NewEngine(fetcher)
	p := pipeline.New(fetcher, searcher, verifier, engine, judge, pipeline.Options{
		OwnerInfo:    cfg.Pipeline.OwnerInfo,
		Pace:         cfg.Pipeline.Pace,
		FetchTimeout: cfg.Fetch.Timeout,
	})

	// ── 5b. Initialise cache ────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 6. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(p, cfg, cc, startTime)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("prospect stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
