package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/extract"
	"github.com/lead-agent/prospect/fetch"
	"github.com/lead-agent/prospect/llm"
	"github.com/lead-agent/prospect/pipeline"
	"github.com/lead-agent/prospect/search"
	"github.com/lead-agent/prospect/verify"
)

// buildPipeline assembles the profiling pipeline from the environment.
// Provider keys are optional: without SERPAPI_API_KEY rows must carry
// their own website, without ANTHROPIC_API_KEY verification runs
// unjudged and owner extraction is refused.
func buildPipeline(ownerInfo bool, pace time.Duration) (*pipeline.Pipeline, error) {
	cfg := config.Load()

	memory := fetch.NewDomainMemory(cfg.Fetch.DomainMemoryTTL)
	fetcher := fetch.NewDispatcher([]fetch.Client{
		fetch.NewStandardClient(),
		fetch.NewChromeClient(),
	}, memory)

	var searcher search.Provider
	if cfg.Search.APIKey != "" {
		searcher = search.NewSerpAPI(cfg.Search.APIKey, nil)
	} else {
		fmt.Fprintln(os.Stderr, "Warning: SERPAPI_API_KEY not set, rows without a website column are skipped")
	}

	var judge verify.Completer
	if cfg.LLM.APIKey != "" {
		client, err := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, nil)
		if err != nil {
			return nil, fmt.Errorf("init LLM client: %w", err)
		}
		judge = client
	} else if ownerInfo {
		return nil, fmt.Errorf("--owner-info requires ANTHROPIC_API_KEY")
	}

	return pipeline.New(fetcher, searcher, verify.NewVerifier(fetcher, judge), extract.NewEngine(fetcher), judge, pipeline.Options{
		OwnerInfo:    ownerInfo,
		Pace:         pace,
		FetchTimeout: cfg.Fetch.Timeout,
	}), nil
}

// initCLILogger keeps slog quiet unless asked: progress goes to stdout
// via the commands themselves, diagnostics to stderr.
func initCLILogger(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
