// Package pipeline orchestrates profile building: website resolution,
// homepage fetching, extraction, the social-page fallback and optional
// owner enrichment, paced so target sites never see bursts.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"golang.org/x/time/rate"

	"github.com/lead-agent/prospect/content"
	"github.com/lead-agent/prospect/extract"
	"github.com/lead-agent/prospect/models"
	"github.com/lead-agent/prospect/records"
	"github.com/lead-agent/prospect/search"
	"github.com/lead-agent/prospect/verify"
)

const (
	// defaultPace is the minimum spacing between companies in batch runs.
	defaultPace = 2 * time.Second

	// defaultFetchTimeout bounds the homepage fetch for one company.
	defaultFetchTimeout = 30 * time.Second
)

// Fetcher loads a page for profiling.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (*models.Page, int, error)
}

// Options tune a Pipeline.
type Options struct {
	// OwnerInfo turns on LLM owner extraction for fetched homepages.
	OwnerInfo bool
	// Pace is the minimum delay between companies in ProcessAll.
	Pace time.Duration
	// FetchTimeout bounds one homepage fetch.
	FetchTimeout time.Duration
}

// Pipeline builds company profiles. The search provider and the judge are
// optional collaborators: without them the pipeline still extracts from
// websites it is given, it just cannot discover or double-check them.
type Pipeline struct {
	fetcher  Fetcher
	searcher search.Provider
	verifier *verify.Verifier
	engine   *extract.Engine
	judge    verify.Completer
	conv     *converter.Converter
	limiter  *rate.Limiter
	opts     Options
}

func New(fetcher Fetcher, searcher search.Provider, verifier *verify.Verifier, engine *extract.Engine, judge verify.Completer, opts Options) *Pipeline {
	if opts.Pace <= 0 {
		opts.Pace = defaultPace
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	return &Pipeline{
		fetcher:  fetcher,
		searcher: searcher,
		verifier: verifier,
		engine:   engine,
		judge:    judge,
		conv:     content.NewMarkdownConverter(),
		limiter:  rate.NewLimiter(rate.Every(opts.Pace), 1),
		opts:     opts,
	}
}

// WithOwnerInfo returns a pipeline sharing this one's collaborators and
// pacer, with owner extraction toggled. Used by the API, where the flag
// arrives per request rather than at startup.
func (p *Pipeline) WithOwnerInfo(enabled bool) *Pipeline {
	if p.opts.OwnerInfo == enabled {
		return p
	}
	clone := *p
	clone.opts.OwnerInfo = enabled
	return &clone
}

// Pace blocks until the shared company pacer permits another profile run.
// Every caller profiling more than one company goes through it so the
// external providers see one steady request stream, not one per caller.
func (p *Pipeline) Pace(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// ProcessOne builds the profile for a single company. A company that cannot
// be found on the web yields an empty profile, not an error; errors are
// reserved for cancellation.
func (p *Pipeline) ProcessOne(ctx context.Context, company models.Company, existingWebsite string) (*models.Profile, models.TimingInfo, error) {
	var timing models.TimingInfo
	start := time.Now()

	profile := &models.Profile{Emails: []string{}}

	website := strings.TrimSpace(existingWebsite)
	if website == "" {
		ts := time.Now()
		website = p.resolveWebsite(ctx, company)
		timing.SearchMs = time.Since(ts).Milliseconds()
	}
	if err := ctx.Err(); err != nil {
		return nil, timing, err
	}
	if website == "" {
		slog.Info("no website found", "company", company.Name)
		timing.TotalMs = time.Since(start).Milliseconds()
		return profile, timing, nil
	}
	profile.Website = website

	ts := time.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
	page, status, err := p.fetcher.FetchPage(fetchCtx, website)
	cancel()
	timing.FetchMs = time.Since(ts).Milliseconds()
	if err != nil || status != http.StatusOK {
		slog.Warn("homepage not readable", "company", company.Name, "url", website, "status", status, "error", err)
		timing.TotalMs = time.Since(start).Milliseconds()
		return profile, timing, nil
	}

	ts = time.Now()
	ext := p.engine.Extract(ctx, page, company)
	profile.Emails = ext.Emails
	profile.ContactForm = ext.ContactFormURL
	profile.FacebookPage = ext.SocialURL
	profile.LogoURL = ext.LogoURL

	if profile.FacebookPage == "" && p.searcher != nil {
		profile.FacebookPage = p.fallbackFacebook(ctx, company)
	}
	if p.opts.OwnerInfo && p.judge != nil {
		profile.OwnerInfo = p.extractOwnerInfo(ctx, page)
	}
	timing.ExtractMs = time.Since(ts).Milliseconds()

	timing.TotalMs = time.Since(start).Milliseconds()
	return profile, timing, nil
}

// resolveWebsite searches for the company's site and verifies candidates in
// rank order. When every candidate is rejected the top result is still the
// best guess available.
func (p *Pipeline) resolveWebsite(ctx context.Context, company models.Company) string {
	if p.searcher == nil || company.Name == "" {
		return ""
	}
	candidates, err := p.searcher.SearchWebsites(ctx, company.Name)
	if err != nil {
		slog.Warn("website search failed", "company", company.Name, "error", err)
		return ""
	}
	for _, cand := range candidates {
		if d := p.verifier.VerifyWebsite(ctx, company, cand); d.Accepted {
			slog.Debug("website accepted", "company", company.Name, "url", cand, "reason", d.Reason)
			return cand
		}
	}
	if len(candidates) > 0 {
		slog.Debug("falling back to top search result", "company", company.Name, "url", candidates[0])
		return candidates[0]
	}
	return ""
}

// fallbackFacebook searches for the company's social page when its website
// did not link one. Search hits are canonicalized, then held to the strict
// acceptance rule.
func (p *Pipeline) fallbackFacebook(ctx context.Context, company models.Company) string {
	link, err := p.searcher.SearchFacebook(ctx, company.Name, company.Address)
	if err != nil {
		slog.Warn("social search failed", "company", company.Name, "error", err)
		return ""
	}
	if link == "" {
		return ""
	}
	link = p.engine.Social.Normalize(link)
	if d := p.verifier.VerifyFacebook(ctx, company, link); d.Accepted {
		return link
	}
	return ""
}

// ProcessRecord enriches one spreadsheet row in place.
func (p *Pipeline) ProcessRecord(ctx context.Context, rec *records.Record) error {
	company := rec.Company()
	if company.Name == "" {
		return models.NewProfileError(models.ErrCodeInvalidInput, "record has no company name", nil)
	}

	existing := ""
	if rec.HasWebsite() {
		existing = strings.TrimSpace(rec.Get("website"))
	}

	profile, _, err := p.ProcessOne(ctx, company, existing)
	if err != nil {
		return err
	}
	applyProfile(rec, profile)
	return nil
}

// Progress is notified after each record, whether it was enriched or
// skipped. done counts records finished so far out of total.
type Progress func(done, total int, name string)

// ProcessAll enriches records in order, pacing companies through the
// limiter. Rows without a company name are skipped, not fatal. progress
// may be nil.
func (p *Pipeline) ProcessAll(ctx context.Context, recs []*records.Record, progress Progress) error {
	for i, rec := range recs {
		if err := p.Pace(ctx); err != nil {
			return err
		}
		if err := p.ProcessRecord(ctx, rec); err != nil {
			var pe *models.ProfileError
			if errors.As(err, &pe) && pe.Code == models.ErrCodeInvalidInput {
				slog.Warn("skipping record", "index", i, "error", err)
			} else {
				return err
			}
		} else {
			slog.Info("record processed", "index", i+1, "total", len(recs))
		}
		if progress != nil {
			progress(i+1, len(recs), rec.Get("name"))
		}
	}
	return nil
}

// applyProfile writes the profile back onto the row.
func applyProfile(rec *records.Record, profile *models.Profile) {
	rec.Set("website", profile.Website)
	rec.Set("emails", strings.Join(profile.Emails, ", "))
	rec.Set("contact_form", profile.ContactForm)
	rec.Set("facebook_page", profile.FacebookPage)
	rec.Set("logo_url", profile.LogoURL)
	if profile.OwnerInfo != "" {
		rec.Set("owner_info", profile.OwnerInfo)
	}
}
