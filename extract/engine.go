// Package extract implements the heuristic entity-extraction engine: given
// a fetched page it pulls out a business email, a contact surface locator,
// a canonical social page URL and a logo URL. All components are
// deterministic, tolerate malformed markup, and yield absent rather than
// erroring when nothing matches.
package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/lead-agent/prospect/models"
)

// Fetcher supplies the classifier's Tier-0 page probes. Implementations
// treat network failures as absent data, never as fatal errors.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (page *models.Page, statusCode int, err error)
}

// Engine runs the extraction components over one page. It holds no
// cross-call state and is safe for concurrent use across companies.
type Engine struct {
	// Fetcher probes dedicated contact pages; nil disables Tier 0.
	Fetcher Fetcher

	// Social configures the social link resolver.
	Social *SocialSite
}

// NewEngine creates an Engine with the Facebook social configuration.
func NewEngine(fetcher Fetcher) *Engine {
	return &Engine{Fetcher: fetcher, Social: Facebook()}
}

// Extract runs all components over the page and assembles the result. The
// company context is accepted for parity with caller logging; extraction
// rules never consult it.
func (e *Engine) Extract(ctx context.Context, page *models.Page, company models.Company) models.Extraction {
	result := models.Extraction{Emails: []string{}}
	if page == nil || page.HTML == "" {
		return result
	}
	slog.Debug("extracting", "company", company.Name, "url", page.URL)

	result.Emails = ExtractEmails(page.HTML)

	root, err := html.Parse(strings.NewReader(page.HTML))
	if err != nil {
		// Tokenizer-level failure; only the regex-based component above
		// can run.
		return result
	}
	doc := goquery.NewDocumentFromNode(root)

	result.ContactFormURL = e.locateContactSurface(ctx, doc, page)
	if e.Social != nil {
		result.SocialURL = e.Social.ResolveFromPage(doc, page.HTML)
	}
	result.LogoURL = LocateLogo(root, page.URL)

	return result
}
