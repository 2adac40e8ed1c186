// Package verify decides whether candidate URLs really belong to a company
// before they are attached to its profile.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lead-agent/prospect/content"
	"github.com/lead-agent/prospect/models"
)

const (
	// nameScanWindow is how much visible text is searched for the company
	// name before the judge is consulted at all.
	nameScanWindow = 1500

	// socialScanWindow is how much of a social page the judge sees.
	socialScanWindow = 2000

	verifyMaxTokens = 50

	// fetchTimeout bounds a verification fetch; verification is a side
	// check and must stay cheaper than the main crawl.
	fetchTimeout = 15 * time.Second
)

const websitePromptTemplate = `Company name: %s
Address: %s
Website title: %s
Website content: %s

Is this website likely the official website for this company? Answer only YES or NO.`

const facebookPromptTemplate = `Company name: %s
Facebook page content: %s

Is this Facebook page likely the official Facebook page for this company? Answer only YES or NO.`

// Completer produces a short completion for a verification prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Fetcher loads a candidate page for inspection.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (*models.Page, int, error)
}

// Decision is the outcome of one verification and the rule that made it.
type Decision struct {
	Accepted bool
	Reason   string
}

// Verifier checks candidate websites and social pages against the company
// they are supposed to belong to. A nil Judge disables the LLM checks and
// every candidate passes.
type Verifier struct {
	Fetcher Fetcher
	Judge   Completer
}

func NewVerifier(fetcher Fetcher, judge Completer) *Verifier {
	return &Verifier{Fetcher: fetcher, Judge: judge}
}

// VerifyWebsite decides whether the URL is the company's own site. Every
// failure mode accepts: a search hit that cannot be double-checked is still
// more useful than no website at all.
func (v *Verifier) VerifyWebsite(ctx context.Context, company models.Company, websiteURL string) Decision {
	if v.Judge == nil {
		return Decision{Accepted: true, Reason: "no judge configured"}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	page, status, err := v.Fetcher.FetchPage(fetchCtx, websiteURL)
	cancel()
	if err != nil || status != http.StatusOK {
		return Decision{Accepted: true, Reason: "page not inspectable"}
	}

	title := content.Title(page.HTML)
	clip := content.Clip(page.VisibleText, nameScanWindow)

	name := strings.ToLower(company.Name)
	if name != "" && (strings.Contains(strings.ToLower(title), name) || strings.Contains(strings.ToLower(clip), name)) {
		return Decision{Accepted: true, Reason: "company name on page"}
	}

	prompt := fmt.Sprintf(websitePromptTemplate, company.Name, company.Address, title, clip)
	answer, err := v.Judge.Complete(ctx, prompt, verifyMaxTokens)
	if err != nil {
		slog.Warn("website judge failed, accepting", "url", websiteURL, "error", err)
		return Decision{Accepted: true, Reason: "judge unavailable"}
	}
	if strings.Contains(strings.ToUpper(answer), "YES") {
		return Decision{Accepted: true, Reason: "judge accepted"}
	}
	return Decision{Accepted: false, Reason: "judge rejected"}
}

// VerifyFacebook decides whether the URL is the company's own social page.
// Unlike websites, every failure mode rejects: attaching a stranger's page
// is worse than attaching none.
func (v *Verifier) VerifyFacebook(ctx context.Context, company models.Company, pageURL string) Decision {
	if v.Judge == nil {
		return Decision{Accepted: true, Reason: "no judge configured"}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	page, status, err := v.Fetcher.FetchPage(fetchCtx, pageURL)
	cancel()
	if err != nil || status != http.StatusOK {
		return Decision{Accepted: false, Reason: "page not inspectable"}
	}

	clip := content.Clip(page.VisibleText, socialScanWindow)
	prompt := fmt.Sprintf(facebookPromptTemplate, company.Name, clip)

	answer, err := v.Judge.Complete(ctx, prompt, verifyMaxTokens)
	if err != nil {
		slog.Warn("social judge failed, rejecting", "url", pageURL, "error", err)
		return Decision{Accepted: false, Reason: "judge unavailable"}
	}
	if strings.Contains(strings.ToUpper(answer), "YES") {
		return Decision{Accepted: true, Reason: "judge accepted"}
	}
	return Decision{Accepted: false, Reason: "judge rejected"}
}
