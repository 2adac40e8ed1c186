package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lead-agent/prospect/content"
	"github.com/lead-agent/prospect/models"
)

const (
	// ownerContentBudget caps how much page content the judge sees.
	ownerContentBudget = 3000

	ownerMaxTokens = 300

	// noOwnerSentinel is what the judge answers when the page names nobody.
	noOwnerSentinel = "NO_OWNER_INFO_FOUND"
)

const ownerPrompt = `Below is the main content of a company's website, converted to markdown.

%s

Identify the owner, founder, or principal of this business. Reply with one
short line naming them, their role, and any contact details that are clearly
theirs. If the content does not name an owner or founder, reply with exactly
NO_OWNER_INFO_FOUND.`

// extractOwnerInfo asks the judge to pull owner details out of the page's
// readable content. The readability pass keeps navigation and boilerplate
// out of the prompt; when it finds no article the raw visible text stands
// in. Returns "" when nothing credible was named.
func (p *Pipeline) extractOwnerInfo(ctx context.Context, page *models.Page) string {
	var text string
	if article, ok := content.MainContent(page.HTML, page.URL); ok {
		md, err := content.ToMarkdown(p.conv, article, page.URL)
		if err != nil {
			slog.Warn("markdown conversion failed", "url", page.URL, "error", err)
		} else {
			text = md
		}
	}
	if text == "" {
		text = page.VisibleText
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}

	prompt := fmt.Sprintf(ownerPrompt, content.Clip(text, ownerContentBudget))
	slog.Debug("owner prompt built", "url", page.URL, "tokens", content.EstimateTokens(prompt))

	answer, err := p.judge.Complete(ctx, prompt, ownerMaxTokens)
	if err != nil {
		slog.Warn("owner extraction failed", "url", page.URL, "error", err)
		return ""
	}
	if strings.Contains(answer, noOwnerSentinel) {
		return ""
	}
	return strings.TrimSpace(answer)
}
