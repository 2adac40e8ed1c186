package content

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minArticleLength is the minimum TextContent length (in characters) for
// readability output to be considered valid. Below this threshold we assume
// the algorithm failed to locate the main content.
const minArticleLength = 50

// MainContent runs the Mozilla Readability algorithm on rawHTML and returns
// the main-content HTML. The second return reports whether readability
// produced usable output; on false the caller should fall back to the raw
// page text.
func MainContent(rawHTML, sourceURL string) (string, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("content: invalid source URL for readability",
			"url", sourceURL, "error", err,
		)
		return "", false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Debug("content: readability extraction failed",
			"url", sourceURL, "error", err,
		)
		return "", false
	}

	if len(strings.TrimSpace(article.TextContent)) < minArticleLength {
		return "", false
	}

	return article.Content, true
}
