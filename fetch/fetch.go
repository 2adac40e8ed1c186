// Package fetch retrieves pages over plain HTTP with browser-like headers,
// escalating to a Chrome TLS fingerprint for sites that block default Go
// clients. No JavaScript is ever executed.
package fetch

import (
	"context"
	"strings"

	"github.com/lead-agent/prospect/content"
	"github.com/lead-agent/prospect/models"
)

// Client is the interface both HTTP clients implement.
type Client interface {
	// Name returns the client identifier ("standard" or "chrome").
	Name() string

	// Fetch retrieves the page. Any received HTTP response yields a
	// Result carrying its status code; an error means the request never
	// produced an HTML response (transport failure, non-HTML content).
	Fetch(ctx context.Context, url string) (*Result, error)
}

// Result is the output of a fetch.
type Result struct {
	StatusCode int
	FinalURL   string
	HTML       string
	Title      string
	ClientName string
}

// Page converts the result into the immutable page model used by the
// extraction engine.
func (r *Result) Page() *models.Page {
	return &models.Page{
		URL:         r.FinalURL,
		HTML:        r.HTML,
		VisibleText: content.VisibleText(r.HTML),
	}
}

// isHTMLContentType returns true if the content-type header looks like HTML.
// An empty content-type is given the benefit of the doubt.
func isHTMLContentType(ct string) bool {
	if ct == "" {
		return true
	}
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
