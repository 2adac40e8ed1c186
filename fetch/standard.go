package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/lead-agent/prospect/content"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBody caps response bodies at 10 MB to prevent unbounded memory use.
const maxBody = 10 << 20

// StandardClient fetches with a plain net/http client and browser-like
// headers. It is the first tier: fast, and sufficient for most sites.
type StandardClient struct {
	client *http.Client
}

// NewStandardClient creates a StandardClient.
func NewStandardClient() *StandardClient {
	return &StandardClient{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

func (c *StandardClient) Name() string { return "standard" }

func (c *StandardClient) Fetch(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	ct := resp.Header.Get("Content-Type")
	if !isHTMLContentType(ct) {
		return nil, fmt.Errorf("fetch: non-html content-type %q for %s", ct, url)
	}

	htmlStr := string(body)
	return &Result{
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		HTML:       htmlStr,
		Title:      content.Title(htmlStr),
		ClientName: c.Name(),
	}, nil
}

// setBrowserHeaders applies the header set real browsers send. Compression
// is declined so bodies arrive plain.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Cache-Control", "no-cache")
}
