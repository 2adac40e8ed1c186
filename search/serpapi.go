// Package search finds candidate company websites and social pages through
// the SerpAPI Google endpoint.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lead-agent/prospect/models"
)

const (
	defaultBaseURL = "https://serpapi.com/search"

	// maxWebsiteCandidates caps how many distinct sites one search yields.
	maxWebsiteCandidates = 5
)

// directoryDomains are aggregator and directory sites that rank well for
// company names but are never the company's own website.
var directoryDomains = []string{
	"yelp.com", "yellowpages.com", "facebook.com", "linkedin.com",
	"indeed.com", "glassdoor.com", "manta.com", "bbb.org",
	"mapquest.com", "whitepages.com", "superpages.com", "birdeye.com",
	"eyeglassworld.com", "healthgrades.com", "carecredit.com",
}

// Provider searches the web for a company's online presence.
type Provider interface {
	// SearchWebsites returns candidate homepage URLs, best first, collapsed
	// to scheme://host.
	SearchWebsites(ctx context.Context, companyName string) ([]string, error)
	// SearchFacebook returns the first Facebook result for the company, as
	// the search engine reported it, or "" when none ranked.
	SearchFacebook(ctx context.Context, companyName, address string) (string, error)
}

// SerpAPI is a Provider backed by serpapi.com. It uses net/http directly —
// no SDK needed for two GET endpoints.
type SerpAPI struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSerpAPI creates a SerpAPI provider. Pass nil to use a default client
// with a 15 second timeout.
func NewSerpAPI(apiKey string, httpClient *http.Client) *SerpAPI {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &SerpAPI{apiKey: apiKey, baseURL: defaultBaseURL, httpClient: httpClient}
}

// searchResponse is the minimal SerpAPI payload we consume.
type searchResponse struct {
	OrganicResults []struct {
		Link string `json:"link"`
	} `json:"organic_results"`
}

// searchErrorResponse captures an API error from SerpAPI.
type searchErrorResponse struct {
	Error string `json:"error"`
}

// SearchWebsites queries for the exact company name and returns up to five
// distinct sites, directories filtered out and every link collapsed to its
// scheme://host origin.
func (s *SerpAPI) SearchWebsites(ctx context.Context, companyName string) ([]string, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", `"`+companyName+`"`)
	params.Set("num", "10")

	resp, err := s.doSearch(ctx, params)
	if err != nil {
		return nil, err
	}

	sites := []string{}
	seen := make(map[string]bool)
	for _, r := range resp.OrganicResults {
		if r.Link == "" || isDirectoryLink(r.Link) {
			continue
		}
		u, err := url.Parse(r.Link)
		if err != nil || u.Scheme == "" || u.Host == "" {
			continue
		}
		origin := u.Scheme + "://" + u.Host
		if seen[origin] {
			continue
		}
		seen[origin] = true
		sites = append(sites, origin)
		if len(sites) == maxWebsiteCandidates {
			break
		}
	}
	return sites, nil
}

// SearchFacebook queries for the company's Facebook page, scoping the search
// to facebook.com page paths and anchoring it with the street part of the
// address when one is known.
func (s *SerpAPI) SearchFacebook(ctx context.Context, companyName, address string) (string, error) {
	compact := strings.ReplaceAll(companyName, " ", "")
	query := fmt.Sprintf(`"%s" site:facebook.com/pages OR site:facebook.com/%s`, companyName, compact)
	if address != "" {
		query += " " + strings.SplitN(address, ",", 2)[0]
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", "5")

	resp, err := s.doSearch(ctx, params)
	if err != nil {
		return "", err
	}
	for _, r := range resp.OrganicResults {
		if strings.Contains(strings.ToLower(r.Link), "facebook.com") {
			return r.Link, nil
		}
	}
	return "", nil
}

// doSearch performs one SerpAPI request and decodes the payload.
func (s *SerpAPI) doSearch(ctx context.Context, params url.Values) (*searchResponse, error) {
	params.Set("api_key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, models.NewProfileError(models.ErrCodeSearchFailed, "search request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewProfileError(models.ErrCodeSearchFailed, "failed to read search response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifySearchError(resp.StatusCode, body)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, models.NewProfileError(models.ErrCodeSearchFailed, "failed to parse search response", err)
	}
	return &sr, nil
}

// classifySearchError turns a non-200 SerpAPI reply into a ProfileError.
func classifySearchError(statusCode int, body []byte) *models.ProfileError {
	var errResp searchErrorResponse
	msg := "search API error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		msg = errResp.Error
	}
	return models.NewProfileError(models.ErrCodeSearchFailed, fmt.Sprintf("search API returned %d: %s", statusCode, msg), nil)
}

// isDirectoryLink reports whether the link points at a known directory site.
func isDirectoryLink(link string) bool {
	lower := strings.ToLower(link)
	for _, d := range directoryDomains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}
