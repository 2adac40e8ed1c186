package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/lead-agent/prospect/models"
)

// Dispatcher tries clients in escalation order: the standard client first,
// then the Chrome-fingerprint client when the standard one was blocked.
// A DomainMemory records which client last worked per domain; repeat fetches
// try that tier first and fall back to the full ladder when it goes stale.
type Dispatcher struct {
	clients []Client
	memory  *DomainMemory
}

// NewDispatcher creates a Dispatcher. Clients are tried in slice order.
func NewDispatcher(clients []Client, memory *DomainMemory) *Dispatcher {
	return &Dispatcher{clients: clients, memory: memory}
}

// Fetch retrieves the URL, escalating through clients on transport errors
// and bot-wall statuses. A non-blocked HTTP response (including 404) is
// returned as-is from the first client that produced it.
func (d *Dispatcher) Fetch(ctx context.Context, target string) (*Result, error) {
	domain := extractDomain(target)

	// Check domain memory for a previously successful client.
	if remembered := d.memory.Get(domain); remembered != "" {
		for _, c := range d.clients {
			if c.Name() != remembered {
				continue
			}
			slog.Debug("domain memory hit", "domain", domain, "client", remembered)
			res, err := c.Fetch(ctx, target)
			if err == nil && !isBotWallStatus(res.StatusCode) {
				return res, nil
			}
			if ctx.Err() != nil {
				return res, err
			}
			// Memory entry stopped working; delete it and fall through to
			// the full ladder.
			slog.Info("domain memory stale, running full ladder",
				"domain", domain, "client", remembered, "error", err)
			d.memory.Delete(domain)
			break
		}
	}

	return d.ladder(ctx, target, domain)
}

// ladder tries every client in escalation order and records the winner.
func (d *Dispatcher) ladder(ctx context.Context, target, domain string) (*Result, error) {
	var lastErr error
	var blocked *Result
	for _, c := range d.clients {
		res, err := c.Fetch(ctx, target)
		if err != nil {
			slog.Debug("client failed", "client", c.Name(), "url", target, "error", err)
			lastErr = err
			if ctx.Err() != nil {
				return nil, lastErr
			}
			continue
		}
		if isBotWallStatus(res.StatusCode) {
			slog.Debug("client blocked", "client", c.Name(), "url", target, "status", res.StatusCode)
			blocked = res
			continue
		}
		d.memory.Set(domain, c.Name())
		return res, nil
	}

	// Every tier was blocked: surface the last blocked response so callers
	// can see the status rather than a synthetic error.
	if blocked != nil {
		return blocked, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("fetch: no clients configured")
	}
	return nil, lastErr
}

// FetchPage adapts Fetch to the page-oriented interface the extraction
// engine and verifier consume.
func (d *Dispatcher) FetchPage(ctx context.Context, target string) (*models.Page, int, error) {
	res, err := d.Fetch(ctx, target)
	if err != nil {
		return nil, 0, err
	}
	return res.Page(), res.StatusCode, nil
}

// isBotWallStatus reports whether the status signals bot blocking worth
// escalating past (403 Forbidden, 429 Too Many Requests, 503 behind
// challenge pages). A plain 404 is a real answer, not a wall.
func isBotWallStatus(status int) bool {
	return status == 403 || status == 429 || status == 503
}

// extractDomain parses the hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
