package fetch

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubClient is a scripted tier: it always answers with the same result.
type stubClient struct {
	name   string
	status int
	html   string
	err    error
	calls  int
}

func (s *stubClient) Name() string { return s.name }

func (s *stubClient) Fetch(ctx context.Context, url string) (*Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &Result{
		StatusCode: s.status,
		FinalURL:   url,
		HTML:       s.html,
		ClientName: s.name,
	}, nil
}

func newTestMemory(t *testing.T) *DomainMemory {
	t.Helper()
	dm := NewDomainMemory(time.Hour)
	t.Cleanup(dm.Stop)
	return dm
}

func TestDispatcher_FirstTierWins(t *testing.T) {
	standard := &stubClient{name: "standard", status: 200, html: "<html></html>"}
	chrome := &stubClient{name: "chrome", status: 200}
	mem := newTestMemory(t)
	d := NewDispatcher([]Client{standard, chrome}, mem)

	res, err := d.Fetch(context.Background(), "https://acme.example/contact")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.ClientName != "standard" {
		t.Errorf("ClientName = %q", res.ClientName)
	}
	if chrome.calls != 0 {
		t.Errorf("chrome called %d times, want 0", chrome.calls)
	}
	if got := mem.Get("acme.example"); got != "standard" {
		t.Errorf("memory = %q, want the winning tier recorded", got)
	}
}

func TestDispatcher_EscalatesOnTransportError(t *testing.T) {
	standard := &stubClient{name: "standard", err: errors.New("connection reset")}
	chrome := &stubClient{name: "chrome", status: 200, html: "<html></html>"}
	mem := newTestMemory(t)
	d := NewDispatcher([]Client{standard, chrome}, mem)

	res, err := d.Fetch(context.Background(), "https://acme.example")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.ClientName != "chrome" {
		t.Errorf("ClientName = %q, want the escalated tier", res.ClientName)
	}
	if got := mem.Get("acme.example"); got != "chrome" {
		t.Errorf("memory = %q", got)
	}
}

func TestDispatcher_EscalatesOnBotWall(t *testing.T) {
	for _, status := range []int{403, 429, 503} {
		standard := &stubClient{name: "standard", status: status}
		chrome := &stubClient{name: "chrome", status: 200, html: "<html></html>"}
		d := NewDispatcher([]Client{standard, chrome}, newTestMemory(t))

		res, err := d.Fetch(context.Background(), "https://acme.example")
		if err != nil {
			t.Fatalf("status %d: Fetch: %v", status, err)
		}
		if res.ClientName != "chrome" {
			t.Errorf("status %d: ClientName = %q, want escalation", status, res.ClientName)
		}
	}
}

func TestDispatcher_NotFoundIsAnAnswer(t *testing.T) {
	standard := &stubClient{name: "standard", status: 404}
	chrome := &stubClient{name: "chrome", status: 200}
	d := NewDispatcher([]Client{standard, chrome}, newTestMemory(t))

	res, err := d.Fetch(context.Background(), "https://acme.example/contact-us")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want the 404 passed through", res.StatusCode)
	}
	if chrome.calls != 0 {
		t.Errorf("chrome called %d times: a 404 is not a bot wall", chrome.calls)
	}
}

func TestDispatcher_AllBlockedSurfacesLastStatus(t *testing.T) {
	standard := &stubClient{name: "standard", status: 403}
	chrome := &stubClient{name: "chrome", status: 429}
	d := NewDispatcher([]Client{standard, chrome}, newTestMemory(t))

	res, err := d.Fetch(context.Background(), "https://acme.example")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.StatusCode != 429 {
		t.Errorf("StatusCode = %d, want the last blocked status", res.StatusCode)
	}
}

func TestDispatcher_AllFailedReturnsLastError(t *testing.T) {
	wantErr := errors.New("tls handshake failed")
	standard := &stubClient{name: "standard", err: errors.New("connection refused")}
	chrome := &stubClient{name: "chrome", err: wantErr}
	d := NewDispatcher([]Client{standard, chrome}, newTestMemory(t))

	_, err := d.Fetch(context.Background(), "https://acme.example")
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want the last tier's error", err)
	}
}

func TestDispatcher_StartsAtRememberedTier(t *testing.T) {
	standard := &stubClient{name: "standard", status: 200, html: "<html></html>"}
	chrome := &stubClient{name: "chrome", status: 200, html: "<html></html>"}
	mem := newTestMemory(t)
	mem.Set("acme.example", "chrome")
	d := NewDispatcher([]Client{standard, chrome}, mem)

	res, err := d.Fetch(context.Background(), "https://acme.example/about")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if standard.calls != 0 {
		t.Errorf("standard called %d times, want the remembered tier first", standard.calls)
	}
	if res.ClientName != "chrome" {
		t.Errorf("ClientName = %q", res.ClientName)
	}
}

func TestDispatcher_ForgetsStaleMemory(t *testing.T) {
	standard := &stubClient{name: "standard", status: 200, html: "<html></html>"}
	chrome := &stubClient{name: "chrome", err: errors.New("connection reset")}
	mem := newTestMemory(t)
	mem.Set("acme.example", "chrome")
	d := NewDispatcher([]Client{standard, chrome}, mem)

	res, err := d.Fetch(context.Background(), "https://acme.example")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.ClientName != "standard" {
		t.Errorf("ClientName = %q, want the full ladder after the stale tier", res.ClientName)
	}
	if got := mem.Get("acme.example"); got != "standard" {
		t.Errorf("memory = %q, want the stale entry replaced", got)
	}
}

func TestDispatcher_FetchPage(t *testing.T) {
	standard := &stubClient{
		name:   "standard",
		status: 200,
		html:   "<html><body><p>Visit our shop</p></body></html>",
	}
	d := NewDispatcher([]Client{standard}, newTestMemory(t))

	page, status, err := d.FetchPage(context.Background(), "https://acme.example")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if status != 200 {
		t.Errorf("status = %d", status)
	}
	if page.URL != "https://acme.example" {
		t.Errorf("URL = %q", page.URL)
	}
	if page.VisibleText == "" {
		t.Error("VisibleText is empty, want the body text extracted")
	}
}

func TestDomainMemory_Expiry(t *testing.T) {
	dm := NewDomainMemory(10 * time.Millisecond)
	t.Cleanup(dm.Stop)

	dm.Set("acme.example", "chrome")
	if got := dm.Get("acme.example"); got != "chrome" {
		t.Fatalf("Get = %q before expiry", got)
	}

	time.Sleep(20 * time.Millisecond)
	if got := dm.Get("acme.example"); got != "" {
		t.Errorf("Get = %q after expiry, want forgotten", got)
	}
}
