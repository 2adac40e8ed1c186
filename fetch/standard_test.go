package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStandardClient_BrowserHeadersAndResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != browserUA {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.Header.Get("Accept-Encoding"); got != "identity" {
			t.Errorf("Accept-Encoding = %q, want compression declined", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><head><title>Acme Widgets</title></head><body><p>hi</p></body></html>"))
	}))
	defer srv.Close()

	c := NewStandardClient()
	res, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.StatusCode != 200 {
		t.Errorf("StatusCode = %d", res.StatusCode)
	}
	if res.Title != "Acme Widgets" {
		t.Errorf("Title = %q", res.Title)
	}
	if res.ClientName != "standard" {
		t.Errorf("ClientName = %q", res.ClientName)
	}
}

func TestStandardClient_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/contact", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>contact</body></html>"))
	})

	c := NewStandardClient()
	res, err := c.Fetch(context.Background(), srv.URL+"/old")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.HasSuffix(res.FinalURL, "/contact") {
		t.Errorf("FinalURL = %q, want the redirect target", res.FinalURL)
	}
}

func TestStandardClient_RejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	c := NewStandardClient()
	if _, err := c.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected an error for a PDF response")
	}
}

func TestStandardClient_StatusPassedThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("<html><body>checking your browser</body></html>"))
	}))
	defer srv.Close()

	c := NewStandardClient()
	res, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.StatusCode != 403 {
		t.Errorf("StatusCode = %d, want the wall status surfaced in the result", res.StatusCode)
	}
}
