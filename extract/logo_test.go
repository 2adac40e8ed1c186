package extract

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseRoot(t *testing.T, raw string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return root
}

func TestLocateLogo_AltMatch(t *testing.T) {
	raw := `<html><body><img alt="Acme Logo" src="/img/acme.png"></body></html>`

	got := LocateLogo(parseRoot(t, raw), "https://acme.example")
	if got != "https://acme.example/img/acme.png" {
		t.Errorf("logo = %q, want resolved alt match", got)
	}
}

func TestLocateLogo_RelativeSrcResolved(t *testing.T) {
	raw := `<html><body><img src="/assets/logo.png"></body></html>`

	got := LocateLogo(parseRoot(t, raw), "https://example.com/about")
	if got != "https://example.com/assets/logo.png" {
		t.Errorf("logo = %q, want src resolved against the page", got)
	}
}

func TestLocateLogo_AbsoluteSrcKept(t *testing.T) {
	raw := `<html><body><img alt="Logo" src="https://cdn.acme.example/brand.svg"></body></html>`

	got := LocateLogo(parseRoot(t, raw), "https://acme.example")
	if got != "https://cdn.acme.example/brand.svg" {
		t.Errorf("logo = %q, want absolute src untouched", got)
	}
}

func TestLocateLogo_HeaderFallback(t *testing.T) {
	raw := `<html><body><header><img src="/banner.png"></header></body></html>`

	got := LocateLogo(parseRoot(t, raw), "https://acme.example")
	if got != "https://acme.example/banner.png" {
		t.Errorf("logo = %q, want the header image", got)
	}
}

func TestLocateLogo_RuleOrderBeatsDocumentOrder(t *testing.T) {
	// The header image appears first in the document, but the alt-marked
	// image matches an earlier rule.
	raw := `<html><body>
<header><img src="/banner.png"></header>
<footer><img alt="Site Logo" src="/logo-footer.png"></footer>
</body></html>`

	got := LocateLogo(parseRoot(t, raw), "https://acme.example")
	if got != "https://acme.example/logo-footer.png" {
		t.Errorf("logo = %q, want the alt-marked image", got)
	}
}

func TestLocateLogo_EmptySrcFallsThrough(t *testing.T) {
	raw := `<html><body>
<img alt="logo">
<div class="logo"><img src="/l.png"></div>
</body></html>`

	got := LocateLogo(parseRoot(t, raw), "https://acme.example")
	if got != "https://acme.example/l.png" {
		t.Errorf("logo = %q, want the next rule's image", got)
	}
}

func TestLocateLogo_Absent(t *testing.T) {
	raw := `<html><body><p>No images here.</p></body></html>`

	if got := LocateLogo(parseRoot(t, raw), "https://acme.example"); got != "" {
		t.Errorf("logo = %q, want empty", got)
	}
}

func TestResolveImageURL(t *testing.T) {
	cases := []struct {
		name string
		src  string
		page string
		want string
	}{
		{"root relative", "/assets/logo.png", "https://example.com/about", "https://example.com/assets/logo.png"},
		{"document relative", "assets/logo.png", "https://example.com/shop/", "https://example.com/shop/assets/logo.png"},
		{"protocol relative", "//cdn.example.com/logo.png", "https://example.com", "https://cdn.example.com/logo.png"},
		{"absolute kept", "http://cdn.example.com/logo.png", "https://example.com", "http://cdn.example.com/logo.png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveImageURL(tc.src, tc.page); got != tc.want {
				t.Errorf("resolveImageURL(%q, %q) = %q, want %q", tc.src, tc.page, got, tc.want)
			}
		})
	}
}
