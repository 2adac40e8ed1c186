package extract

import (
	"context"
	"testing"

	"github.com/lead-agent/prospect/models"
)

func TestSocialSite_Normalize(t *testing.T) {
	fb := Facebook()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"mobile host with query", "https://m.facebook.com/somepage?ref=123&foo=bar", "https://www.facebook.com/somepage"},
		{"subpath collapsed", "https://www.facebook.com/acmewidgets/about", "https://www.facebook.com/acmewidgets"},
		{"already canonical", "https://www.facebook.com/acmewidgets", "https://www.facebook.com/acmewidgets"},
		{"segment case kept", "https://facebook.com/AcmeWidgets", "https://www.facebook.com/AcmeWidgets"},
		{"other site untouched", "https://twitter.com/acme", "https://twitter.com/acme"},
		{"bare host untouched", "https://facebook.com/", "https://facebook.com/"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := fb.Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSocialSite_Normalize_Idempotent(t *testing.T) {
	fb := Facebook()
	once := fb.Normalize("https://m.facebook.com/somepage?ref=123&foo=bar")
	twice := fb.Normalize(once)
	if once != twice {
		t.Errorf("second pass changed the link: %q then %q", once, twice)
	}
}

func TestSocialSite_ResolveFromPage_AnchorCanonicalized(t *testing.T) {
	raw := `<html><body><a href="https://m.facebook.com/AcmeCo?ref=page_internal">Find us</a></body></html>`

	got := Facebook().ResolveFromPage(parseDoc(t, raw), raw)
	if got != "https://www.facebook.com/AcmeCo" {
		t.Errorf("resolved %q, want canonical page link", got)
	}
}

func TestSocialSite_ResolveFromPage_SkipsShareAndTracking(t *testing.T) {
	raw := `<html><body>
<a href="https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Facme.example">Share</a>
<script>fbq.load("https://www.facebook.com/tr?id=99188");</script>
</body></html>`

	if got := Facebook().ResolveFromPage(parseDoc(t, raw), raw); got != "" {
		t.Errorf("resolved %q, want nothing from share and pixel links", got)
	}
}

func TestSocialSite_ResolveFromPage_SkipsImplausibleSegments(t *testing.T) {
	raw := `<html><body>
<a href="https://www.facebook.com/abc">Too short</a>
<a href="https://www.facebook.com/login">Reserved</a>
<a href="https://www.facebook.com/pages/Acme-Co/104460919campaign">Directory</a>
</body></html>`

	if got := Facebook().ResolveFromPage(parseDoc(t, raw), raw); got != "" {
		t.Errorf("resolved %q, want nothing", got)
	}
}

func TestSocialSite_ResolveFromPage_RawScriptScan(t *testing.T) {
	// No anchor anywhere; the page link only appears inside script text.
	raw := `<html><body><script>var social = {fb: "https://facebook.com/acmeco"};</script></body></html>`

	got := Facebook().ResolveFromPage(parseDoc(t, raw), raw)
	if got != "https://www.facebook.com/acmeco" {
		t.Errorf("resolved %q, want link recovered from markup", got)
	}
}

func TestSocialSite_ResolveFromPage_FirstAnchorWins(t *testing.T) {
	raw := `<html><body>
<a href="https://www.facebook.com/first-co">One</a>
<a href="https://www.facebook.com/second-co">Two</a>
</body></html>`

	got := Facebook().ResolveFromPage(parseDoc(t, raw), raw)
	if got != "https://www.facebook.com/first-co" {
		t.Errorf("resolved %q, want the first candidate", got)
	}
}

func TestEngine_Extract_SocialURL(t *testing.T) {
	engine := NewEngine(&fakeFetcher{})
	page := &models.Page{
		URL:  "https://acme.example",
		HTML: `<html><body><a href="https://m.facebook.com/AcmeCo?ref=hp">Facebook</a></body></html>`,
	}

	got := engine.Extract(context.Background(), page, models.Company{Name: "Acme"})
	if got.SocialURL != "https://www.facebook.com/AcmeCo" {
		t.Errorf("SocialURL = %q, want canonical page link", got.SocialURL)
	}
}
