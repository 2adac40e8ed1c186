package extract

import (
	"context"
	"testing"

	"github.com/lead-agent/prospect/models"
)

func TestEngine_Extract_FullPage(t *testing.T) {
	engine := NewEngine(&fakeFetcher{})
	page := &models.Page{
		URL: "https://acme.example",
		HTML: `<html><head><title>Acme Widgets</title></head><body>
<header><img src="/static/logo.png" alt="Acme Widgets logo"></header>
<p>Write to <a href="mailto:info@acme.example">info@acme.example</a></p>
` + strictContactForm + `
<a href="https://www.facebook.com/AcmeWidgets">Facebook</a>
</body></html>`,
	}

	got := engine.Extract(context.Background(), page, models.Company{Name: "Acme Widgets"})

	if len(got.Emails) != 1 || got.Emails[0] != "info@acme.example" {
		t.Errorf("Emails = %v, want the info address", got.Emails)
	}
	if got.ContactFormURL != page.URL {
		t.Errorf("ContactFormURL = %q, want the homepage", got.ContactFormURL)
	}
	if got.SocialURL != "https://www.facebook.com/AcmeWidgets" {
		t.Errorf("SocialURL = %q", got.SocialURL)
	}
	if got.LogoURL != "https://acme.example/static/logo.png" {
		t.Errorf("LogoURL = %q", got.LogoURL)
	}
}

func TestEngine_Extract_NilPage(t *testing.T) {
	engine := NewEngine(nil)

	got := engine.Extract(context.Background(), nil, models.Company{Name: "Acme"})
	if got.Emails == nil || len(got.Emails) != 0 {
		t.Errorf("Emails = %#v, want empty non-nil slice", got.Emails)
	}
	if got.ContactFormURL != "" || got.SocialURL != "" || got.LogoURL != "" {
		t.Errorf("unexpected fields on nil page: %+v", got)
	}
}
