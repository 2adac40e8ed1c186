package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/lead-agent/prospect/models"
)

type fakePage struct {
	status int
	html   string
}

// fakeFetcher serves canned pages and records every URL it was asked for.
// Unmapped URLs fail the way an unreachable host would.
type fakeFetcher struct {
	pages map[string]fakePage
	calls []string
}

func (f *fakeFetcher) FetchPage(_ context.Context, url string) (*models.Page, int, error) {
	f.calls = append(f.calls, url)
	p, ok := f.pages[url]
	if !ok {
		return nil, 0, errors.New("unreachable")
	}
	return &models.Page{URL: url, HTML: p.html}, p.status, nil
}

func parseDoc(t *testing.T, rawHTML string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

// A form that qualifies through the name/email/message field signals.
const strictContactForm = `<form>
<input type="text" name="full_name" placeholder="Your name">
<input type="email" name="email">
<input type="text" name="phone">
<textarea name="message"></textarea>
<button type="submit">Send</button>
</form>`

func TestLocateContactSurface_DedicatedPageWins(t *testing.T) {
	contactHTML := "<html><body>" + strictContactForm + "</body></html>"
	fetcher := &fakeFetcher{pages: map[string]fakePage{
		"https://acme.example/contact-us": {status: 200, html: contactHTML},
		"https://acme.example/contact":    {status: 200, html: contactHTML},
	}}
	engine := NewEngine(fetcher)

	home := &models.Page{URL: "https://acme.example/", HTML: contactHTML}
	got := engine.locateContactSurface(context.Background(), parseDoc(t, home.HTML), home)

	if got != "https://acme.example/contact-us" {
		t.Errorf("locator = %q, want the first dedicated page", got)
	}
	if len(fetcher.calls) != 1 {
		t.Errorf("probes after the first hit: %v", fetcher.calls[1:])
	}
}

func TestLocateContactSurface_ProbeNeedsOKAndDetection(t *testing.T) {
	contactHTML := "<html><body>" + strictContactForm + "</body></html>"
	fetcher := &fakeFetcher{pages: map[string]fakePage{
		// Exists but carries nothing form-like.
		"https://acme.example/contact-us": {status: 200, html: "<html><body><p>Our story</p></body></html>"},
		// Would qualify, but the server says it is gone.
		"https://acme.example/contact":      {status: 404, html: contactHTML},
		"https://acme.example/contact.html": {status: 200, html: contactHTML},
	}}
	engine := NewEngine(fetcher)

	home := &models.Page{URL: "https://acme.example", HTML: "<html><body></body></html>"}
	got := engine.locateContactSurface(context.Background(), parseDoc(t, home.HTML), home)

	if got != "https://acme.example/contact.html" {
		t.Errorf("locator = %q, want contact.html", got)
	}
}

func TestEngine_Extract_ContactFallsBackToHomepage(t *testing.T) {
	engine := NewEngine(&fakeFetcher{})
	page := &models.Page{
		URL:  "https://acme.example",
		HTML: "<html><body><h1>Acme</h1>" + strictContactForm + "</body></html>",
	}

	got := engine.Extract(context.Background(), page, models.Company{Name: "Acme"})
	if got.ContactFormURL != page.URL {
		t.Errorf("ContactFormURL = %q, want homepage %q", got.ContactFormURL, page.URL)
	}
}

func TestEngine_Extract_AppointmentFallback(t *testing.T) {
	engine := NewEngine(&fakeFetcher{})
	page := &models.Page{
		URL: "https://clinic.example",
		HTML: `<html><body>
<form><p>Questions? Contact our desk.</p><input name="q1"><input name="q2"></form>
<button>Request an Appointment</button>
</body></html>`,
	}

	// The two-input form is too small to qualify, so the appointment
	// button is what places the surface on the homepage.
	got := engine.Extract(context.Background(), page, models.Company{Name: "Clinic"})
	if got.ContactFormURL != page.URL {
		t.Errorf("ContactFormURL = %q, want homepage %q", got.ContactFormURL, page.URL)
	}
}

func TestEngine_Extract_NoContactSurface(t *testing.T) {
	engine := NewEngine(&fakeFetcher{})
	page := &models.Page{
		URL:  "https://acme.example",
		HTML: "<html><body><h1>Widgets</h1><p>We make widgets.</p></body></html>",
	}

	got := engine.Extract(context.Background(), page, models.Company{Name: "Acme"})
	if got.ContactFormURL != "" {
		t.Errorf("ContactFormURL = %q, want empty", got.ContactFormURL)
	}
}

func TestDetectContactSurface_TwoInputFormNeverQualifies(t *testing.T) {
	raw := `<html><body><form>
<p>Contact our team with questions</p>
<input name="name" type="text">
<input name="email" type="email">
</form></body></html>`

	if got := detectContactSurface(parseDoc(t, raw), raw, "https://acme.example"); got != "" {
		t.Errorf("locator = %q, want empty for a two-input form", got)
	}
}

func TestDetectContactSurface_FormRules(t *testing.T) {
	cases := []struct {
		name string
		html string
		want bool
	}{
		{
			name: "contact words with three inputs",
			html: `<form><p>Send us a message</p><input name="a"><input name="b"><input name="c"></form>`,
			want: true,
		},
		{
			name: "name email message signals",
			html: `<form><input name="full_name"><input type="email" name="reply_to"><textarea name="body"></textarea></form>`,
			want: true,
		},
		{
			name: "action attribute with email field",
			html: `<form action="/send"><input name="a"><input type="email" name="b"><input name="c"></form>`,
			want: true,
		},
		{
			name: "appointment wording as fallback",
			html: `<form><p>Schedule a visit for any patient</p><input name="a"><input name="b"></form>`,
			want: true,
		},
		{
			name: "login form skipped",
			html: `<form><p>Login to send a message</p><input name="user"><input name="pass" type="password"><input name="otp"></form>`,
			want: false,
		},
		{
			name: "small search form skipped",
			html: `<form><label>Search the catalog</label><input name="q"><input type="submit"></form>`,
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := "<html><body>" + tc.html + "</body></html>"
			got := detectContactSurface(parseDoc(t, raw), raw, "https://acme.example")
			if (got != "") != tc.want {
				t.Errorf("locator = %q, want match=%v", got, tc.want)
			}
		})
	}
}

func TestDetectContactSurface_ModalTriggerWithHiddenForm(t *testing.T) {
	raw := `<html><body>
<button>Get in Touch</button>
<div style="display: none;"><form><input name="email"><textarea></textarea></form></div>
</body></html>`

	if got := detectContactSurface(parseDoc(t, raw), raw, "https://acme.example"); got != "https://acme.example" {
		t.Errorf("locator = %q, want the page itself", got)
	}
}

func TestDetectContactSurface_ModalTriggerWithServiceMarker(t *testing.T) {
	raw := `<html><body><span>Message Us</span><script src="/assets/message-form.min.js"></script></body></html>`

	if got := detectContactSurface(parseDoc(t, raw), raw, "https://acme.example"); got != "https://acme.example" {
		t.Errorf("locator = %q, want the page itself", got)
	}
}

func TestDetectContactSurface_TriggerAloneInsufficient(t *testing.T) {
	raw := `<html><body><button>Contact Us</button><p>Call us any time.</p></body></html>`

	if got := detectContactSurface(parseDoc(t, raw), raw, "https://acme.example"); got != "" {
		t.Errorf("locator = %q, want empty without a form behind the trigger", got)
	}
}

func TestDetectContactSurface_NestedTriggerTextIgnored(t *testing.T) {
	// The wrapper div's subtree mentions a trigger phrase, but no
	// interactive element carries it as its own label.
	raw := `<html><body><div id="page">
<p>You can always reach out to our team.</p>
<div style="display:none"><form><input></form></div>
</div></body></html>`

	if got := detectContactSurface(parseDoc(t, raw), raw, "https://acme.example"); got != "" {
		t.Errorf("locator = %q, want empty when only nested text matches", got)
	}
}

func TestDetectContactSurface_PlatformSignatures(t *testing.T) {
	cases := []struct {
		name string
		html string
	}{
		{
			name: "gravity forms script",
			html: `<html><body><script>window.gform_post_render = 1;</script></body></html>`,
		},
		{
			name: "wordpress plugin markup",
			html: `<html><body><div class="wpcf7"><form><input name="a"><input name="b"></form></div></body></html>`,
		},
		{
			name: "lead form container",
			html: `<html><body><div class="leadform-wrapper"><p>Talk to sales</p></div></body></html>`,
		},
		{
			name: "typeform embed",
			html: `<html><body><iframe src="https://acme.typeform.com/to/abc123"></iframe></body></html>`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := detectContactSurface(parseDoc(t, tc.html), tc.html, "https://acme.example")
			if got != "https://acme.example" {
				t.Errorf("locator = %q, want the page itself", got)
			}
		})
	}
}

func TestDetectContactSurface_ContactLinkAbsoluteHref(t *testing.T) {
	// "forms.example" supplies the "form" keyword without spelling the
	// literal plugin marker "contact-form", which would match earlier.
	raw := `<html><body><a href="https://Forms.example/Contact">Write to us</a></body></html>`

	if got := detectContactSurface(parseDoc(t, raw), raw, "https://acme.example"); got != "https://Forms.example/Contact" {
		t.Errorf("locator = %q, want the link target as authored", got)
	}
}

func TestDetectContactSurface_ContactLinkRelativeHref(t *testing.T) {
	raw := `<html><body><a href="/contact#form">Visit our office</a></body></html>`

	if got := detectContactSurface(parseDoc(t, raw), raw, "https://acme.example"); got != "https://acme.example" {
		t.Errorf("locator = %q, want the current page for a relative link", got)
	}
}

func TestDetectContactSurface_AppointmentLinkSkipped(t *testing.T) {
	raw := `<html><body><a href="/patient-contactform">Learn more</a></body></html>`
	if got := detectContactSurface(parseDoc(t, raw), raw, "https://acme.example"); got != "" {
		t.Errorf("locator = %q, want appointment-flavored link ignored", got)
	}

	// The same link without the appointment flavor qualifies.
	raw = `<html><body><a href="/contactform">Learn more</a></body></html>`
	if got := detectContactSurface(parseDoc(t, raw), raw, "https://acme.example"); got != "https://acme.example" {
		t.Errorf("locator = %q, want the current page", got)
	}
}
