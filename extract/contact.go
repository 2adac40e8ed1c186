package extract

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/lead-agent/prospect/models"
)

// The classifier's keyword and path tables are package-level and ordered:
// the tier protocol depends on scan order, so none of these may ever be
// stored in a map.

// contactPagePaths are dedicated contact pages probed in priority order
// (Tier 0). The first path that exists and passes detection wins.
var contactPagePaths = []string{
	"/contact-us", "/contact", "/contact.html", "/contact.htm", "/contact.php",
	"/contact_us", "/get-in-touch", "/reach-us", "/hours-location", "/location-hours",
}

// modalTriggerPhrases label interactive elements that open contact modals.
var modalTriggerPhrases = []string{
	"send message", "contact us", "get in touch", "send inquiry",
	"message us", "contact form", "reach out", "send email",
}

// formServiceMarkers are embedded form-service fingerprints searched in the
// raw markup once a modal trigger was seen.
var formServiceMarkers = []string{"contact-form", "message-form", "inquiry-form"}

// Form-scan vocabulary (Tier 1b).
var (
	formSkipWords      = []string{"error!", "close", "login", "sign in", "password"}
	contactFormWords   = []string{"contact", "message", "inquiry", "question", "feedback"}
	contactActionWords = []string{"contact", "message", "inquiry", "send"}
	appointmentWords   = []string{"appointment", "schedule", "book", "patient"}
)

// appointmentButtonPhrases label appointment-request buttons (Tier 1c).
var appointmentButtonPhrases = []string{
	"request appointment", "book appointment", "schedule appointment",
	"request an appointment", "book an appointment", "schedule an appointment",
}

// CMS form-plugin fingerprints (Tier 1d).
var (
	scriptPluginMarkers = []string{"gform", "gravity", "gravityforms"}
	markupPluginMarkers = []string{"wpcf7", "contact-form-7", "contact-form"}
)

// contactClassKeywords flag lead/contact form containers by class (Tier 1e).
var contactClassKeywords = []string{
	"contact-us", "form__container", "leadform", "contact form", "pleform", "gform", "wpcf7",
}

// formEmbedServices are third-party form hosts for iframe embeds (Tier 1f).
var formEmbedServices = []string{"typeform", "jotform", "wufoo", "google.com/forms", "formstack"}

// contactLinkKeywords flag contact-page links (Tier 1g).
var contactLinkKeywords = []string{"contact", "get-in-touch", "reach-us"}

var (
	hiddenStylePattern = regexp.MustCompile(`(?i)display.*none`)
	modalClassPattern  = regexp.MustCompile(`(?i)modal|popup|overlay|dialog`)
)

// probeTimeout bounds each dedicated-page probe; a slow path must not eat
// the whole extraction budget.
const probeTimeout = 10 * time.Second

// locateContactSurface runs the tiered contact search: dedicated contact
// pages first (fetched through the collaborator, 200s only), then the
// homepage itself. The first qualifying page's URL is the locator.
func (e *Engine) locateContactSurface(ctx context.Context, doc *goquery.Document, page *models.Page) string {
	if e.Fetcher != nil {
		base := strings.TrimRight(page.URL, "/")
		for _, path := range contactPagePaths {
			target := base + path
			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			sub, status, err := e.Fetcher.FetchPage(probeCtx, target)
			cancel()
			if err != nil || status != http.StatusOK {
				continue
			}
			subDoc, err := goquery.NewDocumentFromReader(strings.NewReader(sub.HTML))
			if err != nil {
				continue
			}
			if loc := detectContactSurface(subDoc, sub.HTML, target); loc != "" {
				slog.Debug("contact surface on dedicated page", "url", target)
				return loc
			}
		}
	}
	return detectContactSurface(doc, page.HTML, page.URL)
}

// detectContactSurface applies the Tier-1 rules to one page, in strict
// sub-order. It returns the locator URL (normally the page itself) or ""
// when no rule matched.
func detectContactSurface(doc *goquery.Document, rawHTML, currentURL string) string {
	lowerHTML := strings.ToLower(rawHTML)

	// a. Modal/popup forms: a trigger element plus either a hidden or
	// modal-classed container holding form elements, or a known embedded
	// form service in the page source.
	if hasTriggerText(doc, modalTriggerPhrases) {
		if hiddenContainerHasForm(doc) {
			return currentURL
		}
		if containsAny(lowerHTML, formServiceMarkers) {
			return currentURL
		}
	}

	// b. Real HTML forms, including the appointment-form fallback.
	if scanForms(doc) {
		return currentURL
	}

	// c. Appointment-request buttons.
	if hasTriggerText(doc, appointmentButtonPhrases) {
		return currentURL
	}

	// d. CMS form-plugin signatures in scripts or raw markup.
	if hasPluginSignature(doc, lowerHTML) {
		return currentURL
	}

	// e. Contact-classed containers.
	if hasContactClassedContainer(doc) {
		return currentURL
	}

	// f. Third-party form embeds.
	if hasFormEmbed(doc) {
		return currentURL
	}

	// g. Contact-labeled links pointing at a form.
	if href := contactFormLink(doc); href != "" {
		if strings.HasPrefix(href, "http") {
			return href
		}
		return currentURL
	}

	return ""
}

// hasTriggerText reports whether any interactive element's own label
// contains one of the phrases. Only direct text children are considered so
// a page-wide wrapper div cannot match on behalf of its descendants.
func hasTriggerText(doc *goquery.Document, phrases []string) bool {
	found := false
	doc.Find("button, a, div, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := strings.ToLower(directText(s))
		if label == "" {
			return true
		}
		if containsAny(label, phrases) {
			found = true
			return false
		}
		return true
	})
	return found
}

// directText returns the text of the element's immediate text children,
// ignoring nested elements.
func directText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// hiddenContainerHasForm looks for containers that are invisible until a
// trigger fires — inline display:none styles or modal/popup classes — and
// reports whether any of them holds form elements.
func hiddenContainerHasForm(doc *goquery.Document) bool {
	found := false
	doc.Find("div[style], section[style]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !hiddenStylePattern.MatchString(s.AttrOr("style", "")) {
			return true
		}
		if s.Find("form, input, textarea").Length() > 0 {
			found = true
			return false
		}
		return true
	})
	if found {
		return true
	}
	doc.Find("div[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !modalClassPattern.MatchString(s.AttrOr("class", "")) {
			return true
		}
		if s.Find("form, input, textarea").Length() > 0 {
			found = true
			return false
		}
		return true
	})
	return found
}

// scanForms applies the strict form heuristics to every <form> on the page.
// Appointment-flavored forms qualify only as a fallback when no contact
// form did.
func scanForms(doc *goquery.Document) bool {
	qualified := false
	appointmentSeen := false

	doc.Find("form").EachWithBreak(func(_ int, form *goquery.Selection) bool {
		formText := strings.ToLower(form.Text())
		inputs := form.Find("input, textarea, select")

		// Too small to be a contact form.
		if inputs.Length() < 2 {
			return true
		}
		// Error dialogs, login forms.
		if containsAny(formText, formSkipWords) {
			return true
		}
		// Search forms.
		if strings.Contains(formText, "search") && inputs.Length() <= 2 {
			return true
		}

		if containsAny(formText, contactFormWords) && inputs.Length() >= 3 {
			qualified = true
			return false
		}

		hasName, hasEmail, hasMessage := fieldSignals(inputs)
		if hasName && hasEmail && hasMessage && inputs.Length() >= 3 {
			qualified = true
			return false
		}

		if action := strings.ToLower(form.AttrOr("action", "")); action != "" && containsAny(action, contactActionWords) {
			if inputs.Length() >= 3 && (hasEmail || hasMessage) {
				qualified = true
				return false
			}
		}

		if containsAny(formText, appointmentWords) {
			appointmentSeen = true
		}
		return true
	})

	return qualified || appointmentSeen
}

// fieldSignals inspects field names, types and placeholders for the three
// signals of a contact form: a name field, an email field and a
// message/comment field. A textarea counts as a message field.
func fieldSignals(inputs *goquery.Selection) (hasName, hasEmail, hasMessage bool) {
	inputs.Each(func(_ int, inp *goquery.Selection) {
		name := strings.ToLower(inp.AttrOr("name", ""))
		typ := strings.ToLower(inp.AttrOr("type", ""))
		placeholder := strings.ToLower(inp.AttrOr("placeholder", ""))

		if strings.Contains(name, "name") || strings.Contains(placeholder, "name") {
			hasName = true
		}
		if strings.Contains(name, "email") || typ == "email" || strings.Contains(placeholder, "email") {
			hasEmail = true
		}
		if strings.Contains(name, "message") || strings.Contains(name, "comment") ||
			strings.Contains(placeholder, "message") || strings.Contains(placeholder, "comment") ||
			inp.Is("textarea") {
			hasMessage = true
		}
	})
	return
}

// hasPluginSignature checks script bodies for form-plugin code and the raw
// markup for contact-form plugin classes.
func hasPluginSignature(doc *goquery.Document, lowerHTML string) bool {
	found := false
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if containsAny(strings.ToLower(s.Text()), scriptPluginMarkers) {
			found = true
			return false
		}
		return true
	})
	if found {
		return true
	}
	return containsAny(lowerHTML, markupPluginMarkers)
}

// hasContactClassedContainer reports whether any div's class list carries a
// contact/lead-form keyword.
func hasContactClassedContainer(doc *goquery.Document) bool {
	found := false
	doc.Find("div[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if containsAny(strings.ToLower(s.AttrOr("class", "")), contactClassKeywords) {
			found = true
			return false
		}
		return true
	})
	return found
}

// hasFormEmbed reports whether the page embeds a known third-party form
// service in an iframe.
func hasFormEmbed(doc *goquery.Document) bool {
	found := false
	doc.Find("iframe").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if containsAny(strings.ToLower(s.AttrOr("src", "")), formEmbedServices) {
			found = true
			return false
		}
		return true
	})
	return found
}

// contactFormLink finds an anchor labeled as a contact form: contact-ish
// keywords in its href or text, "form" in its href or text, and no
// appointment flavor. Returns the href as authored, or "".
func contactFormLink(doc *goquery.Document) string {
	var result string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		lowerHref := strings.ToLower(href)
		lowerText := strings.ToLower(a.Text())

		for _, word := range appointmentWords {
			if strings.Contains(lowerHref, word) || strings.Contains(lowerText, word) {
				return true
			}
		}
		if !containsAny(lowerHref, contactLinkKeywords) && !containsAny(lowerText, contactLinkKeywords) {
			return true
		}
		if !strings.Contains(lowerHref, "form") && !strings.Contains(lowerText, "form") {
			return true
		}
		result = href
		return false
	})
	return result
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
