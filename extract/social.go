package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SocialSite describes one social network's URL shapes so the resolver can
// be exercised against any network with the same structure. The shipped
// default is Facebook.
type SocialSite struct {
	// Domain is the bare host candidates must contain ("facebook.com").
	Domain string

	// MobileHost is collapsed into Domain during normalization.
	MobileHost string

	// CanonicalHost is the host used when rebuilding the final URL.
	CanonicalHost string

	// ShareMarker excludes share-widget hrefs at collection time.
	ShareMarker string

	// GenericMarkers exclude non-page candidates (share endpoints,
	// tracking pixels, plugin embeds, auth dialogs, directory listings).
	GenericMarkers []string

	// ReservedNames are path segments that can never be a page name.
	ReservedNames []string

	// DirectoryPrefix rejects directory-listing segments ("pages...").
	DirectoryPrefix string

	// URLPattern scans raw markup for the network's URL shape.
	URLPattern *regexp.Regexp

	// SegmentPattern captures the page segment during normalization.
	SegmentPattern *regexp.Regexp
}

// Facebook returns the resolver configuration for facebook.com.
func Facebook() *SocialSite {
	return &SocialSite{
		Domain:          "facebook.com",
		MobileHost:      "m.facebook.com",
		CanonicalHost:   "www.facebook.com",
		ShareMarker:     "/sharer",
		GenericMarkers:  []string{"/sharer", "/tr?", "/plugins", "/dialog", "/pages"},
		ReservedNames:   []string{"home", "login", "signup", "help", "about"},
		DirectoryPrefix: "pages",
		URLPattern:      regexp.MustCompile(`(?i)https?://(?:www\.)?(?:m\.)?facebook\.com/[^\s"'<>]+`),
		SegmentPattern:  regexp.MustCompile(`facebook\.com/([^/?]+)`),
	}
}

// Normalize reduces a social URL to its canonical root form:
// query-free, slash-free, mobile host collapsed, subpaths dropped, rebuilt
// on the canonical host. Normalizing an already-normalized URL is a no-op.
func (s *SocialSite) Normalize(raw string) string {
	if raw == "" || !strings.Contains(strings.ToLower(raw), s.Domain) {
		return raw
	}
	u := strings.ReplaceAll(raw, s.MobileHost, s.Domain)
	if m := s.SegmentPattern.FindStringSubmatch(u); m != nil {
		return "https://" + s.CanonicalHost + "/" + m[1]
	}
	return u
}

// ResolveFromPage finds the site's best page URL for this network:
// anchor hrefs first in document order, then a raw-markup scan. The first
// candidate with a plausible page segment wins.
func (s *SocialSite) ResolveFromPage(doc *goquery.Document, rawHTML string) string {
	var candidates []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		lower := strings.ToLower(href)
		if strings.Contains(lower, s.Domain) && !strings.Contains(lower, s.ShareMarker) {
			candidates = append(candidates, href)
		}
	})
	candidates = append(candidates, s.URLPattern.FindAllString(rawHTML, -1)...)

	for _, cand := range candidates {
		if containsAny(strings.ToLower(cand), s.GenericMarkers) {
			continue
		}
		cand = strings.SplitN(cand, "?", 2)[0]
		cand = strings.TrimRight(cand, "/")

		marker := s.Domain + "/"
		idx := strings.LastIndex(cand, marker)
		if idx < 0 {
			continue
		}
		segment := cand[idx+len(marker):]
		lowSeg := strings.ToLower(segment)
		if len(segment) > 3 && !strings.HasPrefix(lowSeg, s.DirectoryPrefix) && !isReservedName(lowSeg, s.ReservedNames) {
			return s.Normalize(cand)
		}
	}
	return ""
}

// isReservedName reports whether the segment equals a reserved word.
func isReservedName(segment string, reserved []string) bool {
	for _, r := range reserved {
		if segment == r {
			return true
		}
	}
	return false
}
