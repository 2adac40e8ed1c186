package extract

import (
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// logoSelectors is the ordered rule table for locating a logo image:
// explicit logo markers first, then common brand/header containers.
var logoSelectors = []string{
	`img[alt*="logo" i]`,
	`img[src*="logo" i]`,
	`img[class*="logo" i]`,
	`.logo img`,
	`#logo img`,
	`header img`,
	`.header img`,
	`.brand img`,
	`.navbar-brand img`,
}

// logoQueries holds the compiled selector table. Compiled once at init;
// cascadia selectors are immutable and goroutine-safe.
var logoQueries []cascadia.Sel

func init() {
	for _, s := range logoSelectors {
		sel, err := cascadia.Parse(s)
		if err != nil {
			continue
		}
		logoQueries = append(logoQueries, sel)
	}
}

// LocateLogo walks the selector table in order and returns the first
// matching image's src resolved to an absolute URL, or "".
func LocateLogo(root *html.Node, pageURL string) string {
	for _, q := range logoQueries {
		n := cascadia.Query(root, q)
		if n == nil {
			continue
		}
		src := nodeAttr(n, "src")
		if src == "" {
			continue
		}
		return resolveImageURL(src, pageURL)
	}
	return ""
}

// resolveImageURL turns an image src into an absolute URL: protocol-relative
// sources get https, anything else non-absolute resolves against the page.
func resolveImageURL(src, pageURL string) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	if strings.HasPrefix(src, "http") {
		return src
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}

// nodeAttr returns the named attribute of an HTML node, or "".
func nodeAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
