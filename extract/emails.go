package extract

import (
	"encoding/hex"
	"regexp"
	"strings"
)

// Obfuscation markers: a URL-embedded hex payload and an attribute-embedded
// hex payload, both carrying an XOR-encoded address.
var (
	obfuscatedURLPattern  = regexp.MustCompile(`/cdn-cgi/l/email-protection#([a-f0-9]+)`)
	obfuscatedAttrPattern = regexp.MustCompile(`data-cfemail="([a-f0-9]+)"`)
)

// emailPattern matches standard email-shaped strings in raw markup.
var emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// excludeEmailPatterns drops non-business matches: placeholder domains,
// automated senders, monitoring vendors, image assets and hash-shaped
// local parts. Ordered for auditability; order has no semantic weight.
var excludeEmailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`@example\.`),
	regexp.MustCompile(`@test\.`),
	regexp.MustCompile(`@domain\.`),
	regexp.MustCompile(`@email\.`),
	regexp.MustCompile(`^(noreply|no-reply)`),
	regexp.MustCompile(`@(noreply|no-reply)`),
	regexp.MustCompile(`@(support|info|contact|admin)\.example`),
	regexp.MustCompile(`@sentry\.`),
	regexp.MustCompile(`@sentry-next\.`),
	regexp.MustCompile(`@sentry\.io$`),
	regexp.MustCompile(`@sentry\.wixpress\.com$`),
	regexp.MustCompile(`\.(png|jpg|jpeg|gif|svg|webp|bmp|tiff)$`),
	regexp.MustCompile(`^[a-f0-9]{32}@`),
	regexp.MustCompile(`@2x\.`),
	regexp.MustCompile(`@3x\.`),
	regexp.MustCompile(`^\d+@2x\.`),
	regexp.MustCompile(`^\d+@3x\.`),
	regexp.MustCompile(`_\d+x@\d+x\.`),
	regexp.MustCompile(`@\d+x\.`),
	regexp.MustCompile(`placeholder.*@`),
	regexp.MustCompile(`loader.*@`),
}

// fakePersonalPatterns drops obviously fake personal addresses.
var fakePersonalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^test@`),
	regexp.MustCompile(`^example@`),
	regexp.MustCompile(`^demo@`),
	regexp.MustCompile(`^sample@`),
}

// imageExtensions catches image filenames that slipped past the suffix
// patterns (e.g. followed by a cache-buster).
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}

// hexLocalPattern drops hash-like local parts of 8+ hex characters.
var hexLocalPattern = regexp.MustCompile(`^[a-f0-9]{8,}@`)

// priorityLocalParts rank business mailbox names; earlier entries win over
// later ones, and any entry wins over an unprioritized candidate.
var priorityLocalParts = []string{"info", "contact", "hello", "admin"}

// DecodeObfuscatedEmail decodes a hex payload whose first byte is an XOR
// key for the remaining bytes. Returns false unless the decoded string
// looks like an address (contains "@" and ".", longer than 5 chars).
func DecodeObfuscatedEmail(payload string) (string, bool) {
	raw, err := hex.DecodeString(payload)
	if err != nil || len(raw) < 2 {
		return "", false
	}
	key := raw[0]
	decoded := make([]byte, 0, len(raw)-1)
	for _, b := range raw[1:] {
		decoded = append(decoded, b^key)
	}
	s := string(decoded)
	if strings.Contains(s, "@") && strings.Contains(s, ".") && len(s) > 5 {
		return s, true
	}
	return "", false
}

// ExtractEmails pulls at most one business email address out of raw HTML:
// obfuscated addresses are decoded first, then plain matches are filtered,
// and the merged candidates are ranked. Candidate order is first-seen
// document order so results are reproducible.
func ExtractEmails(rawHTML string) []string {
	seen := make(map[string]bool)
	candidates := []string{}
	add := func(email string) {
		if !seen[email] {
			seen[email] = true
			candidates = append(candidates, email)
		}
	}

	// Decoded addresses bypass the business filters: an owner who bothered
	// to obfuscate an address meant it to be found by humans.
	for _, pattern := range []*regexp.Regexp{obfuscatedURLPattern, obfuscatedAttrPattern} {
		for _, m := range pattern.FindAllStringSubmatch(rawHTML, -1) {
			if decoded, ok := DecodeObfuscatedEmail(m[1]); ok {
				add(strings.ToLower(decoded))
			}
		}
	}

	for _, m := range emailPattern.FindAllString(rawHTML, -1) {
		email := strings.ToLower(strings.TrimSpace(m))
		if isExcludedEmail(email) {
			continue
		}
		add(email)
	}

	if len(candidates) <= 1 {
		return candidates
	}
	for _, keyword := range priorityLocalParts {
		for _, c := range candidates {
			local := strings.SplitN(c, "@", 2)[0]
			if strings.Contains(local, keyword) {
				return []string{c}
			}
		}
	}
	return []string{candidates[0]}
}

// isExcludedEmail reports whether a lowercased plain-text match should be
// dropped as non-business noise.
func isExcludedEmail(email string) bool {
	for _, p := range excludeEmailPatterns {
		if p.MatchString(email) {
			return true
		}
	}
	for _, p := range fakePersonalPatterns {
		if p.MatchString(email) {
			return true
		}
	}
	for _, ext := range imageExtensions {
		if strings.Contains(email, ext) {
			return true
		}
	}
	return hexLocalPattern.MatchString(email)
}
