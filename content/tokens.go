package content

import "unicode/utf8"

// EstimateTokens provides a fast token count estimate without importing a
// tokenizer. Heuristic: utf8 rune count / 3 — a middle ground between
// English (~4 chars/token) and CJK (~1.5 chars/token) that slightly
// over-estimates, which is the safe direction for budget decisions.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	est := n / 3
	if est < 1 {
		return 1
	}
	return est
}

// Clip truncates text to at most max runes, preserving valid UTF-8. Used to
// bound verification snippets and owner-extraction prompt content.
func Clip(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max])
}
