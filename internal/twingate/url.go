package twingate

import (
	"strings"
	"unicode"
)

// minURLLength guards against truncated "http://" fragments. Anything
// this short cannot be a usable authentication URL.
const minURLLength = 11

var urlTrailingJunk = ".,)]}\""

// ExtractURL scans text line by line for the first http(s) URL and
// returns it with trailing punctuation trimmed. Deterministic: always the
// first left-to-right qualifying match.
func ExtractURL(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if url, ok := extractURLFromLine(line); ok {
			return url, true
		}
	}
	return "", false
}

// ExtractURLNear looks for a URL anchored to one of the given patterns
// (case-insensitive substring match, in caller priority order), searching
// only the text after the pattern. Lines without a pattern hit fall back
// to an unconstrained scan, so a URL is still found when the daemon's
// phrasing changes.
func ExtractURLNear(text string, patterns []string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		for _, pattern := range patterns {
			if idx := strings.Index(lower, strings.ToLower(pattern)); idx >= 0 {
				if url, ok := extractURLFromLine(line[idx+len(pattern):]); ok {
					return url, true
				}
			}
		}
		if url, ok := extractURLFromLine(line); ok {
			return url, true
		}
	}
	return "", false
}

func extractURLFromLine(line string) (string, bool) {
	start := strings.Index(line, "http")
	if start < 0 {
		return "", false
	}

	rest := line[start:]
	end := strings.IndexFunc(rest, func(r rune) bool {
		return unicode.IsSpace(r) || r == '<' || r == '>'
	})
	if end < 0 {
		end = len(rest)
	}

	url := strings.TrimRight(rest[:end], urlTrailingJunk)
	if len(url) < minURLLength {
		return "", false
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", false
	}
	return url, true
}
