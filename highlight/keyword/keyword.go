// Package keyword implements blocked-keyword matching for post text.
//
// A keyword entry is either a literal substring, or a regular expression
// wrapped in slashes ("/^mega.*thread$/"). All matching is case-insensitive.
package keyword

import (
	"log/slog"
	"regexp"
	"strings"
)

// Normalize trims and lower-cases a raw keyword entry.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// PostText builds the haystack to match against: lower-cased title and body
// joined by a single space, trimmed. A missing body contributes an empty
// string.
func PostText(title, body string) string {
	return strings.TrimSpace(strings.ToLower(title) + " " + strings.ToLower(body))
}

// MatchBlocked returns the subset of keywords which match text, normalized,
// in input order. An entry which fails to compile as a regex is skipped and
// logged rather than aborting the whole match.
func MatchBlocked(keywords []string, text string) []string {
	var matches []string
	for _, raw := range keywords {
		kw := Normalize(raw)
		if kw == "" {
			continue
		}
		var re *regexp.Regexp
		var err error
		if strings.HasPrefix(kw, "/") && strings.HasSuffix(kw, "/") && len(kw) > 2 {
			re, err = regexp.Compile("(?i)" + kw[1:len(kw)-1])
			if err != nil {
				slog.Warn("invalid regex blocked keyword, skipping", "keyword", kw)
				continue
			}
		} else {
			re, err = regexp.Compile("(?i)" + regexp.QuoteMeta(kw))
			if err != nil {
				// QuoteMeta output always compiles; keep the guard anyway
				slog.Warn("invalid literal blocked keyword, skipping", "keyword", kw)
				continue
			}
		}
		if re.MatchString(text) {
			matches = append(matches, kw)
		}
	}
	return matches
}
