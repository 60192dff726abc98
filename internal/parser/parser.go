// Package parser extracts a headline and #tags from diary entry text.
package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([\p{L}][\p{L}\p{N}_/-]*)`)

const headlineMax = 80

// Result holds the output of parsing an entry.
type Result struct {
	Headline string
	Tags     []string
	Body     string
}

// Parse extracts the headline and tags from raw entry content.
func Parse(content string) *Result {
	body := strings.TrimSpace(content)
	return &Result{
		Headline: deriveHeadline(body),
		Tags:     extractTags(body),
		Body:     body,
	}
}

// extractTags returns deduplicated, lower-cased inline #tags in order of
// first appearance.
func extractTags(body string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		t := strings.ToLower(m[1])
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// deriveHeadline returns the first non-empty line, shortened to headlineMax runes.
func deriveHeadline(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) <= headlineMax {
			return line
		}
		r := []rune(line)
		return strings.TrimSpace(string(r[:headlineMax-1])) + "…"
	}
	return ""
}
