package parser

import (
	"regexp"
	"strings"
)

var newlineRunRe = regexp.MustCompile(`\n\s*`)

// Normalize collapses a pretty-printed WKT into the single-line form the
// extraction patterns expect. The stored wkt keeps the source text; only
// parsing works on the normalized form.
func Normalize(wkt string) string {
	out := newlineRunRe.ReplaceAllString(wkt, " ")
	out = strings.ReplaceAll(out, "] ]", "]]")
	return strings.TrimSpace(out)
}

// SplitCorpus splits a batch of WKT texts separated by blank lines into
// individual entries, dropping empty blocks.
func SplitCorpus(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
