package selector

import (
	"regexp"
	"strings"
)

const minKeywordLen = 3

var (
	attrValueRe  = regexp.MustCompile(`\[(?:data-testid|id|class|aria-label)=["']([^"']*)["']\]`)
	attrSuffixRe = regexp.MustCompile(`[-_](Facet|facet|Dropdown|dropdown|Button|button)`)
	nonAlnumRe   = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// Structural noise that never identifies an element on its own.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {},
	"data": {}, "testid": {}, "aria": {}, "label": {}, "class": {}, "role": {},
	"button": {}, "input": {}, "span": {}, "div": {},
}

// Query is a description prepared for fuzzy matching.
type Query struct {
	Raw        string
	Normalized Normalized
	// Text is the description text after locator syntax was peeled off.
	Text     string
	Keywords []string
	// Clean is Keywords joined by single spaces.
	Clean string
}

// ParseQuery normalizes a description and extracts its keyword set.
func ParseQuery(description string) Query {
	n := Normalize(description)

	text := n.Text
	if m := attrValueRe.FindStringSubmatch(text); m != nil {
		text = attrSuffixRe.ReplaceAllString(m[1], "")
	}

	keywords := Keywords(text)

	return Query{
		Raw:        description,
		Normalized: n,
		Text:       text,
		Keywords:   keywords,
		Clean:      strings.Join(keywords, " "),
	}
}

// Keywords lowercases s, splits it on non-alphanumerics and drops short
// tokens and stop words.
func Keywords(s string) []string {
	fields := strings.Fields(nonAlnumRe.ReplaceAllString(strings.ToLower(s), " "))

	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < minKeywordLen {
			continue
		}

		if _, stop := stopWords[f]; stop {
			continue
		}

		keywords = append(keywords, f)
	}

	return keywords
}
