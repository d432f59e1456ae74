// Package selector turns locator strings and free-text element descriptions
// into comparable, count-agnostic forms.
package selector

import (
	"fmt"
	"regexp"
	"strings"

	"locator-catalog/internal/entity"
)

var (
	roleAttrRe   = regexp.MustCompile(`\[role=["']([^"']+)["']\]`)
	leadingTagRe = regexp.MustCompile(`^(button|input|a|div|span|tab)(?:[:\[.#>\s]|$)`)
	hasTextRe    = regexp.MustCompile(`:has-text\(["']([^"']+)["']\)`)
	patternRe    = regexp.MustCompile(`:has-text\(/(.+?)\\\(\\d\+\\\)/\)`)
	countRe      = regexp.MustCompile(`\(\d+\)`)
	escapedRe    = regexp.MustCompile(`\\(.)`)
)

const textPrefix = "text="

// Normalized is the result of Normalize.
type Normalized struct {
	// Role is the semantic role or leading tag, empty when none was found.
	Role string
	// Text is the visible text with counters removed.
	Text string
	// Selector is a count-agnostic pattern when HadCount, else the input.
	Selector string
	HadCount bool
}

// Normalize extracts the role and text of a locator or description and, when
// the text carries a "(123)" counter, rewrites it into a pattern that matches
// any future counter value.
func Normalize(s string) Normalized {
	role, roleAttr := DetectRole(s)

	text, _ := TextOf(s)
	hadCount := patternRe.MatchString(s) || HasCount(text)

	n := Normalized{
		Role:     role,
		Text:     StripCount(text),
		Selector: s,
		HadCount: hadCount,
	}

	if hadCount {
		n.Selector = CountAgnostic(role, n.Text, roleAttr)
	}

	return n
}

// TextOf returns the text a locator matches on. found is false when s uses
// none of the known text idioms, in which case s itself is returned.
func TextOf(s string) (text string, found bool) {
	if m := patternRe.FindStringSubmatch(s); m != nil {
		return escapedRe.ReplaceAllString(m[1], "$1"), true
	}

	if m := hasTextRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}

	if strings.HasPrefix(s, textPrefix) {
		return s[len(textPrefix):], true
	}

	return s, false
}

// CountAgnostic builds a ":has-text(/Text\(\d+\)/)" locator qualified by role.
// text is matched literally: regex metacharacters and the "/" delimiter are
// escaped.
func CountAgnostic(role, text string, roleAttr bool) string {
	return Qualify(role, roleAttr, fmt.Sprintf(`:has-text(/%s\(\d+\)/)`, escapePattern(text)))
}

func escapePattern(text string) string {
	return strings.ReplaceAll(regexp.QuoteMeta(text), "/", `\/`)
}

// Qualify prefixes a pseudo-class suffix with a role qualifier. HTML tags
// become type selectors unless roleAttr is set; any other role becomes a
// [role=] attribute.
func Qualify(role string, roleAttr bool, suffix string) string {
	switch {
	case role == "":
		return suffix
	case roleAttr || !isHTMLTag(role):
		return fmt.Sprintf(`[role="%s"]%s`, role, suffix)
	default:
		return role + suffix
	}
}

// HasCount reports whether s contains a "(123)" counter.
func HasCount(s string) bool {
	return countRe.MatchString(s)
}

// StripCount removes every "(123)" counter from s.
func StripCount(s string) string {
	return strings.TrimSpace(countRe.ReplaceAllString(s, ""))
}

// TypeForRole maps a role or tag onto the catalog element type it denotes.
func TypeForRole(role string) entity.ElementType {
	if role == "a" {
		return entity.ElementTypeLink
	}

	return entity.ElementType(role)
}

// DetectRole returns the explicit [role=] annotation of s or, failing that,
// its leading element tag. roleAttr reports which form was found.
func DetectRole(s string) (role string, roleAttr bool) {
	if m := roleAttrRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}

	if m := leadingTagRe.FindStringSubmatch(s); m != nil {
		return m[1], false
	}

	return "", false
}

func isHTMLTag(role string) bool {
	switch role {
	case "button", "input", "a", "div", "span":
		return true
	default:
		return false
	}
}
