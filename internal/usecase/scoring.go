package usecase

import (
	"sort"
	"strings"

	"locator-catalog/internal/entity"
	"locator-catalog/internal/selector"
)

const defaultMinScore = 80

// matchQuery is a description prepared for scoring.
type matchQuery struct {
	selector.Query
	role     string
	rawLower string
}

func newMatchQuery(description, roleHint string) matchQuery {
	q := selector.ParseQuery(description)

	role := strings.ToLower(strings.TrimSpace(roleHint))
	if role == "" {
		role = q.Normalized.Role
	}

	return matchQuery{
		Query:    q,
		role:     role,
		rawLower: strings.ToLower(description),
	}
}

type candidate struct {
	name      string
	lowerName string
	entry     entity.ElementEntry
}

func newCandidate(name string, entry entity.ElementEntry) candidate {
	return candidate{name: name, lowerName: strings.ToLower(name), entry: entry}
}

// tierRule is one rung of the name-match ladder. Only the first matching
// rung contributes.
type tierRule struct {
	tag    string
	points int
	match  func(c candidate, q matchQuery) bool
}

// adjustRule is applied on top of the tier score whenever it holds.
type adjustRule struct {
	tag     string
	points  int
	applies func(c candidate, q matchQuery) bool
}

var tierRules = []tierRule{
	{tag: "exact_name", points: 100, match: func(c candidate, q matchQuery) bool {
		return c.lowerName == q.rawLower || (q.Clean != "" && c.lowerName == q.Clean)
	}},
	{tag: "name_prefix", points: 80, match: func(c candidate, q matchQuery) bool {
		return (q.Clean != "" && strings.HasPrefix(c.lowerName, q.Clean)) ||
			anyKeyword(q.Keywords, func(k string) bool { return strings.HasPrefix(c.lowerName, k) })
	}},
	{tag: "name_suffix", points: 70, match: func(c candidate, q matchQuery) bool {
		return (q.Clean != "" && strings.HasSuffix(c.lowerName, q.Clean)) ||
			anyKeyword(q.Keywords, func(k string) bool { return strings.HasSuffix(c.lowerName, k) })
	}},
	{tag: "name_contains_query", points: 60, match: func(c candidate, q matchQuery) bool {
		return q.Clean != "" && strings.Contains(c.lowerName, q.Clean)
	}},
	{tag: "name_contains_keyword", points: 40, match: func(c candidate, q matchQuery) bool {
		return anyKeyword(q.Keywords, func(k string) bool { return strings.Contains(c.lowerName, k) })
	}},
	{tag: "description_keyword", points: 20, match: func(c candidate, q matchQuery) bool {
		desc := strings.ToLower(c.entry.Description)
		return anyKeyword(q.Keywords, func(k string) bool { return strings.Contains(desc, k) })
	}},
}

var adjustRules = []adjustRule{
	{tag: "dropdown_bonus", points: 10, applies: func(c candidate, q matchQuery) bool {
		return (c.entry.Type == entity.ElementTypeAccordion || c.entry.Type == entity.ElementTypeSelect) &&
			strings.Contains(q.rawLower, "dropdown")
	}},
	{tag: "role_bonus", points: 15, applies: func(c candidate, q matchQuery) bool {
		return q.role != "" && c.entry.Type == selector.TypeForRole(q.role)
	}},
	{tag: "id_selector_penalty", points: -30, applies: func(c candidate, _ matchQuery) bool {
		return strings.HasPrefix(c.entry.Selector, "#")
	}},
	{tag: "generic_query_penalty", points: -15, applies: func(c candidate, q matchQuery) bool {
		return q.role == "" && strings.HasPrefix(q.Raw, "text=") &&
			(strings.HasPrefix(c.entry.Selector, "button:") || strings.HasPrefix(c.entry.Selector, "[role="))
	}},
}

type scoredCandidate struct {
	candidate
	score int
	tags  []string
}

func score(c candidate, q matchQuery) scoredCandidate {
	sc := scoredCandidate{candidate: c}

	for _, rule := range tierRules {
		if rule.match(c, q) {
			sc.score = rule.points
			sc.tags = append(sc.tags, rule.tag)

			break
		}
	}

	for _, rule := range adjustRules {
		if rule.applies(c, q) {
			sc.score += rule.points
			sc.tags = append(sc.tags, rule.tag)
		}
	}

	return sc
}

// roleCompatible reports whether an entry may answer a query for role.
// Tabs also accept buttons named like a tab; healed entries are judged by
// the role of their proven selector.
func roleCompatible(role string, c candidate) bool {
	if role == "" {
		return true
	}

	want := selector.TypeForRole(role)

	switch {
	case c.entry.Type == entity.ElementTypeDiscovered:
		got, _ := selector.DetectRole(c.entry.Selector)
		return selector.TypeForRole(got) == want
	case want == entity.ElementTypeTab:
		return c.entry.Type == entity.ElementTypeTab ||
			(c.entry.Type == entity.ElementTypeButton && strings.Contains(c.lowerName, "tab"))
	default:
		return c.entry.Type == want
	}
}

// rank scores every role-compatible element of doc.
func rank(doc *entity.CatalogDocument, q matchQuery) []scoredCandidate {
	ranked := make([]scoredCandidate, 0, len(doc.Elements))

	for name, entry := range doc.Elements {
		c := newCandidate(name, entry)
		if !roleCompatible(q.role, c) {
			continue
		}

		ranked = append(ranked, score(c, q))
	}

	sort.Slice(ranked, func(i, j int) bool {
		return better(ranked[i], ranked[j])
	})

	return ranked
}

// better orders by score, then shorter name, then name.
func better(a, b scoredCandidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}

	if len(a.name) != len(b.name) {
		return len(a.name) < len(b.name)
	}

	return a.name < b.name
}

func anyKeyword(keywords []string, fn func(k string) bool) bool {
	for _, k := range keywords {
		if fn(k) {
			return true
		}
	}

	return false
}
