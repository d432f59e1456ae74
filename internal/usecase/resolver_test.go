package usecase

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"locator-catalog/internal/catalog"
	"locator-catalog/internal/config"
	"locator-catalog/internal/entity"
)

func newTestResolver(t *testing.T, store *catalog.Store) *ResolverService {
	t.Helper()

	return NewResolverService(ResolverServiceParams{
		Logger: zaptest.NewLogger(t),
		Store:  store,
	})
}

func TestResolve_CountedTabIsCountAgnostic(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, map[string]entity.ElementEntry{
		"Samples tab": {Selector: `[role="tab"]:has-text('Samples(1200)')`, Type: entity.ElementTypeTab},
	})

	sel, found := newTestResolver(t, store).Resolve(context.Background(), testSite, testPage, "Samples tab", "tab")
	require.True(t, found)

	assert.Equal(t, `[role="tab"]:has-text(/Samples\(\d+\)/)`, sel)
	assert.NotContains(t, sel, "1200")
}

func TestResolve_CountAgnosticEscapesText(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, map[string]entity.ElementEntry{
		"C++ Jobs tab":   {Selector: `[role="tab"]:has-text('C++ Jobs(3)')`, Type: entity.ElementTypeTab},
		"Files/Docs tab": {Selector: `[role="tab"]:has-text('Files/Docs(2)')`, Type: entity.ElementTypeTab},
	})
	resolver := newTestResolver(t, store)
	ctx := context.Background()

	sel, found := resolver.Resolve(ctx, testSite, testPage, "C++ Jobs tab", "tab")
	require.True(t, found)
	assert.Equal(t, `[role="tab"]:has-text(/C\+\+ Jobs\(\d+\)/)`, sel)

	sel, found = resolver.Resolve(ctx, testSite, testPage, "Files/Docs tab", "tab")
	require.True(t, found)
	assert.Equal(t, `[role="tab"]:has-text(/Files\/Docs\(\d+\)/)`, sel)
}

func TestResolve_KeywordLadder(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, map[string]entity.ElementEntry{
		"Search box input": {Selector: `input[placeholder="Search"]`, Type: entity.ElementTypeInput},
	})
	resolver := newTestResolver(t, store)
	ctx := context.Background()

	sel, found := resolver.Resolve(ctx, testSite, testPage, "search input", "")
	require.True(t, found)
	assert.Equal(t, `input[placeholder="Search"]`, sel)

	sel, found = resolver.Resolve(ctx, testSite, testPage, "the div class", "")
	assert.False(t, found)
	assert.Empty(t, sel)
}

func TestResolve_RecordsUsage(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, map[string]entity.ElementEntry{
		"Search box input": {Selector: `input[placeholder="Search"]`, Type: entity.ElementTypeInput},
	})

	_, found := newTestResolver(t, store).Resolve(context.Background(), testSite, testPage, "search input", "")
	require.True(t, found)

	doc := load(t, store)
	assert.Equal(t, 1, doc.Elements["Search box input"].UsageCount)
	assert.Equal(t, "1.1", doc.Version)
}

func TestResolve_NotFound(t *testing.T) {
	store := newTestStore(t)
	resolver := newTestResolver(t, store)
	ctx := context.Background()

	_, found := resolver.Resolve(ctx, testSite, testPage, "Study dropdown", "")
	assert.False(t, found)

	path, err := store.Path(testSite, testPage)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "resolving must not create a catalog")

	seed(t, store, map[string]entity.ElementEntry{
		"Study dropdown": {Selector: "button:has-text('Study')", Type: entity.ElementTypeAccordion},
	})

	_, found = resolver.Resolve(ctx, testSite, testPage, "", "")
	assert.False(t, found)

	_, found = resolver.Resolve(ctx, testSite, testPage, "unrelated widget", "")
	assert.False(t, found)
}

func TestResolve_RoleHintFiltersCandidates(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, map[string]entity.ElementEntry{
		"Submit button": {Selector: "button:has-text('Submit')", Type: entity.ElementTypeButton},
		"Submit link":   {Selector: "a:has-text('Submit')", Type: entity.ElementTypeLink},
		"Study":         {Selector: "#study", Type: entity.ElementTypeAccordion},
	})
	resolver := newTestResolver(t, store)
	ctx := context.Background()

	sel, found := resolver.Resolve(ctx, testSite, testPage, "Submit", "button")
	require.True(t, found)
	assert.Equal(t, "button:has-text('Submit')", sel)

	sel, found = resolver.Resolve(ctx, testSite, testPage, "Submit", "link")
	require.True(t, found)
	assert.Equal(t, "a:has-text('Submit')", sel)

	// An exact name of the wrong role is not an answer.
	_, found = resolver.Resolve(ctx, testSite, testPage, "Study", "button")
	assert.False(t, found)
}

func TestResolve_TiesAreDeterministic(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, map[string]entity.ElementEntry{
		"Files B": {Selector: "button:has-text('Files B')", Type: entity.ElementTypeButton},
		"Files A": {Selector: "button:has-text('Files A')", Type: entity.ElementTypeButton},
	})
	resolver := newTestResolver(t, store)

	for i := 0; i < 20; i++ {
		sel, found := resolver.Resolve(context.Background(), testSite, testPage, "files", "")
		require.True(t, found)
		assert.Equal(t, "button:has-text('Files A')", sel)
	}
}

func TestResolve_MinScoreFromConfig(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, map[string]entity.ElementEntry{
		"Search box input": {Selector: `input[placeholder="Search"]`, Type: entity.ElementTypeInput},
	})

	resolver := NewResolverService(ResolverServiceParams{
		Config: &config.Config{CatalogConfig: &config.CatalogConfig{MinScore: 90}},
		Logger: zaptest.NewLogger(t),
		Store:  store,
	})

	_, found := resolver.Resolve(context.Background(), testSite, testPage, "search input", "")
	assert.False(t, found)
}

func TestResolve_AfterHealReturnsFinalSelector(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	healer := NewHealerService(HealerServiceParams{Logger: zaptest.NewLogger(t), Store: store})
	final := `button[aria-expanded]:has-text('Primary Site')`

	require.NoError(t, healer.Heal(ctx, testSite, testPage, entity.Discovery{
		Name:          "Primary Site",
		OriginalQuery: "text=Primary",
		FinalSelector: final,
		Method:        entity.DiscoveryMethodTreeClimbing,
	}))

	sel, found := newTestResolver(t, store).Resolve(ctx, testSite, testPage, "Primary Site", "")
	require.True(t, found)
	assert.Equal(t, final, sel)
}

func TestScore_Rules(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		roleHint  string
		candidate string
		entry     entity.ElementEntry
		want      int
		tags      []string
	}{
		{
			name:      "exact name with dropdown bonus and id penalty",
			query:     "Study dropdown",
			candidate: "Study dropdown",
			entry:     entity.ElementEntry{Selector: "#study", Type: entity.ElementTypeAccordion},
			want:      80,
			tags:      []string{"exact_name", "dropdown_bonus", "id_selector_penalty"},
		},
		{
			name:      "prefix with role bonus",
			query:     "Samples",
			roleHint:  "tab",
			candidate: "Samples tab",
			entry:     entity.ElementEntry{Selector: `[role="tab"]:has-text('Samples')`, Type: entity.ElementTypeTab},
			want:      95,
			tags:      []string{"name_prefix", "role_bonus"},
		},
		{
			name:      "suffix",
			query:     "site",
			candidate: "Primary Site",
			entry:     entity.ElementEntry{Selector: "button:has-text('Primary Site')", Type: entity.ElementTypeButton},
			want:      70,
			tags:      []string{"name_suffix"},
		},
		{
			name:      "contains query",
			query:     "box",
			candidate: "Search box input",
			entry:     entity.ElementEntry{Selector: "input", Type: entity.ElementTypeInput},
			want:      60,
			tags:      []string{"name_contains_query"},
		},
		{
			name:      "contains keyword",
			query:     "box thing",
			candidate: "Search box input",
			entry:     entity.ElementEntry{Selector: "input", Type: entity.ElementTypeInput},
			want:      40,
			tags:      []string{"name_contains_keyword"},
		},
		{
			name:      "description keyword",
			query:     "cancer filter",
			candidate: "Program facet",
			entry:     entity.ElementEntry{Selector: "div.facet", Type: entity.ElementTypeAccordion, Description: "Filter by cancer program"},
			want:      20,
			tags:      []string{"description_keyword"},
		},
		{
			name:      "generic text query against a button",
			query:     "text=Primary",
			candidate: "Primary Site",
			entry:     entity.ElementEntry{Selector: "button:has-text('Primary Site')", Type: entity.ElementTypeButton},
			want:      65,
			tags:      []string{"name_prefix", "generic_query_penalty"},
		},
		{
			name:      "no match",
			query:     "the div class",
			candidate: "Search box input",
			entry:     entity.ElementEntry{Selector: "input", Type: entity.ElementTypeInput},
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := score(newCandidate(tt.candidate, tt.entry), newMatchQuery(tt.query, tt.roleHint))

			assert.Equal(t, tt.want, got.score)
			assert.Equal(t, tt.tags, got.tags)
		})
	}
}

func TestRoleCompatible(t *testing.T) {
	tabButton := newCandidate("Samples tab", entity.ElementEntry{Type: entity.ElementTypeButton})
	plainButton := newCandidate("Submit", entity.ElementEntry{Type: entity.ElementTypeButton})
	healedTab := newCandidate("Cases", entity.ElementEntry{Type: entity.ElementTypeDiscovered, Selector: `[role="tab"]:has-text('Cases')`})
	link := newCandidate("Docs", entity.ElementEntry{Type: entity.ElementTypeLink})

	assert.True(t, roleCompatible("", plainButton))
	assert.True(t, roleCompatible("tab", tabButton))
	assert.False(t, roleCompatible("tab", plainButton))
	assert.True(t, roleCompatible("tab", healedTab))
	assert.False(t, roleCompatible("button", healedTab))
	assert.True(t, roleCompatible("a", link))
}
