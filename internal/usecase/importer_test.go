package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"locator-catalog/internal/catalog"
	"locator-catalog/internal/entity"
	"locator-catalog/internal/htmlparse"
	"locator-catalog/pkg/apperr"
)

const explorePage = `<html><body>
<div id="study" role="button" aria-expanded="false"><span class="sectionSummaryText">Study</span></div>
<button role="tab">Samples(1200)</button>
</body></html>`

func newTestImporter(t *testing.T, store *catalog.Store) *ImportService {
	t.Helper()

	return NewImportService(ImportServiceParams{
		Logger: zaptest.NewLogger(t),
		Store:  store,
		Parser: htmlparse.NewParser(zaptest.NewLogger(t)),
	})
}

func TestImport_SeedsCatalogAndBaseline(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc, err := newTestImporter(t, store).Import(ctx, "https://caninecommons.cancer.gov/#/explore", "", explorePage)
	require.NoError(t, err)
	assert.Equal(t, "explore", doc.Page)

	stored := load(t, store)
	assert.Equal(t, "1.0", stored.Version)
	assert.Contains(t, stored.Elements, "Study dropdown")
	assert.Contains(t, stored.Elements, "Samples(1200) button")

	baseline, ok := store.LoadBaseline(ctx, testSite, testPage, "1.0")
	require.True(t, ok)
	assert.Len(t, baseline.Elements, len(stored.Elements))

	resolver := newTestResolver(t, store)

	sel, found := resolver.Resolve(ctx, testSite, testPage, "Study dropdown", "")
	require.True(t, found)
	assert.Equal(t, "#study[role='button']", sel)
}

func TestImport_PageOverride(t *testing.T) {
	store := newTestStore(t)

	doc, err := newTestImporter(t, store).Import(context.Background(), "https://caninecommons.cancer.gov/#/explore", "cases", explorePage)
	require.NoError(t, err)
	assert.Equal(t, "cases", doc.Page)

	_, ok := store.Load(context.Background(), testSite, "cases")
	assert.True(t, ok)
}

func TestImport_RejectsEmptyURL(t *testing.T) {
	_, err := newTestImporter(t, newTestStore(t)).Import(context.Background(), "", "", explorePage)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
}

func TestImportService_AddElement(t *testing.T) {
	store := newTestStore(t)

	err := newTestImporter(t, store).AddElement(context.Background(), testSite, testPage, "Go button",
		entity.ElementEntry{Selector: "#go", Type: entity.ElementTypeButton}, "run-7")
	require.NoError(t, err)

	doc := load(t, store)
	assert.Equal(t, "run-7", doc.Elements["Go button"].DiscoveredIn)
}
