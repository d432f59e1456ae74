package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"locator-catalog/internal/catalog"
	"locator-catalog/internal/entity"
)

const (
	testSite = "https://caninecommons.cancer.gov/#/"
	testPage = "explore"
)

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()

	store, err := catalog.New(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)

	return store
}

// seed writes a catalog holding exactly elements at version 1.0.
func seed(t *testing.T, store *catalog.Store, elements map[string]entity.ElementEntry) {
	t.Helper()

	doc := entity.NewCatalogDocument("caninecommons.cancer.gov", testPage, testNow())
	for name, entry := range elements {
		doc.Elements[name] = entry
	}
	doc.RecountElements()

	require.NoError(t, store.Save(context.Background(), testSite, testPage, doc))
}

func testNow() time.Time {
	return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
}

func load(t *testing.T, store *catalog.Store) *entity.CatalogDocument {
	t.Helper()

	doc, ok := store.Load(context.Background(), testSite, testPage)
	require.True(t, ok)

	return doc
}
