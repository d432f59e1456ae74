package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"locator-catalog/internal/catalog"
	"locator-catalog/internal/entity"
	"locator-catalog/pkg/apperr"
)

func newTestComparator(t *testing.T, store *catalog.Store) *ComparatorService {
	t.Helper()

	return NewComparatorService(ComparatorServiceParams{Logger: zaptest.NewLogger(t), Store: store})
}

func TestCompare_AgainstBaseline(t *testing.T) {
	store := newTestStore(t)
	comparator := newTestComparator(t, store)
	ctx := context.Background()

	seed(t, store, map[string]entity.ElementEntry{
		"A": {Selector: "sel1"},
		"B": {Selector: "sel2"},
	})

	path, err := comparator.CreateBaseline(ctx, testSite, testPage)
	require.NoError(t, err)
	require.NotEmpty(t, path)

	current := load(t, store)
	current.Version = "1.1"
	current.Elements = map[string]entity.ElementEntry{
		"A": {Selector: "sel1-changed"},
		"C": {Selector: "sel3", Source: entity.SourceDiscovered},
	}
	require.NoError(t, store.Save(ctx, testSite, testPage, current))

	report, err := comparator.Compare(ctx, testSite, testPage, "1.0")
	require.NoError(t, err)

	assert.Equal(t, "1.0", report.BaselineVersion)
	assert.Equal(t, "1.1", report.CurrentVersion)
	assert.Equal(t, []entity.ChangedElement{{Name: "A", OldSelector: "sel1", NewSelector: "sel1-changed"}}, report.Changed)
	assert.Equal(t, []entity.AddedElement{{Name: "C", Selector: "sel3", Source: entity.SourceDiscovered}}, report.Added)
	assert.Equal(t, []entity.RemovedElement{{Name: "B", Selector: "sel2"}}, report.Removed)
	assert.Equal(t, 2, report.BreakingChanges)
	assert.Equal(t, entity.RiskMedium, report.RiskLevel)

	baseline, ok := store.LoadBaseline(ctx, testSite, testPage, "1.0")
	require.True(t, ok)
	assert.Len(t, baseline.Elements, 2, "comparison must not touch the baseline")
}

func TestCompare_WithItself(t *testing.T) {
	store := newTestStore(t)
	comparator := newTestComparator(t, store)
	ctx := context.Background()

	seed(t, store, map[string]entity.ElementEntry{"A": {Selector: "sel1"}})

	_, err := comparator.CreateBaseline(ctx, testSite, testPage)
	require.NoError(t, err)

	for _, version := range []string{"1.0", ""} {
		report, err := comparator.Compare(ctx, testSite, testPage, version)
		require.NoError(t, err)

		assert.Zero(t, report.BreakingChanges)
		assert.Equal(t, entity.RiskLow, report.RiskLevel)
		assert.Equal(t, []string{"A"}, report.Unchanged)
	}
}

func TestCompare_Missing(t *testing.T) {
	store := newTestStore(t)
	comparator := newTestComparator(t, store)
	ctx := context.Background()

	_, err := comparator.Compare(ctx, testSite, testPage, "")
	assert.True(t, apperr.IsNotFound(err))

	seed(t, store, map[string]entity.ElementEntry{"A": {Selector: "sel1"}})

	_, err = comparator.Compare(ctx, testSite, testPage, "9.9")
	assert.True(t, apperr.IsNotFound(err))
}
