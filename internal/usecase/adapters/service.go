package adapters

import (
	"context"

	"locator-catalog/internal/entity"
)

type ResolverService interface {
	Resolve(ctx context.Context, site, page, description, roleHint string) (string, bool)
}

type HealerService interface {
	Heal(ctx context.Context, site, page string, discovery entity.Discovery) error
}

type ComparatorService interface {
	Compare(ctx context.Context, site, page, baselineVersion string) (*entity.ComparisonReport, error)
	CreateBaseline(ctx context.Context, site, page string) (string, error)
}

type ImportService interface {
	Import(ctx context.Context, pageURL, page, html string) (*entity.CatalogDocument, error)
	AddElement(ctx context.Context, site, page, name string, entry entity.ElementEntry, originID string) error
}
