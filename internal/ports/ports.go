package ports

import (
	"context"

	"locator-catalog/internal/entity"
)

type CatalogStore interface {
	Path(site, page string) (string, error)
	Load(ctx context.Context, site, page string) (*entity.CatalogDocument, bool)
	Save(ctx context.Context, site, page string, doc *entity.CatalogDocument) error
	Import(ctx context.Context, site, page string, doc *entity.CatalogDocument) error
	GetElement(ctx context.Context, site, page, name string) (*entity.ElementEntry, bool)
	AddElement(ctx context.Context, site, page, name string, entry entity.ElementEntry, originID string) error
	UpdateUsage(ctx context.Context, site, page, name string) error
	Mutate(ctx context.Context, site, page string, fn func(doc *entity.CatalogDocument) error) error
	CreateBaseline(ctx context.Context, site, page string) (string, error)
	LoadBaseline(ctx context.Context, site, page, version string) (*entity.CatalogDocument, bool)
}

// CatalogParser bootstraps an unlearned catalog from page markup.
type CatalogParser interface {
	Parse(html, pageURL string) (*entity.CatalogDocument, error)
}

// BrowserManager drives a live page for capture and probing. The catalog
// core never calls it.
type BrowserManager interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	Content(ctx context.Context) (string, error)
	CurrentURL() string
	Probe(ctx context.Context, selector string) (*entity.ProbeResult, error)
	IsReady() bool
}
