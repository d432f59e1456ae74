package usecase

import (
	"context"
	"errors"

	"locator-catalog/internal/entity"
	"locator-catalog/internal/ports"
	"locator-catalog/pkg/apperr"
	"locator-catalog/pkg/logg"
	"locator-catalog/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	importServiceName = "ImportService"
	importTracer      = "usecase.import"
)

type ImportService struct {
	logger *zap.Logger
	tracer trace.Tracer
	store  ports.CatalogStore
	parser ports.CatalogParser
}

type ImportServiceParams struct {
	fx.In

	Logger *zap.Logger
	Store  ports.CatalogStore
	Parser ports.CatalogParser
}

func NewImportService(params ImportServiceParams) *ImportService {
	return &ImportService{
		logger: params.Logger.With(zap.String(logg.Layer, importServiceName)),
		tracer: otel.Tracer(importTracer),
		store:  params.Store,
		parser: params.Parser,
	}
}

// Import bootstraps the catalog of a page from its markup, replacing any
// existing one, and snapshots the result as a baseline. An empty page is
// derived from the URL.
func (s *ImportService) Import(ctx context.Context, pageURL, page, html string) (doc *entity.CatalogDocument, err error) {
	const op = "Import"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, pageURL))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String("url", pageURL))
	defer func() {
		step.End(err)
	}()

	site, urlPage := entity.SiteAndPage(pageURL)
	if site == "" {
		return nil, apperr.InvalidReqError(op, "url", errors.New("page url cannot be empty"))
	}

	if page == "" {
		page = urlPage
	}

	doc, err = s.parser.Parse(html, pageURL)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "parse_failed",
			apperr.MetaStage:  apperr.StageParse,
			apperr.MetaURL:    pageURL,
		})
	}

	doc.Page = page

	if err := s.store.Import(ctx, site, page, doc); err != nil {
		return nil, err
	}

	if _, err := s.store.CreateBaseline(ctx, site, page); err != nil {
		logger.Warn("Failed to create baseline", zap.Error(err))
	}

	logger.Info("Imported catalog",
		zap.String(logg.Site, site),
		zap.String(logg.Page, page),
		zap.Int("elements", len(doc.Elements)))

	return doc, nil
}

// AddElement seeds one element into a catalog on behalf of originID.
func (s *ImportService) AddElement(ctx context.Context, site, page, name string, entry entity.ElementEntry, originID string) error {
	return s.store.AddElement(ctx, site, page, name, entry, originID)
}
