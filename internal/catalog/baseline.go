package catalog

import (
	"context"

	"locator-catalog/internal/entity"
	"locator-catalog/pkg/apperr"
	"locator-catalog/pkg/logg"
	"locator-catalog/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CreateBaseline snapshots the current catalog under versions/, keyed by its
// version. It returns the snapshot path, or "" when there is no catalog.
// An existing snapshot for the same version is never overwritten.
func (s *Store) CreateBaseline(ctx context.Context, site, page string) (path string, err error) {
	const op = "CreateBaseline"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.Site, site), zap.String(logg.Page, page))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("site", site), attribute.String("page", page))
	defer func() {
		step.End(err)
	}()

	doc, ok := s.Load(ctx, site, page)
	if !ok {
		logger.Warn("No catalog found to create baseline")

		return "", nil
	}

	path = s.baselinePath(site, page, doc.Version)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := readDocument(op, path); err == nil {
		logger.Info("Baseline already exists", zap.String(logg.Path, path), zap.String(logg.Version, doc.Version))

		return path, nil
	}

	if err := writeDocument(op, path, doc); err != nil {
		return "", err
	}

	step.SetAttributes(attribute.String("version", doc.Version))
	logger.Info("Created baseline", zap.String(logg.Path, path), zap.String(logg.Version, doc.Version))

	return path, nil
}

// LoadBaseline reads a snapshot created by CreateBaseline.
func (s *Store) LoadBaseline(ctx context.Context, site, page, version string) (doc *entity.CatalogDocument, ok bool) {
	const op = "LoadBaseline"
	logger := s.logger.With(zap.String(logg.Operation, op),
		zap.String(logg.Site, site), zap.String(logg.Page, page), zap.String(logg.Version, version))

	_, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("site", site), attribute.String("page", page), attribute.String("version", version))
	defer func() {
		step.SetAttributes(attribute.Bool("found", ok))
		step.End(nil)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := readDocument(op, s.baselinePath(site, page, version))
	if err != nil {
		if apperr.IsNotFound(err) {
			logger.Debug("Baseline not found")
		} else {
			logger.Warn("Failed to load baseline", zap.Error(err))
		}

		return nil, false
	}

	return doc, true
}
