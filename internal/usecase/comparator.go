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
	comparatorServiceName = "ComparatorService"
	comparatorTracer      = "usecase.comparator"
)

type ComparatorService struct {
	logger *zap.Logger
	tracer trace.Tracer
	store  ports.CatalogStore
}

type ComparatorServiceParams struct {
	fx.In

	Logger *zap.Logger
	Store  ports.CatalogStore
}

func NewComparatorService(params ComparatorServiceParams) *ComparatorService {
	return &ComparatorService{
		logger: params.Logger.With(zap.String(logg.Layer, comparatorServiceName)),
		tracer: otel.Tracer(comparatorTracer),
		store:  params.Store,
	}
}

// Compare diffs the current catalog against the baseline snapshot with the
// given version. An empty version compares the catalog with itself.
func (s *ComparatorService) Compare(ctx context.Context, site, page, baselineVersion string) (report *entity.ComparisonReport, err error) {
	const op = "Compare"
	logger := s.logger.With(zap.String(logg.Operation, op),
		zap.String(logg.Site, site), zap.String(logg.Page, page), zap.String(logg.Version, baselineVersion))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("site", site),
		attribute.String("page", page),
		attribute.String("baseline_version", baselineVersion))
	defer func() {
		step.End(err)
	}()

	current, ok := s.store.Load(ctx, site, page)
	if !ok {
		return nil, apperr.Wrap(op, apperr.CodeNotFound, errors.New("current catalog not found"), map[string]any{
			apperr.MetaReason: "current_not_found",
			apperr.MetaStage:  apperr.StageCompare,
			apperr.MetaSite:   site,
			apperr.MetaPage:   page,
		})
	}

	baseline := current.Clone()
	if baselineVersion != "" {
		baseline, ok = s.store.LoadBaseline(ctx, site, page, baselineVersion)
		if !ok {
			return nil, apperr.Wrap(op, apperr.CodeNotFound, errors.New("baseline catalog not found"), map[string]any{
				apperr.MetaReason:  "baseline_not_found",
				apperr.MetaStage:   apperr.StageCompare,
				apperr.MetaSite:    site,
				apperr.MetaPage:    page,
				apperr.MetaVersion: baselineVersion,
			})
		}
	}

	report = entity.Diff(baseline, current)

	step.SetAttributes(
		attribute.Int("breaking_changes", report.BreakingChanges),
		attribute.String("risk_level", string(report.RiskLevel)))

	logger.Info("Compared catalog",
		zap.String("baseline", report.BaselineVersion),
		zap.String("current", report.CurrentVersion),
		zap.Int("breaking_changes", report.BreakingChanges),
		zap.String("risk", string(report.RiskLevel)))

	return report, nil
}

func (s *ComparatorService) CreateBaseline(ctx context.Context, site, page string) (string, error) {
	return s.store.CreateBaseline(ctx, site, page)
}
