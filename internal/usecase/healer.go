package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

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
	healerServiceName = "HealerService"
	healerTracer      = "usecase.healer"
	unknownName       = "unknown"
)

// MatchStrategy names the rule that tied a discovery to a catalog key.
type MatchStrategy string

const (
	MatchExactName       MatchStrategy = "exact_name"
	MatchQueryKey        MatchStrategy = "original_query_key"
	MatchFuzzyName       MatchStrategy = "fuzzy_name"
	MatchQueryOrSelector MatchStrategy = "query_or_selector"
	MatchNew             MatchStrategy = "new"
)

// MatchExistingKey decides which catalog key a discovery updates. Strategies
// are tried in order and keys are visited in sorted order; MatchNew means the
// discovery's own name becomes a new key.
func MatchExistingKey(elements map[string]entity.ElementEntry, d entity.Discovery) (string, MatchStrategy) {
	name := discoveryName(d)

	if _, ok := elements[name]; ok {
		return name, MatchExactName
	}

	if d.OriginalQuery != "" {
		if _, ok := elements[d.OriginalQuery]; ok {
			return d.OriginalQuery, MatchQueryKey
		}
	}

	keys := entity.SortedNames(elements)
	lowerName := strings.ToLower(name)

	for _, key := range keys {
		lowerKey := strings.ToLower(key)
		if strings.Contains(lowerKey, lowerName) || strings.Contains(lowerName, lowerKey) {
			return key, MatchFuzzyName
		}
	}

	for _, key := range keys {
		entry := elements[key]
		if (d.OriginalQuery != "" && entry.Query == d.OriginalQuery) ||
			(d.FinalSelector != "" && entry.Selector == d.FinalSelector) {
			return key, MatchQueryOrSelector
		}
	}

	return name, MatchNew
}

func discoveryName(d entity.Discovery) string {
	if d.Name == "" {
		return unknownName
	}

	return d.Name
}

type HealerService struct {
	logger *zap.Logger
	tracer trace.Tracer
	store  ports.CatalogStore
	now    func() time.Time
}

type HealerServiceParams struct {
	fx.In

	Logger *zap.Logger
	Store  ports.CatalogStore
}

func NewHealerService(params HealerServiceParams) *HealerService {
	return &HealerService{
		logger: params.Logger.With(zap.String(logg.Layer, healerServiceName)),
		tracer: otel.Tracer(healerTracer),
		store:  params.Store,
		now:    time.Now,
	}
}

// Heal promotes a locator that a driver proved on the live page to be the
// catalog's preferred locator for the matching element.
func (s *HealerService) Heal(ctx context.Context, site, page string, d entity.Discovery) (err error) {
	const op = "Heal"
	logger := s.logger.With(zap.String(logg.Operation, op),
		zap.String(logg.Site, site), zap.String(logg.Page, page), zap.String(logg.Element, d.Name))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("site", site),
		attribute.String("page", page),
		attribute.String("name", d.Name),
		attribute.String("method", string(d.Method)))
	defer func() {
		step.End(err)
	}()

	if d.FinalSelector == "" {
		return apperr.InvalidReqError(op, "final_selector", errors.New("final selector cannot be empty"))
	}

	method := entity.ParseDiscoveryMethod(string(d.Method))
	now := entity.FormatTime(s.now())

	err = s.store.Mutate(ctx, site, page, func(doc *entity.CatalogDocument) error {
		key, strategy := MatchExistingKey(doc.Elements, d)
		isNew := strategy == MatchNew

		entry := doc.Elements[key]
		oldSelector := entry.Selector

		entry.Query = d.OriginalQuery
		entry.Selector = d.FinalSelector
		entry.Type = entity.ElementTypeDiscovered
		entry.Discovery = &entity.DiscoveryInfo{
			Method:       method,
			Metadata:     cloneMetadata(d.Metadata),
			DiscoveredAt: now,
		}
		entry.UsageCount++
		entry.LastUsed = now

		if isNew {
			entry.Source = entity.SourceDiscovered
			doc.Statistics.DiscoveredElements++
		}

		doc.Elements[key] = entry
		doc.RecountElements()

		step.SetAttributes(attribute.String("key", key), attribute.String("strategy", string(strategy)))
		logger.Info("Healed element",
			zap.String("key", key),
			zap.String(logg.Strategy, string(strategy)),
			zap.String("old_selector", oldSelector),
			zap.String(logg.Selector, d.FinalSelector),
			zap.String("query", d.OriginalQuery))

		return nil
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "persist_failed",
			apperr.MetaStage:  apperr.StageHeal,
			apperr.MetaSite:   site,
			apperr.MetaPage:   page,
		})
	}

	return nil
}

func cloneMetadata(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return nil
	}

	clone := make(map[string]any, len(metadata))
	for k, v := range metadata {
		clone[k] = v
	}

	return clone
}
