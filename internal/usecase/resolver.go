package usecase

import (
	"context"
	"regexp"

	"locator-catalog/internal/config"
	"locator-catalog/internal/entity"
	"locator-catalog/internal/ports"
	"locator-catalog/internal/selector"
	"locator-catalog/pkg/logg"
	"locator-catalog/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	resolverServiceName = "ResolverService"
	resolverTracer      = "usecase.resolver"
)

var (
	hasTextArgRe   = regexp.MustCompile(`:has-text\(([^)]+)\)`)
	nameKindSuffix = regexp.MustCompile(`\s*(button|link|dropdown|tab|filter)$`)
)

type ResolverService struct {
	logger   *zap.Logger
	tracer   trace.Tracer
	store    ports.CatalogStore
	minScore int
}

type ResolverServiceParams struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
	Store  ports.CatalogStore
}

func NewResolverService(params ResolverServiceParams) *ResolverService {
	minScore := defaultMinScore
	if params.Config != nil && params.Config.CatalogConfig != nil && params.Config.CatalogConfig.MinScore > 0 {
		minScore = params.Config.CatalogConfig.MinScore
	}

	return &ResolverService{
		logger:   params.Logger.With(zap.String(logg.Layer, resolverServiceName)),
		tracer:   otel.Tracer(resolverTracer),
		store:    params.Store,
		minScore: minScore,
	}
}

// Resolve maps a description to the best known locator on (site, page).
// found is false when the catalog has nothing confident enough; the caller
// is then expected to discover the element itself.
func (s *ResolverService) Resolve(ctx context.Context, site, page, description, roleHint string) (sel string, found bool) {
	const op = "Resolve"
	logger := s.logger.With(zap.String(logg.Operation, op),
		zap.String(logg.Site, site), zap.String(logg.Page, page), zap.String(logg.Element, description))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("site", site),
		attribute.String("page", page),
		attribute.String("description", description),
		attribute.String("role_hint", roleHint))
	defer func() {
		step.SetAttributes(attribute.Bool("found", found), attribute.String("selector", sel))
		step.End(nil)
	}()

	if description == "" {
		return "", false
	}

	q := newMatchQuery(description, roleHint)

	if entry, ok := s.store.GetElement(ctx, site, page, description); ok {
		if roleCompatible(q.role, newCandidate(description, *entry)) {
			sel = s.selectorFor(description, *entry, q.role)
			step.AddEvent("exact name hit")
			logger.Info("Resolved by exact name", zap.String(logg.Selector, sel))
			s.recordUsage(ctx, logger, site, page, description)

			return sel, true
		}

		logger.Debug("Exact name hit has incompatible role", zap.String(logg.Role, q.role))
	}

	doc, ok := s.store.Load(ctx, site, page)
	if !ok {
		logger.Debug("No catalog for page")

		return "", false
	}

	ranked := rank(doc, q)
	step.AddEvent("scored", attribute.Int("candidates", len(ranked)))

	if len(ranked) == 0 || ranked[0].score < s.minScore {
		best := 0
		if len(ranked) > 0 {
			best = ranked[0].score
		}

		logger.Info("No confident match", zap.Int(logg.Score, best), zap.Int("threshold", s.minScore))

		return "", false
	}

	winner := ranked[0]
	sel = s.selectorFor(winner.name, winner.entry, q.role)

	logger.Info("Resolved by score",
		zap.String("matched", winner.name),
		zap.Int(logg.Score, winner.score),
		zap.Strings("rules", winner.tags),
		zap.String(logg.Selector, sel))

	s.recordUsage(ctx, logger, site, page, winner.name)

	return sel, true
}

// selectorFor picks the locator to hand out for a matched entry: a healed
// locator verbatim, a count-agnostic rewrite for counted text, or the stored
// selector qualified by the requested role.
func (s *ResolverService) selectorFor(name string, entry entity.ElementEntry, role string) string {
	if entry.Discovery != nil && entry.Selector != "" {
		return entry.Selector
	}

	if selector.HasCount(name) || selector.Normalize(entry.Selector).HadCount {
		return countAgnosticFor(name, entry, role)
	}

	return qualifyRole(entry.Selector, role)
}

func countAgnosticFor(name string, entry entity.ElementEntry, role string) string {
	text, found := selector.TextOf(entry.Selector)
	if found {
		text = selector.StripCount(text)
	} else {
		text = selector.StripCount(nameKindSuffix.ReplaceAllString(name, ""))
	}

	if role != "" {
		return selector.CountAgnostic(role, text, false)
	}

	stored, roleAttr := selector.DetectRole(entry.Selector)

	return selector.CountAgnostic(stored, text, roleAttr)
}

// qualifyRole adds a role qualifier to a bare :has-text locator.
func qualifyRole(sel, role string) string {
	if role == "" {
		return sel
	}

	if existing, _ := selector.DetectRole(sel); existing != "" {
		return sel
	}

	m := hasTextArgRe.FindStringSubmatch(sel)
	if m == nil || m[0] != sel {
		return sel
	}

	return selector.Qualify(role, false, m[0])
}

func (s *ResolverService) recordUsage(ctx context.Context, logger *zap.Logger, site, page, name string) {
	if err := s.store.UpdateUsage(ctx, site, page, name); err != nil {
		logger.Warn("Failed to record usage", zap.String(logg.Element, name), zap.Error(err))
	}
}
