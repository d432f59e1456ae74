package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"locator-catalog/internal/config"
	"locator-catalog/internal/entity"
	"locator-catalog/pkg/apperr"
	"locator-catalog/pkg/logg"
	"locator-catalog/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	catalogStoreName = "CatalogStore"
	catalogTracer    = "catalog.store"
	pageFileSuffix   = "_page.json"
	versionsDir      = "versions"
)

// ErrNoChange is returned by a Mutate callback to skip persisting.
var ErrNoChange = errors.New("no change")

// Store keeps one JSON catalog document per (site, page) under a root
// directory and caches what it has read or written.
type Store struct {
	dir    string
	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]*entity.CatalogDocument
}

type Params struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func NewStore(params Params) (*Store, error) {
	return New(params.Config.CatalogConfig.Dir, params.Logger)
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string, logger *zap.Logger) (*Store, error) {
	const op = "NewStore"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "mkdir_failed",
			apperr.MetaPath:   dir,
		})
	}

	return &Store{
		dir:    dir,
		logger: logger.With(zap.String(logg.Layer, catalogStoreName)),
		tracer: otel.Tracer(catalogTracer),
		now:    time.Now,
		cache:  make(map[string]*entity.CatalogDocument),
	}, nil
}

// Path returns the catalog file for (site, page), creating the site
// directory on the way.
func (s *Store) Path(site, page string) (string, error) {
	siteDir := filepath.Join(s.dir, entity.SanitizeSite(site))

	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		return "", err
	}

	return filepath.Join(siteDir, entity.SanitizePage(page)+pageFileSuffix), nil
}

func (s *Store) baselinePath(site, page, version string) string {
	return filepath.Join(s.dir, entity.SanitizeSite(site), versionsDir, fmt.Sprintf("%s_page_v%s.json", entity.SanitizePage(page), entity.SanitizePage(version)))
}

func cacheKey(site, page string) string {
	return entity.SanitizeSite(site) + ":" + entity.SanitizePage(page)
}

// Load reads the catalog for (site, page) from disk and caches it. Missing
// or unreadable documents report ok=false; decode errors are only logged.
func (s *Store) Load(ctx context.Context, site, page string) (doc *entity.CatalogDocument, ok bool) {
	const op = "Load"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.Site, site), zap.String(logg.Page, page))

	_, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("site", site), attribute.String("page", page))
	defer func() {
		step.SetAttributes(attribute.Bool("found", ok))
		step.End(nil)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(site, page)
	if err != nil {
		if apperr.IsNotFound(err) {
			logger.Debug("Catalog not found")
		} else {
			logger.Warn("Failed to load catalog", zap.Error(err))
		}

		delete(s.cache, cacheKey(site, page))

		return nil, false
	}

	s.cache[cacheKey(site, page)] = doc

	return doc.Clone(), true
}

// read loads a document from disk. Caller holds s.mu.
func (s *Store) read(site, page string) (*entity.CatalogDocument, error) {
	const op = "read"

	path, err := s.Path(site, page)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "path_failed",
		})
	}

	return readDocument(op, path)
}

func readDocument(op, path string) (*entity.CatalogDocument, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperr.NotFoundError(op, err)
	}

	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "read_failed",
			apperr.MetaPath:   path,
		})
	}

	var doc entity.CatalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeDecodeFailed, err, map[string]any{
			apperr.MetaReason: "decode_failed",
			apperr.MetaPath:   path,
		})
	}

	if doc.Elements == nil {
		doc.Elements = make(map[string]entity.ElementEntry)
	}

	return &doc, nil
}

// Save stamps last_updated, writes the document atomically and refreshes
// the cache.
func (s *Store) Save(ctx context.Context, site, page string, doc *entity.CatalogDocument) (err error) {
	const op = "Save"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.Site, site), zap.String(logg.Page, page))

	_, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("site", site), attribute.String("page", page))
	defer func() {
		step.End(err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(logger, site, page, doc.Clone())
}

// write persists doc and takes ownership of it. Caller holds s.mu.
func (s *Store) write(logger *zap.Logger, site, page string, doc *entity.CatalogDocument) error {
	const op = "write"

	path, err := s.Path(site, page)
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "path_failed",
			apperr.MetaSite:   site,
		})
	}

	doc.LastUpdated = entity.FormatTime(s.now())

	if err := writeDocument(op, path, doc); err != nil {
		return err
	}

	s.cache[cacheKey(site, page)] = doc

	logger.Info("Saved catalog",
		zap.String(logg.Path, path),
		zap.String(logg.Version, doc.Version),
		zap.Int("elements", len(doc.Elements)))

	return nil
}

// writeDocument writes to a sibling temp file and renames it over path so
// readers never see a partial document.
func writeDocument(op, path string, doc *entity.CatalogDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "marshal_failed",
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "mkdir_failed",
			apperr.MetaPath:   path,
		})
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "write_failed",
			apperr.MetaPath:   tmp,
		})
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)

		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "rename_failed",
			apperr.MetaPath:   path,
		})
	}

	return nil
}

// GetElement returns one entry, preferring the cached document.
func (s *Store) GetElement(ctx context.Context, site, page, name string) (*entity.ElementEntry, bool) {
	s.mu.RLock()
	doc, cached := s.cache[cacheKey(site, page)]
	if cached {
		entry, ok := doc.Elements[name]
		s.mu.RUnlock()

		if !ok {
			return nil, false
		}

		clone := entry.Clone()

		return &clone, true
	}
	s.mu.RUnlock()

	loaded, ok := s.Load(ctx, site, page)
	if !ok {
		return nil, false
	}

	entry, ok := loaded.Elements[name]
	if !ok {
		return nil, false
	}

	return &entry, true
}

// Mutate is the single write path for existing or lazily created documents:
// fn edits the document, then the version is bumped and the result saved.
// Returning ErrNoChange from fn leaves the catalog untouched.
func (s *Store) Mutate(ctx context.Context, site, page string, fn func(doc *entity.CatalogDocument) error) (err error) {
	const op = "Mutate"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.Site, site), zap.String(logg.Page, page))

	_, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("site", site), attribute.String("page", page))
	defer func() {
		if errors.Is(err, ErrNoChange) {
			step.AddEvent("no change")
			err = nil
		}
		step.End(err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.documentForWrite(logger, site, page)

	if err := fn(doc); err != nil {
		return err
	}

	doc.BumpVersion()

	return s.write(logger, site, page, doc)
}

// documentForWrite returns a private copy of the cached, stored or new
// document. Caller holds s.mu.
func (s *Store) documentForWrite(logger *zap.Logger, site, page string) *entity.CatalogDocument {
	if doc, ok := s.cache[cacheKey(site, page)]; ok {
		return doc.Clone()
	}

	doc, err := s.read(site, page)
	if err == nil {
		return doc
	}

	if !apperr.IsNotFound(err) {
		logger.Warn("Replacing unreadable catalog", zap.Error(err))
	}

	logger.Debug("No stored catalog, starting a new one")

	return entity.NewCatalogDocument(entity.SanitizeSite(site), page, s.now())
}

// AddElement records an element found outside the initial parse, creating
// the catalog if needed.
func (s *Store) AddElement(ctx context.Context, site, page, name string, entry entity.ElementEntry, originID string) error {
	now := entity.FormatTime(s.now())

	return s.Mutate(ctx, site, page, func(doc *entity.CatalogDocument) error {
		entry = entry.Clone()
		entry.Source = entity.SourceLLMDiscovery
		entry.DiscoveredAt = now
		entry.DiscoveredIn = originID
		entry.UsageCount = 1
		entry.LastUsed = now

		doc.Elements[name] = entry
		doc.RecountElements()
		doc.Statistics.DiscoveredElements++

		s.logger.Info("Added element",
			zap.String(logg.Element, name),
			zap.String(logg.Selector, entry.Selector),
			zap.String("origin", originID))

		return nil
	})
}

// UpdateUsage counts a resolution hit. Absent entries are ignored.
//
// The version is bumped like any other mutation so that existing
// regression tooling keeps seeing identical version sequences.
func (s *Store) UpdateUsage(ctx context.Context, site, page, name string) error {
	now := entity.FormatTime(s.now())

	return s.Mutate(ctx, site, page, func(doc *entity.CatalogDocument) error {
		entry, ok := doc.Elements[name]
		if !ok {
			return ErrNoChange
		}

		entry.UsageCount++
		entry.LastUsed = now
		doc.Elements[name] = entry

		return nil
	})
}

// Import replaces the catalog with a freshly bootstrapped document without
// bumping its version.
func (s *Store) Import(ctx context.Context, site, page string, doc *entity.CatalogDocument) error {
	return s.Save(ctx, site, page, doc)
}
