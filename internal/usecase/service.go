package usecase

import (
	"locator-catalog/internal/config"
	"locator-catalog/internal/ports"
	"locator-catalog/internal/usecase/adapters"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	Resolver   adapters.ResolverService
	Healer     adapters.HealerService
	Comparator adapters.ComparatorService
	Importer   adapters.ImportService
}

type Params struct {
	fx.In

	Logger *zap.Logger
	Config *config.Config
	Store  ports.CatalogStore
	Parser ports.CatalogParser
}

func NewUsecase(params Params) *Service {
	factory := newServiceFactory(params)

	return &Service{
		Resolver:   factory.CreateResolverService(),
		Healer:     factory.CreateHealerService(),
		Comparator: factory.CreateComparatorService(),
		Importer:   factory.CreateImportService(),
	}
}
