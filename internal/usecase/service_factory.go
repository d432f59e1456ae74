package usecase

import (
	"locator-catalog/internal/usecase/adapters"
)

type serviceFactory struct {
	deps Params
}

func newServiceFactory(deps Params) *serviceFactory {
	return &serviceFactory{
		deps: deps,
	}
}

func (f *serviceFactory) CreateResolverService() adapters.ResolverService {
	return NewResolverService(ResolverServiceParams{
		Config: f.deps.Config,
		Logger: f.deps.Logger,
		Store:  f.deps.Store,
	})
}

func (f *serviceFactory) CreateHealerService() adapters.HealerService {
	return NewHealerService(HealerServiceParams{
		Logger: f.deps.Logger,
		Store:  f.deps.Store,
	})
}

func (f *serviceFactory) CreateComparatorService() adapters.ComparatorService {
	return NewComparatorService(ComparatorServiceParams{
		Logger: f.deps.Logger,
		Store:  f.deps.Store,
	})
}

func (f *serviceFactory) CreateImportService() adapters.ImportService {
	return NewImportService(ImportServiceParams{
		Logger: f.deps.Logger,
		Store:  f.deps.Store,
		Parser: f.deps.Parser,
	})
}
