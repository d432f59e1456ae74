package bootstrap

import (
	"time"

	"locator-catalog/internal/browser"
	"locator-catalog/internal/catalog"
	"locator-catalog/internal/config"
	"locator-catalog/internal/console"
	"locator-catalog/internal/htmlparse"
	"locator-catalog/internal/ports"
	"locator-catalog/internal/usecase"

	"go.uber.org/fx"
)

func NewApp() *fx.App {
	return fx.New(
		fx.Provide(
			config.GetConfig,
			newLogger,
			newTraceProvider,

			fx.Annotate(catalog.NewStore, fx.As(new(ports.CatalogStore))),
			fx.Annotate(htmlparse.NewParser, fx.As(new(ports.CatalogParser))),
			fx.Annotate(browser.NewManager, fx.As(new(ports.BrowserManager))),

			usecase.NewUsecase,

			console.NewInterface,
		),

		fx.Invoke(
			runConsole,
		),

		fx.StartTimeout(2*time.Minute),
	)
}
