package bootstrap

import (
	"context"

	"locator-catalog/internal/config"
	"locator-catalog/internal/console"
	"locator-catalog/internal/ports"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// runConsole also takes the trace provider so that it is constructed, and
// registered globally, before any component starts spans.
func runConsole(
	lc fx.Lifecycle,
	cfg *config.Config,
	consoleInterface *console.Interface,
	browser ports.BrowserManager,
	_ *sdktrace.TracerProvider,
	logger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting locator catalog console...",
				zap.String("catalog_dir", cfg.CatalogConfig.Dir),
				zap.Int("min_score", cfg.CatalogConfig.MinScore))

			if cfg.BrowserConfig.Enabled {
				logger.Info("Launching browser...")

				if err := browser.Launch(ctx); err != nil {
					logger.Error("Failed to launch browser", zap.Error(err))

					return err
				}

				logger.Info("Browser launched successfully")
			} else {
				logger.Info("Browser disabled, capture and probe are unavailable")
			}

			go func() {
				if err := consoleInterface.Start(); err != nil {
					logger.Error("Console interface error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down locator catalog...")

			if err := consoleInterface.Stop(); err != nil {
				logger.Error("Failed to stop console", zap.Error(err))
			}

			if browser.IsReady() {
				if err := browser.Close(ctx); err != nil {
					logger.Error("Failed to close browser", zap.Error(err))
				}
			}

			return nil
		},
	})
}
