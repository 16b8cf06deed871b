// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/savorlabs/nutrimatch/internal/application/pipeline"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/config"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/dataset"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/http/apiserver"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/monitoring"
	"github.com/savorlabs/nutrimatch/internal/ports/inbound"
	"github.com/savorlabs/nutrimatch/internal/ports/outbound"
	"github.com/savorlabs/nutrimatch/pkg/healthcheck"
	"github.com/savorlabs/nutrimatch/pkg/logger"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	DatasetModule,
	PipelineModule,
	HealthModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// MonitoringModule provides Prometheus metrics
var MonitoringModule = fx.Provide(
	monitoring.NewMetrics,
)

// DatasetModule provides the recipe dataset source
var DatasetModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.DataSource {
		dir := cfg.Dataset.Dir
		if cfg.Dataset.UseEmbedded {
			dir = ""
		}
		return dataset.NewJSONLoader(dir, log)
	},
)

// PipelineModule builds the retrieval pipeline and binds it to the
// inbound port.
var PipelineModule = fx.Provide(
	func(cfg *config.Config, source outbound.DataSource, metrics *monitoring.Metrics, log *zap.Logger) (*pipeline.Pipeline, error) {
		return pipeline.New(source, pipeline.Options{
			EmbeddingDimension: cfg.Pipeline.EmbeddingDimension,
			QueryCacheSize:     cfg.Pipeline.QueryCacheSize,
			GenerationSeed:     cfg.Generation.Seed,
			DefaultResults:     cfg.Pipeline.DefaultResults,
			MaxResults:         cfg.Pipeline.MaxResults,
		}, metrics, log)
	},
	func(p *pipeline.Pipeline) inbound.RecipePipeline {
		return p
	},
)

// HealthModule provides the health check registry
var HealthModule = fx.Provide(
	func(cfg *config.Config, p *pipeline.Pipeline, log *zap.Logger) *healthcheck.HealthCheck {
		hc := healthcheck.New(cfg.App.Version, log)

		hc.Register("index", healthcheck.NewCustomChecker("index", func(ctx context.Context) (healthcheck.Status, string, interface{}) {
			stats := p.Stats()
			if stats.IndexSize == 0 {
				return healthcheck.StatusDegraded, "vector index is empty", nil
			}
			return healthcheck.StatusHealthy, fmt.Sprintf("%d documents indexed", stats.IndexSize), map[string]interface{}{
				"documents":       stats.IndexSize,
				"recipes":         stats.TotalRecipes,
				"vocabulary_size": stats.VocabularySize,
			}
		}))

		return hc
	},
)

// HTTPModule provides the JSON API server
var HTTPModule = fx.Provide(
	apiserver.New,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	server *apiserver.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting NutriMatch application",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down NutriMatch application")

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
