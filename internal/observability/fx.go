package observability

import (
	"github.com/orbitcrm/orbitcrm/internal/config"
	"github.com/orbitcrm/orbitcrm/internal/observability/logger"
	"github.com/orbitcrm/orbitcrm/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		provideLoggerConfig,
		logger.New,
		provideRegistry,
		metrics.NewHTTPMetrics,
	),
)

func provideLoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Version:     cfg.AppVersion,
		Level:       cfg.LogLevel,
	}
}

func provideRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}
