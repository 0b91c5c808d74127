package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/DragonRU1/silentauth/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

type appMetricsSet struct {
	repoOpCounter            metric.Int64Counter
	sessionTransitionCounter metric.Int64Counter
	resolveCounter           metric.Int64Counter
	resolveCandidates        metric.Int64Histogram
	authLoginCounter         metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *appMetricsSet
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter("silentauth")
	repoOps, err := meter.Int64Counter("repository.operations")
	if err != nil {
		return nil, err
	}
	transitions, err := meter.Int64Counter("session.transitions")
	if err != nil {
		return nil, err
	}
	resolves, err := meter.Int64Counter("apikey.resolve.attempts")
	if err != nil {
		return nil, err
	}
	candidates, err := meter.Int64Histogram("apikey.resolve.candidates")
	if err != nil {
		return nil, err
	}
	logins, err := meter.Int64Counter("auth.login.attempts")
	if err != nil {
		return nil, err
	}

	metricsMu.Lock()
	appMetrics = &appMetricsSet{
		repoOpCounter:            repoOps,
		sessionTransitionCounter: transitions,
		resolveCounter:           resolves,
		resolveCandidates:        candidates,
		authLoginCounter:         logins,
	}
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func loadMetrics() *appMetricsSet {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

// RecordRepositoryOperation counts a single store access by entity, operation
// and outcome. Repositories call it after every query.
func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.repoOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordSessionTransition counts a session state change, including the lazy
// expiry performed on the read path.
func RecordSessionTransition(ctx context.Context, from, to, trigger string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.sessionTransitionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
		attribute.String("trigger", trigger),
	))
}

// RecordApiKeyResolve counts a credential resolution attempt and the size of
// the candidate set the resolver had to hash-compare against.
func RecordApiKeyResolve(ctx context.Context, outcome string, candidates int) {
	m := loadMetrics()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.resolveCounter.Add(ctx, 1, attrs)
	m.resolveCandidates.Record(ctx, int64(candidates), attrs)
}

func RecordAuthLogin(ctx context.Context, status string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.authLoginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
