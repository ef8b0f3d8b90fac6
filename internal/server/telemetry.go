package server

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	kmetrics "github.com/go-kratos/kratos/v2/middleware/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	promexp "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// meterName 是管理面 HTTP 指标使用的 meter 名称。
const meterName = "wedding-media.server"

// Telemetry 聚合管理面需要的指标仪表：请求计数、时延直方图，以及
// 暴露给 /metrics 的 Prometheus registry。
type Telemetry struct {
	MeterProvider      *sdkmetric.MeterProvider
	RequestCounter     metric.Int64Counter
	SecondsHistogram   metric.Float64Histogram
	PrometheusRegistry *prometheus.Registry
}

// NewTelemetry 构建全局 MeterProvider 并创建 HTTP 中间件所需的仪表。
// 设置为全局 provider 后，任务侧的计数器也经由同一 registry 导出。
func NewTelemetry(logger log.Logger) (*Telemetry, func(), error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	exporter, err := promexp.New(
		promexp.WithRegisterer(registry),
		promexp.WithoutUnits(),
	)
	if err != nil {
		return nil, nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithView(kmetrics.DefaultSecondsHistogramView(kmetrics.DefaultServerSecondsHistogramName)),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter(meterName)
	requestCounter, err := kmetrics.DefaultRequestsCounter(meter, kmetrics.DefaultServerRequestsCounterName)
	if err != nil {
		return nil, nil, err
	}
	secondsHistogram, err := kmetrics.DefaultSecondsHistogram(meter, kmetrics.DefaultServerSecondsHistogramName)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := mp.Shutdown(ctx); shutdownErr != nil {
			log.NewHelper(logger).Warnf("shutdown meter provider: %v", shutdownErr)
		}
	}

	return &Telemetry{
		MeterProvider:      mp,
		RequestCounter:     requestCounter,
		SecondsHistogram:   secondsHistogram,
		PrometheusRegistry: registry,
	}, cleanup, nil
}
