// Package server 装配管理面 HTTP 服务与共享遥测。
package server

import (
	stdhttp "net/http"
	"time"

	"github.com/bionicotaku/wedding-media-service/internal/conf"
	"github.com/bionicotaku/wedding-media-service/internal/controllers"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	kmetrics "github.com/go-kratos/kratos/v2/middleware/metrics"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(
	c *conf.Server,
	summary *controllers.SummaryHandler,
	telemetry *Telemetry,
	pool *pgxpool.Pool,
	logger log.Logger,
) *http.Server {
	middlewares := []middleware.Middleware{
		recovery.Recovery(),
		logging.Server(logger),
	}
	if telemetry != nil {
		middlewares = append(middlewares, kmetrics.Server(
			kmetrics.WithRequests(telemetry.RequestCounter),
			kmetrics.WithSeconds(telemetry.SecondsHistogram),
		))
	}

	var opts = []http.ServerOption{
		http.Middleware(middlewares...),
	}
	if c != nil && c.HTTP != nil {
		if c.HTTP.Network != "" {
			opts = append(opts, http.Network(c.HTTP.Network))
		}
		if c.HTTP.Addr != "" {
			opts = append(opts, http.Address(c.HTTP.Addr))
		}
		if c.HTTP.TimeoutSeconds > 0 {
			opts = append(opts, http.Timeout(time.Duration(c.HTTP.TimeoutSeconds)*time.Second))
		}
	}

	srv := http.NewServer(opts...)

	srv.Handle("/healthz", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
	}))

	srv.Handle("/readyz", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				w.WriteHeader(stdhttp.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(stdhttp.StatusOK)
	}))

	if telemetry != nil && telemetry.PrometheusRegistry != nil {
		srv.Handle("/metrics", promhttp.HandlerFor(telemetry.PrometheusRegistry, promhttp.HandlerOpts{}))
	}

	srv.Handle("/admin/media/summary", summary)
	return srv
}
