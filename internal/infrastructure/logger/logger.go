package logger

import (
	"context"
	"os"

	gclog "github.com/bionicotaku/lingo-utils/gclog"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel/trace"
)

// Config captures runtime metadata used to annotate logs.
type Config struct {
	Service string
	Version string
	HostID  string
	Env     string
}

// NewLogger builds a Kratos-compatible structured logger. Every entry carries
// the service identity plus trace/span IDs when a span is active on the
// request context.
func NewLogger(cfg Config) (log.Logger, error) {
	baseLogger, err := gclog.NewLogger(
		gclog.WithService(cfg.Service),
		gclog.WithVersion(cfg.Version),
		gclog.WithEnvironment(cfg.Env),
		gclog.WithStaticLabels(map[string]string{"service.id": cfg.HostID}),
		gclog.EnableSourceLocation(),
	)
	if err != nil {
		return nil, err
	}
	return log.With(baseLogger,
		"trace_id", spanValuer(func(sc trace.SpanContext) (string, bool) {
			return sc.TraceID().String(), sc.HasTraceID()
		}),
		"span_id", spanValuer(func(sc trace.SpanContext) (string, bool) {
			return sc.SpanID().String(), sc.HasSpanID()
		}),
	), nil
}

func spanValuer(extract func(trace.SpanContext) (string, bool)) log.Valuer {
	return func(ctx context.Context) interface{} {
		if v, ok := extract(trace.SpanContextFromContext(ctx)); ok {
			return v
		}
		return ""
	}
}

// DefaultConfig builds Config from environment defaults.
func DefaultConfig(service, version string) Config {
	if service == "" {
		service = "wedding-media"
	}
	if version == "" {
		version = "dev"
	}
	host, _ := os.Hostname()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	return Config{Service: service, Version: version, HostID: host, Env: env}
}
