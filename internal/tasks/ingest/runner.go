package ingest

import (
	"context"
	"fmt"

	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Runner 封装媒体创建事件的消费循环。
type Runner struct {
	subscriber gcpubsub.Subscriber
	handler    *Handler
	decoder    *eventDecoder
	metrics    *ingestMetrics
	logger     *log.Helper
}

// RunnerParams 注入 Runner 所需依赖。
type RunnerParams struct {
	Subscriber gcpubsub.Subscriber
	Handler    *Handler
	Logger     log.Logger
}

// NewRunner 构造创建事件 Runner。
func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Subscriber == nil {
		return nil, fmt.Errorf("ingest: subscriber is required")
	}
	if params.Handler == nil {
		return nil, fmt.Errorf("ingest: handler is required")
	}
	helper := log.NewHelper(params.Logger)
	meter := otel.GetMeterProvider().Meter("wedding-media.ingest")
	return &Runner{
		subscriber: params.Subscriber,
		handler:    params.Handler,
		decoder:    newDecoder(),
		metrics:    newIngestMetrics(meter, helper),
		logger:     helper,
	}, nil
}

// Run 启动消费循环，直到 context 取消。
func (r *Runner) Run(ctx context.Context) error {
	if r == nil || r.subscriber == nil {
		return nil
	}
	return r.subscriber.Receive(ctx, r.processMessage)
}

// processMessage 的返回值决定 ack/nack：解码失败与非目标事件直接吞掉，
// 只有业务处理的基础设施故障才触发重投。
func (r *Runner) processMessage(ctx context.Context, msg *gcpubsub.Message) error {
	if msg == nil {
		return nil
	}
	if eventType := msg.Attributes["event_type"]; eventType != "" && eventType != EventTypeMediaCreated {
		return nil
	}

	evt, err := r.decoder.Decode(msg.Data)
	if err != nil {
		r.logger.WithContext(ctx).Warnw("msg", "decode media created event failed", "error", err)
		r.metrics.recordDropped(ctx)
		return nil
	}

	if err := r.handler.Handle(ctx, evt); err != nil {
		r.metrics.recordFailure(ctx, err)
		return err
	}
	r.metrics.recordHandled(ctx)
	return nil
}

type ingestMetrics struct {
	handled metric.Int64Counter
	failure metric.Int64Counter
	dropped metric.Int64Counter
	helper  *log.Helper
	enabled bool
}

const (
	metricNameIngestHandled = "media_ingest_handled_total"
	metricNameIngestFailure = "media_ingest_failure_total"
	metricNameIngestDropped = "media_ingest_dropped_total"
)

func newIngestMetrics(meter metric.Meter, helper *log.Helper) *ingestMetrics {
	m := &ingestMetrics{helper: helper}
	if meter == nil {
		return m
	}

	var err error
	if m.handled, err = meter.Int64Counter(metricNameIngestHandled,
		metric.WithDescription("Number of media created events handled successfully")); err != nil {
		helper.Warnf("ingest metrics: register handled counter: %v", err)
		return m
	}
	if m.failure, err = meter.Int64Counter(metricNameIngestFailure,
		metric.WithDescription("Number of media created events that failed processing")); err != nil {
		helper.Warnf("ingest metrics: register failure counter: %v", err)
	}
	if m.dropped, err = meter.Int64Counter(metricNameIngestDropped,
		metric.WithDescription("Number of undecodable media created events dropped")); err != nil {
		helper.Warnf("ingest metrics: register dropped counter: %v", err)
	}
	m.enabled = true
	return m
}

func (m *ingestMetrics) recordHandled(ctx context.Context) {
	if m == nil || !m.enabled || m.handled == nil {
		return
	}
	m.handled.Add(ctx, 1)
}

func (m *ingestMetrics) recordFailure(ctx context.Context, err error) {
	if m == nil || !m.enabled {
		return
	}
	if m.failure != nil {
		m.failure.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "handler")))
	}
	if m.helper != nil {
		m.helper.WithContext(ctx).Warnw("msg", "media created event failed", "error", err)
	}
}

func (m *ingestMetrics) recordDropped(ctx context.Context) {
	if m == nil || !m.enabled || m.dropped == nil {
		return
	}
	m.dropped.Add(ctx, 1)
}
