// Package sweeper 以每日节奏重试因配额耗尽而排队的视频上传。
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/bionicotaku/wedding-media-service/internal/conf"
	"github.com/bionicotaku/wedding-media-service/internal/services"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Task 按配置的本地时刻每日触发一轮扫描。配额在托管方按太平洋时间午夜
// 重置，默认触发点选在午夜后不久。
type Task struct {
	sweeper  *services.SweeperService
	hour     int
	minute   int
	location *time.Location
	metrics  *sweepMetrics
	clock    func() time.Time
	log      *log.Helper
}

// NewTask 构造每日扫描任务。
func NewTask(sweeper *services.SweeperService, cfg *conf.Sweeper, logger log.Logger) (*Task, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("sweeper: service is required")
	}

	runAt := "00:10"
	timezone := "America/Los_Angeles"
	if cfg != nil {
		if cfg.RunAt != "" {
			runAt = cfg.RunAt
		}
		if cfg.Timezone != "" {
			timezone = cfg.Timezone
		}
	}

	hour, minute, err := parseRunAt(runAt)
	if err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("sweeper: load timezone %q: %w", timezone, err)
	}

	helper := log.NewHelper(logger)
	meter := otel.GetMeterProvider().Meter("wedding-media.sweeper")
	return &Task{
		sweeper:  sweeper,
		hour:     hour,
		minute:   minute,
		location: location,
		metrics:  newSweepMetrics(meter, helper),
		clock:    time.Now,
		log:      helper,
	}, nil
}

// WithClock 提供测试替换时钟的能力。
func (t *Task) WithClock(fn func() time.Time) {
	if fn != nil {
		t.clock = fn
	}
}

// Run 启动每日循环，直到 context 取消。单轮失败只记录，不结束循环。
func (t *Task) Run(ctx context.Context) error {
	for {
		now := t.clock().In(t.location)
		next := nextRunAfter(now, t.hour, t.minute)
		t.log.WithContext(ctx).Infof("sweeper: next run scheduled at %s", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if _, err := t.RunOnce(ctx); err != nil {
			t.log.WithContext(ctx).Errorf("sweeper: run failed: %v", err)
		}
	}
}

// RunOnce 立即执行一轮扫描并上报指标。
func (t *Task) RunOnce(ctx context.Context) (services.SweepSummary, error) {
	started := t.clock()
	summary, err := t.sweeper.Sweep(ctx)
	if err != nil {
		t.metrics.recordRun(ctx, summary, "error")
		return summary, err
	}
	t.metrics.recordRun(ctx, summary, "ok")
	t.log.WithContext(ctx).Infof("sweeper: run took %s processed=%d successful=%d failed=%d",
		t.clock().Sub(started).Round(time.Millisecond), summary.Processed, summary.Successful, summary.Failed)
	return summary, nil
}

type sweepMetrics struct {
	runs       metric.Int64Counter
	successful metric.Int64Counter
	failed     metric.Int64Counter
	helper     *log.Helper
	enabled    bool
}

const (
	metricNameSweepRuns       = "media_sweep_runs_total"
	metricNameSweepSuccessful = "media_sweep_uploads_successful_total"
	metricNameSweepFailed     = "media_sweep_uploads_failed_total"
)

func newSweepMetrics(meter metric.Meter, helper *log.Helper) *sweepMetrics {
	m := &sweepMetrics{helper: helper}
	if meter == nil {
		return m
	}

	var err error
	if m.runs, err = meter.Int64Counter(metricNameSweepRuns,
		metric.WithDescription("Number of daily retry sweeps executed")); err != nil {
		helper.Warnf("sweep metrics: register runs counter: %v", err)
		return m
	}
	if m.successful, err = meter.Int64Counter(metricNameSweepSuccessful,
		metric.WithDescription("Number of queued videos uploaded successfully by the sweeper")); err != nil {
		helper.Warnf("sweep metrics: register successful counter: %v", err)
	}
	if m.failed, err = meter.Int64Counter(metricNameSweepFailed,
		metric.WithDescription("Number of queued videos that failed or were requeued by the sweeper")); err != nil {
		helper.Warnf("sweep metrics: register failed counter: %v", err)
	}
	m.enabled = true
	return m
}

func (m *sweepMetrics) recordRun(ctx context.Context, summary services.SweepSummary, status string) {
	if m == nil || !m.enabled {
		return
	}
	if m.runs != nil {
		m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
	if m.successful != nil && summary.Successful > 0 {
		m.successful.Add(ctx, int64(summary.Successful))
	}
	if m.failed != nil && summary.Failed > 0 {
		m.failed.Add(ctx, int64(summary.Failed))
	}
}
