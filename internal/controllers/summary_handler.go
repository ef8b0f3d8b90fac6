// Package controllers 暴露管理面的 HTTP Handler。
package controllers

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"time"

	"github.com/bionicotaku/wedding-media-service/internal/services"

	"github.com/go-kratos/kratos/v2/log"
)

const summaryTimeout = 5 * time.Second

// SummaryHandler 提供当日媒体状态汇总端点，供婚礼管理页轮询。
type SummaryHandler struct {
	summary *services.SummaryService
	log     *log.Helper
}

// NewSummaryHandler 构造汇总 Handler。
func NewSummaryHandler(summary *services.SummaryService, logger log.Logger) *SummaryHandler {
	return &SummaryHandler{
		summary: summary,
		log:     log.NewHelper(logger),
	}
}

// ServeHTTP 返回当日汇总的 JSON 表示。
func (h *SummaryHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	if r.Method != stdhttp.MethodGet {
		w.WriteHeader(stdhttp.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), summaryTimeout)
	defer cancel()

	report, err := h.summary.TodayReport(ctx)
	if err != nil {
		h.log.WithContext(ctx).Errorf("summary: build report failed: %v", err)
		w.WriteHeader(stdhttp.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.log.WithContext(ctx).Warnf("summary: encode report failed: %v", err)
	}
}
