package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/bionicotaku/wedding-media-service/internal/repositories"
	"github.com/bionicotaku/wedding-media-service/internal/services"

	"github.com/go-kratos/kratos/v2/log"
)

// Handler 处理一条媒体创建事件：交给 IngestService 走认领与上传链路。
type Handler struct {
	ingest *services.IngestService
	log    *log.Helper
}

// NewHandler 构造创建事件处理器。
func NewHandler(ingest *services.IngestService, logger log.Logger) *Handler {
	return &Handler{
		ingest: ingest,
		log:    log.NewHelper(logger),
	}
}

// Handle 执行创建事件的业务处理。返回 error 会触发消息重投，因此只有
// 基础设施故障才向上冒泡；记录缺失按孤儿事件告警后吞掉，避免毒消息循环。
func (h *Handler) Handle(ctx context.Context, evt *Event) error {
	if evt == nil {
		return fmt.Errorf("ingest: nil event payload")
	}
	if h.ingest == nil {
		return fmt.Errorf("ingest: handler not initialized")
	}

	outcome, err := h.ingest.ProcessCreated(ctx, evt.MediaID)
	if err != nil {
		if errors.Is(err, repositories.ErrMediaNotFound) {
			h.log.WithContext(ctx).Warnf("ingest: created event for unknown media_id=%s, dropping", evt.MediaID)
			return nil
		}
		return fmt.Errorf("ingest: process created media_id=%s: %w", evt.MediaID, err)
	}

	h.log.WithContext(ctx).Infof("ingest: media_id=%s outcome=%s", evt.MediaID, outcome)
	return nil
}
