package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bionicotaku/wedding-media-service/internal/models/po"
	"github.com/bionicotaku/wedding-media-service/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// IngestOutcome 标识一次创建事件处理的最终走向，用于任务层日志与指标。
type IngestOutcome string

const (
	// IngestSkippedNonVideo 表示记录不是视频，按约定不做任何写入。
	IngestSkippedNonVideo IngestOutcome = "skipped_non_video"
	// IngestSkippedClaimed 表示记录已被另一路认领（状态不再是 pending）。
	IngestSkippedClaimed IngestOutcome = "skipped_already_claimed"
	// IngestCompleted 表示上传成功。
	IngestCompleted IngestOutcome = "completed"
	// IngestFailed 表示上传失败且为终态。
	IngestFailed IngestOutcome = "failed"
	// IngestQueued 表示配额耗尽，记录进入 queued 等待次日重试。
	IngestQueued IngestOutcome = "queued"
)

// IngestService 消费媒体创建事件：视频记录走认领、上传、落状态的完整链路，
// 非视频记录零写入跳过。
type IngestService struct {
	repo     MediaStore
	uploader MediaUploader
	txm      txmanager.Manager
	log      *log.Helper
}

// NewIngestService 构造 IngestService。
func NewIngestService(
	repo MediaStore,
	uploader MediaUploader,
	txm txmanager.Manager,
	logger log.Logger,
) *IngestService {
	return &IngestService{
		repo:     repo,
		uploader: uploader,
		txm:      txm,
		log:      log.NewHelper(logger),
	}
}

// ProcessCreated 处理一条媒体创建事件。返回 error 仅代表基础设施故障
// （记录缺失、数据库不可用），调用方据此决定是否重投；上传本身的失败
// 会被写回记录状态，对消息层是成功消费。
func (s *IngestService) ProcessCreated(ctx context.Context, mediaID uuid.UUID) (IngestOutcome, error) {
	item, err := s.repo.GetByID(ctx, nil, mediaID)
	if err != nil {
		return "", fmt.Errorf("load media item %s: %w", mediaID, err)
	}

	if !item.IsVideo() {
		s.log.WithContext(ctx).Infof("ingest: skip non-video media_id=%s content_type=%s", mediaID, item.ContentType)
		return IngestSkippedNonVideo, nil
	}

	var claimed *po.MediaItem
	err = s.txm.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var markErr error
		claimed, markErr = s.repo.MarkProcessing(txCtx, sess, mediaID, []po.UploadStatus{po.UploadStatusPending})
		return markErr
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			s.log.WithContext(ctx).Infof("ingest: media_id=%s already claimed, skipping", mediaID)
			return IngestSkippedClaimed, nil
		}
		return "", fmt.Errorf("claim media item %s: %w", mediaID, err)
	}

	return s.attemptUpload(ctx, claimed)
}

// attemptUpload 执行上传并把结果落库。配额耗尽走不对称的双写：先写 failed
// 留下 failed_at 与错误文本，再写 queued 覆盖状态，两次写入都持久化。
func (s *IngestService) attemptUpload(ctx context.Context, item *po.MediaItem) (IngestOutcome, error) {
	videoID, uploadErr := s.uploader.Upload(ctx, item.MediaURL, videoMetadataFor(item))
	if uploadErr == nil {
		if _, err := s.repo.MarkCompleted(ctx, nil, item.MediaID, videoID, WatchURL(videoID)); err != nil {
			return "", fmt.Errorf("mark completed %s: %w", item.MediaID, err)
		}
		s.log.WithContext(ctx).Infof("ingest: media_id=%s uploaded hosted_video_id=%s", item.MediaID, videoID)
		return IngestCompleted, nil
	}

	if _, err := s.repo.MarkFailed(ctx, nil, item.MediaID, uploadErr.Error()); err != nil {
		return "", fmt.Errorf("mark failed %s: %w", item.MediaID, err)
	}

	if IsQuotaExceeded(uploadErr) {
		if _, err := s.repo.MarkQueued(ctx, nil, item.MediaID); err != nil {
			return "", fmt.Errorf("mark queued %s: %w", item.MediaID, err)
		}
		s.log.WithContext(ctx).Warnf("ingest: media_id=%s quota exhausted, queued for retry", item.MediaID)
		return IngestQueued, nil
	}

	s.log.WithContext(ctx).Warnf("ingest: media_id=%s upload failed kind=%s err=%v",
		item.MediaID, FailureKindOf(uploadErr), uploadErr)
	return IngestFailed, nil
}

// videoMetadataFor 从记录推导托管方元数据，缺失字段落到婚礼相册的默认文案。
func videoMetadataFor(item *po.MediaItem) VideoMetadata {
	meta := VideoMetadata{
		Title:       item.Title,
		Description: item.Description,
		Tags:        []string{"wedding", "guest upload"},
	}
	if meta.Title == "" {
		meta.Title = "Wedding guest video"
	}
	if meta.Description == "" {
		meta.Description = "Uploaded by a wedding guest."
	}
	return meta
}
