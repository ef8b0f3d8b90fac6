package services

import (
	"context"
	"time"

	"github.com/bionicotaku/wedding-media-service/internal/models/po"
	"github.com/bionicotaku/wedding-media-service/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/uuid"
)

// MediaStore 定义业务用例所需的媒体记录持久化能力，由
// repositories.MediaRepository 实现。
type MediaStore interface {
	GetByID(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID) (*po.MediaItem, error)
	MarkProcessing(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID, expected []po.UploadStatus) (*po.MediaItem, error)
	MarkCompleted(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID, hostedVideoID, hostedVideoURL string) (*po.MediaItem, error)
	MarkFailed(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID, message string) (*po.MediaItem, error)
	MarkQueued(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID) (*po.MediaItem, error)
	Requeue(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID) (*po.MediaItem, error)
	ListQueuedVideos(ctx context.Context, sess txmanager.Session, limit int32) ([]*po.MediaItem, error)
	StatusBreakdown(ctx context.Context, sess txmanager.Session, since time.Time) ([]repositories.StatusCount, error)
}

// MediaUploader 定义把一条媒体推送到托管方的能力，由 UploaderService 实现。
type MediaUploader interface {
	Upload(ctx context.Context, mediaURL string, meta VideoMetadata) (string, error)
}
