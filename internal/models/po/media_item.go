// Package po 定义面向持久化的数据对象（Persistent Objects），由 Repository 层使用。
package po

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadStatus 表示媒体记录在视频镜像流水线中的状态。
type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "pending"    // 记录已创建，尚未被流水线认领
	UploadStatusProcessing UploadStatus = "processing" // 一次上传尝试进行中
	UploadStatusCompleted  UploadStatus = "completed"  // 托管方已接收，hosted_video_id 就绪
	UploadStatusQueued     UploadStatus = "queued"     // 配额耗尽，等待次日重试
	UploadStatusFailed     UploadStatus = "failed"     // 本次尝试终止，不再自动重试
)

// MediaItem 描述 media.media_items 表中的一条来宾媒体记录。
// 照片类记录只占用基础字段；video/* 记录由镜像流水线驱动状态机。
type MediaItem struct {
	MediaID        uuid.UUID
	MediaURL       string
	ContentType    string
	Title          string
	Description    string
	UploadStatus   UploadStatus
	HostedVideoID  *string
	HostedVideoURL *string
	UploadError    *string
	RetryCount     int32

	// 每个时间戳只在对应状态迁移时由数据库 now() 写入一次。
	ProcessingStartedAt *time.Time
	ProcessedAt         *time.Time
	FailedAt            *time.Time
	QueuedAt            *time.Time
	LastRetryAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsVideo 判断记录是否属于视频流水线的处理范围。content_type 在写入时已
// 归一为小写（见 MediaRepository.Insert），与仓储层的范围查询共用同一约定。
func (m *MediaItem) IsVideo() bool {
	return strings.HasPrefix(m.ContentType, "video/")
}
