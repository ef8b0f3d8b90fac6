// Package repositories 实现数据访问层，封装 media.media_items 表的 SQL 操作。
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bionicotaku/wedding-media-service/internal/models/po"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrMediaNotFound 表示媒体记录不存在。
var ErrMediaNotFound = errors.New("media item not found")

// ErrStatusConflict 表示条件更新失败：记录存在但 upload_status 不在期望集合内。
// Ingest 与 Sweeper 以此判定记录已被另一路认领，直接跳过而不是重复上传。
var ErrStatusConflict = errors.New("upload status conflict")

const mediaColumns = `media_id, media_url, content_type, title, description,
	upload_status, hosted_video_id, hosted_video_url, upload_error, retry_count,
	processing_started_at, processed_at, failed_at, queued_at, last_retry_at,
	created_at, updated_at`

// MediaRepository 封装 media.media_items 表的访问逻辑。
type MediaRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewMediaRepository 构造 MediaRepository。
func NewMediaRepository(db *pgxpool.Pool, logger log.Logger) *MediaRepository {
	return &MediaRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// dbConn 抽象连接池与事务句柄的公共查询面，便于按需走事务会话。
type dbConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *MediaRepository) conn(sess txmanager.Session) dbConn {
	if sess != nil {
		return sess.Tx()
	}
	return r.db
}

// CreateMediaInput 描述来宾上传面写入一条媒体记录所需的字段。
type CreateMediaInput struct {
	MediaID     uuid.UUID
	MediaURL    string
	ContentType string
	Title       string
	Description string
}

// Insert 写入一条新的媒体记录，初始状态为 pending。content_type 归一为
// 小写，后续的前缀判断与范围查询都依赖这一约定。
func (r *MediaRepository) Insert(ctx context.Context, sess txmanager.Session, input CreateMediaInput) (*po.MediaItem, error) {
	if input.MediaID == uuid.Nil {
		input.MediaID = uuid.New()
	}
	row := r.conn(sess).QueryRow(ctx, `
		INSERT INTO media.media_items (media_id, media_url, content_type, title, description, upload_status)
		VALUES ($1, $2, lower($3), $4, $5, 'pending')
		RETURNING `+mediaColumns,
		input.MediaID, input.MediaURL, input.ContentType, input.Title, input.Description,
	)
	item, err := scanMediaItem(row)
	if err != nil {
		r.log.WithContext(ctx).Errorf("insert media item failed: media_id=%s err=%v", input.MediaID, err)
		return nil, fmt.Errorf("insert media item: %w", err)
	}
	return item, nil
}

// GetByID 查询指定 media_id 的记录。
func (r *MediaRepository) GetByID(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID) (*po.MediaItem, error) {
	row := r.conn(sess).QueryRow(ctx,
		`SELECT `+mediaColumns+` FROM media.media_items WHERE media_id = $1`, mediaID)
	item, err := scanMediaItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		r.log.WithContext(ctx).Errorf("get media item failed: media_id=%s err=%v", mediaID, err)
		return nil, fmt.Errorf("get media item: %w", err)
	}
	return item, nil
}

// MarkProcessing 以条件更新认领一次上传尝试：仅当当前状态落在 expected 集合内
// 才迁移到 processing 并写入 processing_started_at。零行命中时区分记录缺失
// 与状态竞争，后者返回 ErrStatusConflict。
func (r *MediaRepository) MarkProcessing(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID, expected []po.UploadStatus) (*po.MediaItem, error) {
	states := make([]string, 0, len(expected))
	for _, s := range expected {
		states = append(states, string(s))
	}

	row := r.conn(sess).QueryRow(ctx, `
		UPDATE media.media_items
		SET upload_status = 'processing',
		    processing_started_at = now(),
		    updated_at = now()
		WHERE media_id = $1 AND upload_status = ANY($2)
		RETURNING `+mediaColumns,
		mediaID, states,
	)
	item, err := scanMediaItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, sess, mediaID); getErr != nil {
				return nil, getErr
			}
			return nil, ErrStatusConflict
		}
		r.log.WithContext(ctx).Errorf("mark processing failed: media_id=%s err=%v", mediaID, err)
		return nil, fmt.Errorf("mark processing: %w", err)
	}
	return item, nil
}

// MarkCompleted 写入托管方视频标识并迁移到 completed，同时清空上一次的错误信息。
func (r *MediaRepository) MarkCompleted(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID, hostedVideoID, hostedVideoURL string) (*po.MediaItem, error) {
	row := r.conn(sess).QueryRow(ctx, `
		UPDATE media.media_items
		SET upload_status = 'completed',
		    hosted_video_id = $2,
		    hosted_video_url = $3,
		    upload_error = NULL,
		    processed_at = now(),
		    updated_at = now()
		WHERE media_id = $1
		RETURNING `+mediaColumns,
		mediaID, hostedVideoID, hostedVideoURL,
	)
	item, err := scanMediaItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		r.log.WithContext(ctx).Errorf("mark completed failed: media_id=%s err=%v", mediaID, err)
		return nil, fmt.Errorf("mark completed: %w", err)
	}
	return item, nil
}

// MarkFailed 迁移到 failed 并记录原因。
func (r *MediaRepository) MarkFailed(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID, message string) (*po.MediaItem, error) {
	row := r.conn(sess).QueryRow(ctx, `
		UPDATE media.media_items
		SET upload_status = 'failed',
		    upload_error = $2,
		    failed_at = now(),
		    updated_at = now()
		WHERE media_id = $1
		RETURNING `+mediaColumns,
		mediaID, message,
	)
	item, err := scanMediaItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		r.log.WithContext(ctx).Errorf("mark failed failed: media_id=%s err=%v", mediaID, err)
		return nil, fmt.Errorf("mark failed: %w", err)
	}
	return item, nil
}

// MarkQueued 在首次尝试配额耗尽时迁移到 queued。此前的 failed 写入不回滚，
// failed_at 与 upload_error 保留在记录上，由第二次写入覆盖状态。
func (r *MediaRepository) MarkQueued(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID) (*po.MediaItem, error) {
	row := r.conn(sess).QueryRow(ctx, `
		UPDATE media.media_items
		SET upload_status = 'queued',
		    queued_at = now(),
		    updated_at = now()
		WHERE media_id = $1
		RETURNING `+mediaColumns,
		mediaID,
	)
	item, err := scanMediaItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		r.log.WithContext(ctx).Errorf("mark queued failed: media_id=%s err=%v", mediaID, err)
		return nil, fmt.Errorf("mark queued: %w", err)
	}
	return item, nil
}

// Requeue 在重试再次遇到配额耗尽时把记录放回 queued：写 last_retry_at、
// 累加 retry_count，不触碰 failed_at/upload_error（与首次失败路径不对称，
// 与既有产品行为保持一致）。queued_at 保留原值以维持饥饿排序。
func (r *MediaRepository) Requeue(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID) (*po.MediaItem, error) {
	row := r.conn(sess).QueryRow(ctx, `
		UPDATE media.media_items
		SET upload_status = 'queued',
		    last_retry_at = now(),
		    retry_count = retry_count + 1,
		    updated_at = now()
		WHERE media_id = $1
		RETURNING `+mediaColumns,
		mediaID,
	)
	item, err := scanMediaItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		r.log.WithContext(ctx).Errorf("requeue failed: media_id=%s err=%v", mediaID, err)
		return nil, fmt.Errorf("requeue: %w", err)
	}
	return item, nil
}

// ListQueuedVideos 返回处于 queued 状态的视频记录，按 queued_at 升序（最久
// 饥饿的排在最前），数量受 limit 约束。
func (r *MediaRepository) ListQueuedVideos(ctx context.Context, sess txmanager.Session, limit int32) ([]*po.MediaItem, error) {
	if limit <= 0 {
		limit = 6
	}
	rows, err := r.conn(sess).Query(ctx, `
		SELECT `+mediaColumns+`
		FROM media.media_items
		WHERE upload_status = 'queued'
		  AND content_type >= 'video/' AND content_type < 'video0'
		ORDER BY queued_at ASC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		r.log.WithContext(ctx).Errorf("list queued videos failed: err=%v", err)
		return nil, fmt.Errorf("list queued videos: %w", err)
	}
	defer rows.Close()

	items := make([]*po.MediaItem, 0, limit)
	for rows.Next() {
		item, scanErr := scanMediaItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan queued video: %w", scanErr)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list queued videos: %w", err)
	}
	return items, nil
}

// StatusCount 是管理面汇总的一行：内容大类 + 状态 + 数量。
type StatusCount struct {
	ContentKind  string
	UploadStatus po.UploadStatus
	Count        int64
}

// StatusBreakdown 统计 since 之后创建的记录，按内容大类与状态分组。
func (r *MediaRepository) StatusBreakdown(ctx context.Context, sess txmanager.Session, since time.Time) ([]StatusCount, error) {
	rows, err := r.conn(sess).Query(ctx, `
		SELECT split_part(content_type, '/', 1) AS kind, upload_status, count(*)
		FROM media.media_items
		WHERE created_at >= $1
		GROUP BY kind, upload_status
		ORDER BY kind, upload_status`,
		since,
	)
	if err != nil {
		r.log.WithContext(ctx).Errorf("status breakdown failed: err=%v", err)
		return nil, fmt.Errorf("status breakdown: %w", err)
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.ContentKind, &c.UploadStatus, &c.Count); err != nil {
			return nil, fmt.Errorf("scan status breakdown: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("status breakdown: %w", err)
	}
	return counts, nil
}
