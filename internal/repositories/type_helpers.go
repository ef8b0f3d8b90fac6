package repositories

import (
	"time"

	"github.com/bionicotaku/wedding-media-service/internal/models/po"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// scanMediaItem 扫描一行 mediaColumns 顺序的结果集并转换为领域实体。
func scanMediaItem(row pgx.Row) (*po.MediaItem, error) {
	var (
		item           po.MediaItem
		title          pgtype.Text
		description    pgtype.Text
		hostedVideoID  pgtype.Text
		hostedVideoURL pgtype.Text
		uploadError    pgtype.Text
		processingAt   pgtype.Timestamptz
		processedAt    pgtype.Timestamptz
		failedAt       pgtype.Timestamptz
		queuedAt       pgtype.Timestamptz
		lastRetryAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&item.MediaID,
		&item.MediaURL,
		&item.ContentType,
		&title,
		&description,
		&item.UploadStatus,
		&hostedVideoID,
		&hostedVideoURL,
		&uploadError,
		&item.RetryCount,
		&processingAt,
		&processedAt,
		&failedAt,
		&queuedAt,
		&lastRetryAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Title = title.String
	item.Description = description.String
	item.HostedVideoID = textPtr(hostedVideoID)
	item.HostedVideoURL = textPtr(hostedVideoURL)
	item.UploadError = textPtr(uploadError)
	item.ProcessingStartedAt = timestampPtr(processingAt)
	item.ProcessedAt = timestampPtr(processedAt)
	item.FailedAt = timestampPtr(failedAt)
	item.QueuedAt = timestampPtr(queuedAt)
	item.LastRetryAt = timestampPtr(lastRetryAt)
	return &item, nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	v := t.String
	return &v
}

func timestampPtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	v := ts.Time.UTC()
	return &v
}
