package services_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bionicotaku/wedding-media-service/internal/models/po"
	"github.com/bionicotaku/wedding-media-service/internal/repositories"
	"github.com/bionicotaku/wedding-media-service/internal/services"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type noopTxManager struct{}

type noopSession struct{}

func (noopSession) Tx() pgx.Tx               { return nil }
func (noopSession) Context() context.Context { return context.Background() }

func (noopTxManager) WithinTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}

func (noopTxManager) WithinReadOnlyTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}

// memMediaStore 在内存中模拟 media_items 的状态迁移语义，并记录写操作顺序。
type memMediaStore struct {
	mu     sync.Mutex
	items  map[uuid.UUID]*po.MediaItem
	writes []string
	now    time.Time
}

func newMemMediaStore() *memMediaStore {
	return &memMediaStore{
		items: map[uuid.UUID]*po.MediaItem{},
		now:   time.Now().UTC(),
	}
}

func (m *memMediaStore) add(item *po.MediaItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = m.now
	}
	m.items[item.MediaID] = item
}

func (m *memMediaStore) writeLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

func (m *memMediaStore) GetByID(_ context.Context, _ txmanager.Session, mediaID uuid.UUID) (*po.MediaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[mediaID]
	if !ok {
		return nil, repositories.ErrMediaNotFound
	}
	clone := *item
	return &clone, nil
}

func (m *memMediaStore) MarkProcessing(_ context.Context, _ txmanager.Session, mediaID uuid.UUID, expected []po.UploadStatus) (*po.MediaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[mediaID]
	if !ok {
		return nil, repositories.ErrMediaNotFound
	}
	matched := false
	for _, s := range expected {
		if item.UploadStatus == s {
			matched = true
			break
		}
	}
	if !matched {
		return nil, repositories.ErrStatusConflict
	}
	now := time.Now().UTC()
	item.UploadStatus = po.UploadStatusProcessing
	item.ProcessingStartedAt = &now
	m.writes = append(m.writes, "mark_processing")
	clone := *item
	return &clone, nil
}

func (m *memMediaStore) MarkCompleted(_ context.Context, _ txmanager.Session, mediaID uuid.UUID, hostedVideoID, hostedVideoURL string) (*po.MediaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[mediaID]
	if !ok {
		return nil, repositories.ErrMediaNotFound
	}
	now := time.Now().UTC()
	item.UploadStatus = po.UploadStatusCompleted
	item.HostedVideoID = &hostedVideoID
	item.HostedVideoURL = &hostedVideoURL
	item.UploadError = nil
	item.ProcessedAt = &now
	m.writes = append(m.writes, "mark_completed")
	clone := *item
	return &clone, nil
}

func (m *memMediaStore) MarkFailed(_ context.Context, _ txmanager.Session, mediaID uuid.UUID, message string) (*po.MediaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[mediaID]
	if !ok {
		return nil, repositories.ErrMediaNotFound
	}
	now := time.Now().UTC()
	item.UploadStatus = po.UploadStatusFailed
	item.UploadError = &message
	item.FailedAt = &now
	m.writes = append(m.writes, "mark_failed")
	clone := *item
	return &clone, nil
}

func (m *memMediaStore) MarkQueued(_ context.Context, _ txmanager.Session, mediaID uuid.UUID) (*po.MediaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[mediaID]
	if !ok {
		return nil, repositories.ErrMediaNotFound
	}
	now := time.Now().UTC()
	item.UploadStatus = po.UploadStatusQueued
	item.QueuedAt = &now
	m.writes = append(m.writes, "mark_queued")
	clone := *item
	return &clone, nil
}

func (m *memMediaStore) Requeue(_ context.Context, _ txmanager.Session, mediaID uuid.UUID) (*po.MediaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[mediaID]
	if !ok {
		return nil, repositories.ErrMediaNotFound
	}
	now := time.Now().UTC()
	item.UploadStatus = po.UploadStatusQueued
	item.LastRetryAt = &now
	item.RetryCount++
	m.writes = append(m.writes, "requeue")
	clone := *item
	return &clone, nil
}

func (m *memMediaStore) ListQueuedVideos(_ context.Context, _ txmanager.Session, limit int32) ([]*po.MediaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var queued []*po.MediaItem
	for _, item := range m.items {
		if item.UploadStatus != po.UploadStatusQueued || !item.IsVideo() {
			continue
		}
		clone := *item
		queued = append(queued, &clone)
	}
	sort.Slice(queued, func(i, j int) bool {
		var ti, tj time.Time
		if queued[i].QueuedAt != nil {
			ti = *queued[i].QueuedAt
		}
		if queued[j].QueuedAt != nil {
			tj = *queued[j].QueuedAt
		}
		return ti.Before(tj)
	})
	if limit > 0 && int32(len(queued)) > limit {
		queued = queued[:limit]
	}
	return queued, nil
}

func (m *memMediaStore) StatusBreakdown(_ context.Context, _ txmanager.Session, since time.Time) ([]repositories.StatusCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	type key struct {
		kind   string
		status po.UploadStatus
	}
	grouped := map[key]int64{}
	for _, item := range m.items {
		if item.CreatedAt.Before(since) {
			continue
		}
		kind := item.ContentType
		if idx := strings.IndexByte(kind, '/'); idx >= 0 {
			kind = kind[:idx]
		}
		grouped[key{kind: kind, status: item.UploadStatus}]++
	}
	var counts []repositories.StatusCount
	for k, n := range grouped {
		counts = append(counts, repositories.StatusCount{
			ContentKind:  k.kind,
			UploadStatus: k.status,
			Count:        n,
		})
	}
	return counts, nil
}

// scriptedUploader 按媒体 URL 返回预设的结果。
type scriptedUploader struct {
	mu      sync.Mutex
	results map[string]scriptedResult
	calls   []string
}

type scriptedResult struct {
	videoID string
	err     error
}

func newScriptedUploader() *scriptedUploader {
	return &scriptedUploader{results: map[string]scriptedResult{}}
}

func (u *scriptedUploader) succeed(mediaURL, videoID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.results[mediaURL] = scriptedResult{videoID: videoID}
}

func (u *scriptedUploader) fail(mediaURL string, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.results[mediaURL] = scriptedResult{err: err}
}

func (u *scriptedUploader) Upload(_ context.Context, mediaURL string, _ services.VideoMetadata) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, mediaURL)
	res, ok := u.results[mediaURL]
	if !ok {
		res = scriptedResult{videoID: "video-default"}
	}
	if res.err != nil {
		return "", res.err
	}
	return res.videoID, nil
}

func (u *scriptedUploader) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.calls)
}

func quotaErr() error {
	return &services.UploadFailure{Kind: services.FailureQuotaExceeded, Message: "daily upload quota exceeded"}
}

func genericErr(msg string) error {
	return &services.UploadFailure{Kind: services.FailureGeneric, Message: msg}
}
