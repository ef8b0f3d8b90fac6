package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bionicotaku/wedding-media-service/internal/conf"
	"github.com/bionicotaku/wedding-media-service/internal/models/po"
	"github.com/bionicotaku/wedding-media-service/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
)

// SweepSummary 汇总一轮扫描的结果。配额耗尽导致的重新排队计入 Failed：
// 这一轮确实没有把记录推进到 completed。
type SweepSummary struct {
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// SweeperService 每日把 queued 的视频按排队时间从旧到新重试，批量上限由
// 配额成本模型决定（MaxDailyUploads）。
type SweeperService struct {
	repo           MediaStore
	uploader       MediaUploader
	txm            txmanager.Manager
	maxRetryCycles int32
	log            *log.Helper
}

// NewSweeperService 构造 SweeperService。
func NewSweeperService(
	repo MediaStore,
	uploader MediaUploader,
	txm txmanager.Manager,
	cfg *conf.Sweeper,
	logger log.Logger,
) *SweeperService {
	maxRetryCycles := int32(30)
	if cfg != nil && cfg.MaxRetryCycles > 0 {
		maxRetryCycles = cfg.MaxRetryCycles
	}
	return &SweeperService{
		repo:           repo,
		uploader:       uploader,
		txm:            txm,
		maxRetryCycles: maxRetryCycles,
		log:            log.NewHelper(logger),
	}
}

// Sweep 执行一轮重试。批内记录并发处理且互不短路：任何一条的失败都不会
// 阻止其余记录消费当天的配额。返回 error 仅当排队列表本身取不出来。
func (s *SweeperService) Sweep(ctx context.Context) (SweepSummary, error) {
	items, err := s.repo.ListQueuedVideos(ctx, nil, MaxDailyUploads)
	if err != nil {
		return SweepSummary{}, fmt.Errorf("list queued videos: %w", err)
	}
	if len(items) == 0 {
		s.log.WithContext(ctx).Info("sweeper: nothing queued, skipping run")
		return SweepSummary{}, nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		summary SweepSummary
	)
	for _, item := range items {
		wg.Add(1)
		go func(item *po.MediaItem) {
			defer wg.Done()
			outcome := s.retryOne(ctx, item)
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case retrySucceeded:
				summary.Processed++
				summary.Successful++
			case retryFailed:
				summary.Processed++
				summary.Failed++
			case retrySkipped:
			}
		}(item)
	}
	wg.Wait()

	s.log.WithContext(ctx).Infof("sweeper: run complete processed=%d successful=%d failed=%d",
		summary.Processed, summary.Successful, summary.Failed)
	return summary, nil
}

type retryOutcome int

const (
	retrySkipped retryOutcome = iota
	retrySucceeded
	retryFailed
)

// retryOne 重试单条记录。配额耗尽走 Requeue（不写 failed_at，与首次失败
// 路径不对称）；重试周期用尽的记录直接判死信，不再消耗配额。
func (s *SweeperService) retryOne(ctx context.Context, item *po.MediaItem) retryOutcome {
	if item.RetryCount >= s.maxRetryCycles {
		if _, err := s.repo.MarkFailed(ctx, nil, item.MediaID,
			fmt.Sprintf("retry budget exhausted after %d daily cycles", item.RetryCount)); err != nil {
			s.log.WithContext(ctx).Errorf("sweeper: dead-letter media_id=%s err=%v", item.MediaID, err)
		} else {
			s.log.WithContext(ctx).Warnf("sweeper: media_id=%s dead-lettered after %d cycles", item.MediaID, item.RetryCount)
		}
		return retryFailed
	}

	var claimed *po.MediaItem
	err := s.txm.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var markErr error
		claimed, markErr = s.repo.MarkProcessing(txCtx, sess, item.MediaID, []po.UploadStatus{po.UploadStatusQueued})
		return markErr
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) || errors.Is(err, repositories.ErrMediaNotFound) {
			s.log.WithContext(ctx).Infof("sweeper: media_id=%s no longer queued, skipping", item.MediaID)
			return retrySkipped
		}
		s.log.WithContext(ctx).Errorf("sweeper: claim media_id=%s err=%v", item.MediaID, err)
		return retryFailed
	}

	videoID, uploadErr := s.uploader.Upload(ctx, claimed.MediaURL, videoMetadataFor(claimed))
	if uploadErr == nil {
		if _, err := s.repo.MarkCompleted(ctx, nil, claimed.MediaID, videoID, WatchURL(videoID)); err != nil {
			s.log.WithContext(ctx).Errorf("sweeper: mark completed media_id=%s err=%v", claimed.MediaID, err)
			return retryFailed
		}
		s.log.WithContext(ctx).Infof("sweeper: media_id=%s uploaded hosted_video_id=%s", claimed.MediaID, videoID)
		return retrySucceeded
	}

	if IsQuotaExceeded(uploadErr) {
		if _, err := s.repo.Requeue(ctx, nil, claimed.MediaID); err != nil {
			s.log.WithContext(ctx).Errorf("sweeper: requeue media_id=%s err=%v", claimed.MediaID, err)
		} else {
			s.log.WithContext(ctx).Warnf("sweeper: media_id=%s quota exhausted again, requeued", claimed.MediaID)
		}
		return retryFailed
	}

	if _, err := s.repo.MarkFailed(ctx, nil, claimed.MediaID, uploadErr.Error()); err != nil {
		s.log.WithContext(ctx).Errorf("sweeper: mark failed media_id=%s err=%v", claimed.MediaID, err)
	}
	s.log.WithContext(ctx).Warnf("sweeper: media_id=%s retry failed kind=%s err=%v",
		claimed.MediaID, FailureKindOf(uploadErr), uploadErr)
	return retryFailed
}
