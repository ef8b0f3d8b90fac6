package test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/pubsub/pstest"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/bionicotaku/wedding-media-service/internal/services"
	"github.com/bionicotaku/wedding-media-service/internal/tasks/ingest"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	e2eProjectID      = "wedding-e2e"
	e2eTopicID        = "media-events"
	e2eSubscriptionID = "media-events-video-mirror"
)

// mirrorE2EEnv 在 mediaEnv 之上补齐 Pub/Sub 模拟器与消费 Runner。
type mirrorE2EEnv struct {
	*mediaEnv
	publisher  gcpubsub.Publisher
	stopRunner func()
	runnerErr  chan error
	teardown   []func()
}

func newMirrorE2EEnv(t *testing.T) *mirrorE2EEnv {
	t.Helper()

	base := newMediaEnv(t)
	env := &mirrorE2EEnv{mediaEnv: base}
	env.teardown = append(env.teardown, base.shutdown)

	srv := pstest.NewServer()
	env.teardown = append(env.teardown, func() { _ = srv.Close() })

	ctx := base.ctx
	_, err := srv.GServer.CreateTopic(ctx, &pubsubpb.Topic{
		Name: fmt.Sprintf("projects/%s/topics/%s", e2eProjectID, e2eTopicID),
	})
	require.NoError(t, err)
	_, err = srv.GServer.CreateSubscription(ctx, &pubsubpb.Subscription{
		Name:               fmt.Sprintf("projects/%s/subscriptions/%s", e2eProjectID, e2eSubscriptionID),
		Topic:              fmt.Sprintf("projects/%s/topics/%s", e2eProjectID, e2eTopicID),
		AckDeadlineSeconds: 10,
	})
	require.NoError(t, err)

	logger := log.NewStdLogger(io.Discard)
	component, cleanupComponent, err := gcpubsub.NewComponent(ctx, gcpubsub.Config{
		ProjectID:        e2eProjectID,
		TopicID:          e2eTopicID,
		SubscriptionID:   e2eSubscriptionID,
		EnableLogging:    boolPtr(false),
		EnableMetrics:    boolPtr(false),
		EmulatorEndpoint: srv.Addr,
	}, gcpubsub.Dependencies{Logger: logger})
	require.NoError(t, err)
	env.teardown = append(env.teardown, cleanupComponent)

	env.publisher = gcpubsub.ProvidePublisher(component)
	subscriber := gcpubsub.ProvideSubscriber(component)

	ingestSvc := services.NewIngestService(base.repo, base.uploader, base.txMgr, logger)
	handler := ingest.NewHandler(ingestSvc, logger)
	runner, err := ingest.NewRunner(ingest.RunnerParams{
		Subscriber: subscriber,
		Handler:    handler,
		Logger:     logger,
	})
	require.NoError(t, err)

	runCtx, stop := context.WithCancel(ctx)
	env.runnerErr = make(chan error, 1)
	go func() {
		env.runnerErr <- runner.Run(runCtx)
	}()
	env.stopRunner = stop

	return env
}

func (e *mirrorE2EEnv) Shutdown(t *testing.T) {
	t.Helper()

	e.stopRunner()
	select {
	case err := <-e.runnerErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("runner exited with error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("runner did not stop within 2s")
	}
	for i := len(e.teardown) - 1; i >= 0; i-- {
		e.teardown[i]()
	}
}

func (e *mirrorE2EEnv) publishCreated(t *testing.T, mediaID uuid.UUID, contentType string) {
	t.Helper()

	payload, err := json.Marshal(map[string]string{
		"media_id":     mediaID.String(),
		"content_type": contentType,
	})
	require.NoError(t, err)

	_, err = e.publisher.Publish(e.ctx, gcpubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type": ingest.EventTypeMediaCreated,
		},
	})
	require.NoError(t, err)
}

func TestMediaMirrorEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skip e2e in short mode")
	}
	t.Parallel()

	env := newMirrorE2EEnv(t)
	defer env.Shutdown(t)

	video := env.insertVideo(t, "First dance")
	env.publishCreated(t, video.MediaID, video.ContentType)

	mirrored := env.waitForStatus(t, video.MediaID, 15*time.Second, "completed")
	require.NotNil(t, mirrored.HostedVideoID)
	require.NotNil(t, mirrored.HostedVideoURL)
	require.True(t, strings.HasPrefix(*mirrored.HostedVideoURL, "https://www.youtube.com/watch?v="))
	require.NotNil(t, mirrored.ProcessedAt)
	require.Equal(t, 1, env.host.submitCount())

	// 照片事件不触发镜像，记录保持 pending 且不产生托管调用。
	photo := env.insertPhoto(t)
	env.publishCreated(t, photo.MediaID, photo.ContentType)

	time.Sleep(2 * time.Second)
	untouched, err := env.repo.GetByID(env.ctx, nil, photo.MediaID)
	require.NoError(t, err)
	require.Equal(t, "pending", string(untouched.UploadStatus))
	require.Nil(t, untouched.ProcessingStartedAt)
	require.Equal(t, 1, env.host.submitCount())

	// 指向不存在记录的事件被丢弃，不影响后续消费。
	env.publishCreated(t, uuid.New(), "video/mp4")

	second := env.insertVideo(t, "Toast speeches")
	env.publishCreated(t, second.MediaID, second.ContentType)
	env.waitForStatus(t, second.MediaID, 15*time.Second, "completed")
}

func TestMediaMirrorQuotaDetourEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skip e2e in short mode")
	}
	t.Parallel()

	env := newMirrorE2EEnv(t)
	defer env.Shutdown(t)

	env.host.setBudget(0)

	video := env.insertVideo(t, "Cake cutting")
	env.publishCreated(t, video.MediaID, video.ContentType)

	queued := env.waitForStatus(t, video.MediaID, 15*time.Second, "queued")
	require.NotNil(t, queued.QueuedAt)
	require.NotNil(t, queued.FailedAt, "quota detour keeps the failure timestamp")
	require.NotNil(t, queued.UploadError)
	require.Contains(t, *queued.UploadError, "quota")

	// 次日配额恢复后，清扫任务应完成镜像。
	env.host.setBudget(1)
	logger := log.NewStdLogger(io.Discard)
	sweeper := services.NewSweeperService(env.repo, env.uploader, env.txMgr, nil, logger)

	summary, err := sweeper.Sweep(env.ctx)
	require.NoError(t, err)
	require.Equal(t, services.SweepSummary{Processed: 1, Successful: 1, Failed: 0}, summary)

	done := env.waitForStatus(t, video.MediaID, 5*time.Second, "completed")
	require.NotNil(t, done.HostedVideoURL)
}

func TestSweepSummaryCountsQuotaRequeuesAsFailed(t *testing.T) {
	if testing.Short() {
		t.Skip("skip e2e in short mode")
	}
	t.Parallel()

	env := newMediaEnv(t)
	defer env.shutdown()

	var queued []uuid.UUID
	for i := 0; i < 6; i++ {
		item := env.insertVideo(t, fmt.Sprintf("Clip %d", i))
		_, err := env.repo.MarkFailed(env.ctx, nil, item.MediaID, "quota exceeded")
		require.NoError(t, err)
		_, err = env.repo.MarkQueued(env.ctx, nil, item.MediaID)
		require.NoError(t, err)
		queued = append(queued, item.MediaID)
	}

	env.host.setBudget(2)
	logger := log.NewStdLogger(io.Discard)
	sweeper := services.NewSweeperService(env.repo, env.uploader, env.txMgr, nil, logger)

	summary, err := sweeper.Sweep(env.ctx)
	require.NoError(t, err)
	require.Equal(t, services.SweepSummary{Processed: 6, Successful: 2, Failed: 4}, summary)

	completed, stillQueued := 0, 0
	for _, id := range queued {
		item, getErr := env.repo.GetByID(env.ctx, nil, id)
		require.NoError(t, getErr)
		switch string(item.UploadStatus) {
		case "completed":
			completed++
		case "queued":
			stillQueued++
			require.Equal(t, int32(1), item.RetryCount)
			require.NotNil(t, item.LastRetryAt)
		default:
			t.Fatalf("unexpected status %s for %s", item.UploadStatus, id)
		}
	}
	require.Equal(t, 2, completed)
	require.Equal(t, 4, stillQueued)
}
