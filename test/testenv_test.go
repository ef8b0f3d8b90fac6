package test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/bionicotaku/wedding-media-service/internal/conf"
	"github.com/bionicotaku/wedding-media-service/internal/models/po"
	"github.com/bionicotaku/wedding-media-service/internal/repositories"
	"github.com/bionicotaku/wedding-media-service/internal/services"
	"github.com/docker/go-connections/nat"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"google.golang.org/api/googleapi"
)

// countingHost 模拟托管方：在成功预算耗尽后返回配额错误。
type countingHost struct {
	mu            sync.Mutex
	successBudget int
	submits       int
	seq           int
}

func (h *countingHost) Submit(_ context.Context, _, _ string, _ []string, media io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, media); err != nil {
		return "", err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.submits++
	if h.successBudget <= 0 {
		return "", &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "quotaExceeded"}}}
	}
	h.successBudget--
	h.seq++
	return fmt.Sprintf("yt-e2e-%d", h.seq), nil
}

func (h *countingHost) setBudget(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.successBudget = n
}

func (h *countingHost) submitCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.submits
}

// mediaEnv 聚合数据库、仓储与上传链路，供流水线测试复用。
type mediaEnv struct {
	ctx      context.Context
	pool     *pgxpool.Pool
	repo     *repositories.MediaRepository
	txMgr    txmanager.Manager
	host     *countingHost
	uploader *services.UploaderService
	origin   *httptest.Server
	shutdown func()
}

func newMediaEnv(t *testing.T) *mediaEnv {
	t.Helper()

	ctx := context.Background()
	dsn, terminate := startPostgres(ctx, t)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	applyMigrations(ctx, t, pool)

	logger := log.NewStdLogger(io.Discard)
	repo := repositories.NewMediaRepository(pool, logger)

	txMgr, err := txmanager.NewManager(pool, txmanager.Config{}, txmanager.Dependencies{Logger: logger})
	require.NoError(t, err)

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("wedding-clip-bytes-", 512)))
	}))

	host := &countingHost{successBudget: 1 << 20}
	uploader, err := services.NewUploaderService(host, &conf.Uploader{
		FetchTimeoutSeconds: 30,
		TempDir:             t.TempDir(),
	}, logger)
	require.NoError(t, err)

	return &mediaEnv{
		ctx:      ctx,
		pool:     pool,
		repo:     repo,
		txMgr:    txMgr,
		host:     host,
		uploader: uploader,
		origin:   origin,
		shutdown: func() {
			origin.Close()
			pool.Close()
			terminate()
		},
	}
}

func (e *mediaEnv) insertVideo(t *testing.T, title string) *po.MediaItem {
	t.Helper()
	item, err := e.repo.Insert(e.ctx, nil, repositories.CreateMediaInput{
		MediaURL:    e.origin.URL + "/" + uuid.NewString() + ".mp4",
		ContentType: "video/mp4",
		Title:       title,
	})
	require.NoError(t, err)
	return item
}

func (e *mediaEnv) insertPhoto(t *testing.T) *po.MediaItem {
	t.Helper()
	item, err := e.repo.Insert(e.ctx, nil, repositories.CreateMediaInput{
		MediaURL:    e.origin.URL + "/" + uuid.NewString() + ".jpg",
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	return item
}

func (e *mediaEnv) waitForStatus(t *testing.T, mediaID uuid.UUID, timeout time.Duration, want po.UploadStatus) *po.MediaItem {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		item, err := e.repo.GetByID(e.ctx, nil, mediaID)
		require.NoError(t, err)
		if item.UploadStatus == want {
			return item
		}
		time.Sleep(100 * time.Millisecond)
	}
	item, err := e.repo.GetByID(e.ctx, nil, mediaID)
	require.NoError(t, err)
	t.Fatalf("media %s stuck in %s, want %s", mediaID, item.UploadStatus, want)
	return nil
}

func boolPtr(v bool) *bool { return &v }

func startPostgres(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       "wedding",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
			return fmt.Sprintf("postgres://postgres:postgres@%s:%s/wedding?sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("skip e2e: cannot start postgres container: %v", err)
		return "", func() {}
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/wedding?sslmode=disable", host, port.Port())
	cleanup := func() {
		termCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = container.Terminate(termCtx)
	}
	return dsn, cleanup
}

func applyMigrations(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	migrationsDir := filepath.Join("..", "db", "migrations")
	files, err := os.ReadDir(migrationsDir)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".sql" {
			continue
		}
		paths = append(paths, filepath.Join(migrationsDir, f.Name()))
	}
	sort.Strings(paths)

	for _, path := range paths {
		sqlBytes, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		_, execErr := pool.Exec(ctx, string(sqlBytes))
		require.NoErrorf(t, execErr, "apply migration %s", filepath.Base(path))
	}
}
