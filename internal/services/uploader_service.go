package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/bionicotaku/wedding-media-service/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
)

// VideoHost 定义把媒体字节流提交给托管方的能力，由 infrastructure/youtube 实现。
type VideoHost interface {
	Submit(ctx context.Context, title, description string, tags []string, media io.Reader) (string, error)
}

// VideoMetadata 是一次提交携带的描述信息。
type VideoMetadata struct {
	Title       string
	Description string
	Tags        []string
}

const watchURLPrefix = "https://www.youtube.com/watch?v="

// WatchURL 由托管方视频标识确定性推导出可访问链接。
func WatchURL(hostedVideoID string) string {
	return watchURLPrefix + hostedVideoID
}

// UploaderService 执行单条媒体的抓取与提交：下载源字节到临时文件、
// 原子提交给托管方、把任何失败归类为带标签的 UploadFailure。
type UploaderService struct {
	host         VideoHost
	httpClient   *http.Client
	fetchTimeout time.Duration
	tempDir      string
	log          *log.Helper
}

// UploaderOption 定义可选配置。
type UploaderOption func(*UploaderService)

// WithHTTPClient 覆盖抓取源媒体所用的 HTTP 客户端（测试友好）。
func WithHTTPClient(client *http.Client) UploaderOption {
	return func(s *UploaderService) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewUploaderService 构造 UploaderService。cfg 可为 nil，此时使用默认抓取
// 超时与系统临时目录。
func NewUploaderService(host VideoHost, cfg *conf.Uploader, logger log.Logger, opts ...UploaderOption) (*UploaderService, error) {
	if host == nil {
		return nil, errors.New("uploader service: video host is required")
	}

	svc := &UploaderService{
		host:         host,
		fetchTimeout: 10 * time.Minute,
		log:          log.NewHelper(logger),
	}
	if cfg != nil {
		if cfg.FetchTimeoutSeconds > 0 {
			svc.fetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second
		}
		svc.tempDir = cfg.TempDir
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.httpClient == nil {
		// 来宾视频可能数百 MB，客户端本身不设 Timeout，由 fetch 上下文约束。
		svc.httpClient = &http.Client{}
	}
	return svc, nil
}

// Upload 抓取 mediaURL 的字节并提交给托管方，成功返回托管方视频标识。
// 临时文件在任何返回路径上都会被删除，这是保证而不是尽力而为。
func (s *UploaderService) Upload(ctx context.Context, mediaURL string, meta VideoMetadata) (string, error) {
	parsed, err := url.Parse(mediaURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", genericFailure("media url %q is not a fetchable http(s) url", mediaURL)
	}

	tmp, err := os.CreateTemp(s.tempDir, "wedding-media-*.video")
	if err != nil {
		return "", genericFailure("create temp file: %v", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err := s.fetchMedia(ctx, mediaURL, tmp); err != nil {
		return "", err
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", genericFailure("rewind temp file: %v", err)
	}

	videoID, err := s.host.Submit(ctx, meta.Title, meta.Description, meta.Tags, tmp)
	if err != nil {
		failure := classifyProviderError(err)
		s.log.WithContext(ctx).Warnf("uploader: submit failed kind=%s url=%s err=%v", failure.Kind, mediaURL, err)
		return "", failure
	}

	s.log.WithContext(ctx).Infof("uploader: submitted url=%s hosted_video_id=%s", mediaURL, videoID)
	return videoID, nil
}

// fetchMedia 在有界超时内把源媒体写入 dst。抓取失败永远是通用失败，
// 不会被误分类为配额问题。
func (s *UploaderService) fetchMedia(ctx context.Context, mediaURL string, dst io.Writer) error {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return genericFailure("build fetch request: %v", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return genericFailure("fetch media: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return genericFailure("fetch media: unexpected status %d", resp.StatusCode)
	}

	written, err := io.Copy(dst, resp.Body)
	if err != nil {
		return genericFailure("download media body: %v", err)
	}
	if written == 0 {
		return genericFailure("fetch media: empty payload")
	}
	return nil
}
