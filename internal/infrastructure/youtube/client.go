// Package youtube 提供与视频托管方（YouTube Data API v3）交互的基础设施封装。
// 凭据采用 OAuth2 refresh token 的服务账号模式，由配置显式注入而非环境查找。
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bionicotaku/wedding-media-service/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	youtubeapi "google.golang.org/api/youtube/v3"
	"google.golang.org/api/option"
)

// Client 负责把媒体字节流提交为一条 unlisted 视频。
type Client struct {
	svc        *youtubeapi.Service
	categoryID string
	log        *log.Helper
}

// Option 定义可选配置。
type Option func(*options)

type options struct {
	service *youtubeapi.Service
}

// WithService 允许直接注入已构造的 API Service（测试友好）。
func WithService(svc *youtubeapi.Service) Option {
	return func(o *options) {
		o.service = svc
	}
}

// NewClient 构造 Client。要求 client_id/client_secret/refresh_token 均已配置。
func NewClient(ctx context.Context, c *conf.YouTube, logger log.Logger, opts ...Option) (*Client, error) {
	if c == nil {
		return nil, errors.New("youtube: configuration is required")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	svc := o.service
	if svc == nil {
		switch {
		case c.ClientID == "":
			return nil, errors.New("youtube: client_id is required (set YOUTUBE_CLIENT_ID)")
		case c.ClientSecret == "":
			return nil, errors.New("youtube: client_secret is required (set YOUTUBE_CLIENT_SECRET)")
		case c.RefreshToken == "":
			return nil, errors.New("youtube: refresh_token is required (set YOUTUBE_REFRESH_TOKEN)")
		}

		oauthCfg := &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{youtubeapi.YoutubeUploadScope},
		}
		tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken})

		var err error
		svc, err = youtubeapi.NewService(ctx, option.WithTokenSource(tokenSource))
		if err != nil {
			return nil, fmt.Errorf("youtube: init service: %w", err)
		}
	}

	return &Client{
		svc:        svc,
		categoryID: c.CategoryID,
		log:        log.NewHelper(logger),
	}, nil
}

// Submit 执行一次原子提交（无分块续传）。可见性固定为 unlisted：
// 仅持链接可达、不进搜索索引、隐藏统计、可嵌入、非儿童内容。
func (c *Client) Submit(ctx context.Context, title, description string, tags []string, media io.Reader) (string, error) {
	video := &youtubeapi.Video{
		Snippet: &youtubeapi.VideoSnippet{
			Title:       title,
			Description: description,
			Tags:        tags,
			CategoryId:  c.categoryID,
		},
		Status: &youtubeapi.VideoStatus{
			PrivacyStatus:           "unlisted",
			Embeddable:              true,
			PublicStatsViewable:     false,
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	call := c.svc.Videos.Insert([]string{"snippet", "status"}, video).
		NotifySubscribers(false).
		Context(ctx).
		Media(media)

	inserted, err := call.Do()
	if err != nil {
		return "", err
	}
	if inserted == nil || inserted.Id == "" {
		return "", errors.New("youtube: insert returned empty video id")
	}

	c.log.WithContext(ctx).Infof("youtube: video submitted id=%s title=%q", inserted.Id, title)
	return inserted.Id, nil
}
