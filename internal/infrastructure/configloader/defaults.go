package configloader

import "github.com/bionicotaku/wedding-media-service/internal/conf"

// 默认值集中在此处，配置文件只需覆盖与环境相关的字段。
const (
	defaultHTTPAddr         = "0.0.0.0:8000"
	defaultHTTPTimeout      = int32(30)
	defaultFetchTimeout     = int32(600) // 10 分钟，来宾视频可能很大
	defaultSweeperRunAt     = "00:10"    // 托管方配额重置后不久
	defaultSweeperTimezone  = "America/Los_Angeles"
	defaultMaxRetryCycles   = int32(30)
	defaultYouTubeCategory  = "22" // People & Blogs
	defaultPostgresMaxConns = int32(8)
)

func applyDefaults(bc *conf.Bootstrap) {
	if bc == nil {
		return
	}
	if bc.Server == nil {
		bc.Server = &conf.Server{}
	}
	if bc.Server.HTTP == nil {
		bc.Server.HTTP = &conf.HTTPServer{}
	}
	if bc.Server.HTTP.Addr == "" {
		bc.Server.HTTP.Addr = defaultHTTPAddr
	}
	if bc.Server.HTTP.TimeoutSeconds <= 0 {
		bc.Server.HTTP.TimeoutSeconds = defaultHTTPTimeout
	}

	if bc.Data != nil && bc.Data.Postgres != nil && bc.Data.Postgres.MaxOpenConns <= 0 {
		bc.Data.Postgres.MaxOpenConns = defaultPostgresMaxConns
	}

	if bc.Uploader == nil {
		bc.Uploader = &conf.Uploader{}
	}
	if bc.Uploader.FetchTimeoutSeconds <= 0 {
		bc.Uploader.FetchTimeoutSeconds = defaultFetchTimeout
	}

	if bc.Sweeper == nil {
		bc.Sweeper = &conf.Sweeper{}
	}
	if bc.Sweeper.RunAt == "" {
		bc.Sweeper.RunAt = defaultSweeperRunAt
	}
	if bc.Sweeper.Timezone == "" {
		bc.Sweeper.Timezone = defaultSweeperTimezone
	}
	if bc.Sweeper.MaxRetryCycles <= 0 {
		bc.Sweeper.MaxRetryCycles = defaultMaxRetryCycles
	}

	if bc.YouTube == nil {
		bc.YouTube = &conf.YouTube{}
	}
	if bc.YouTube.CategoryID == "" {
		bc.YouTube.CategoryID = defaultYouTubeCategory
	}
}
