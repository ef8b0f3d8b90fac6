package configloader

import (
	"github.com/bionicotaku/wedding-media-service/internal/conf"
	loginfra "github.com/bionicotaku/wedding-media-service/internal/infrastructure/logger"

	"github.com/google/wire"
)

// ProviderSet 暴露配置 Bundle 与各配置片段的 Provider。
var ProviderSet = wire.NewSet(
	Build,
	ProvideServerConf,
	ProvideDataConf,
	ProvideMessagingConf,
	ProvideYouTubeConf,
	ProvideUploaderConf,
	ProvideSweeperConf,
	ProvideLoggerConfig,
)

// ProvideServerConf 返回 HTTP 服务配置。
func ProvideServerConf(b *Bundle) *conf.Server {
	return b.Bootstrap.Server
}

// ProvideDataConf 返回存储配置。
func ProvideDataConf(b *Bundle) *conf.Data {
	return b.Bootstrap.Data
}

// ProvideMessagingConf 返回 Pub/Sub 配置，未配置时为 nil（任务降级为禁用）。
func ProvideMessagingConf(b *Bundle) *conf.Messaging {
	return b.Bootstrap.Messaging
}

// ProvideYouTubeConf 返回托管方凭据配置。
func ProvideYouTubeConf(b *Bundle) *conf.YouTube {
	return b.Bootstrap.YouTube
}

// ProvideUploaderConf 返回上传器配置。
func ProvideUploaderConf(b *Bundle) *conf.Uploader {
	return b.Bootstrap.Uploader
}

// ProvideSweeperConf 返回重试任务配置。
func ProvideSweeperConf(b *Bundle) *conf.Sweeper {
	return b.Bootstrap.Sweeper
}

// ProvideLoggerConfig 返回日志组件配置。
func ProvideLoggerConfig(b *Bundle) loginfra.Config {
	return b.LoggerCfg
}
