package sweeper

import (
	"github.com/bionicotaku/wedding-media-service/internal/conf"
	"github.com/bionicotaku/wedding-media-service/internal/services"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet 暴露 Sweeper 任务的构造函数供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(ProvideTask)

// ProvideTask 装配每日扫描任务。
func ProvideTask(sweeper *services.SweeperService, cfg *conf.Sweeper, logger log.Logger) (*Task, error) {
	return NewTask(sweeper, cfg, logger)
}
