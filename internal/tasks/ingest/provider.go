package ingest

import (
	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet 暴露 Ingest 任务的构造函数供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(NewHandler, ProvideRunner)

// ProvideRunner 装配创建事件 Runner。
func ProvideRunner(handler *Handler, sub gcpubsub.Subscriber, logger log.Logger) *Runner {
	if handler == nil || sub == nil || logger == nil {
		return nil
	}
	runner, err := NewRunner(RunnerParams{
		Subscriber: sub,
		Handler:    handler,
		Logger:     logger,
	})
	if err != nil {
		log.NewHelper(logger).Errorw("msg", "init ingest runner failed", "error", err)
		return nil
	}
	return runner
}
