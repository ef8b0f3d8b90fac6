// Package services 承载业务用例编排：上传执行、创建事件处理、每日重试
// 与管理面汇总。
package services

import "github.com/google/wire"

// ProviderSet 暴露 Service 层的构造函数供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	NewUploaderService,
	NewIngestService,
	NewSweeperService,
	NewSummaryService,
)
