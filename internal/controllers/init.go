package controllers

import "github.com/google/wire"

// ProviderSet 暴露 Handler 构造函数供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(NewSummaryHandler)
