package youtube

import "github.com/google/wire"

// ProviderSet 暴露托管方客户端构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(NewClient)
