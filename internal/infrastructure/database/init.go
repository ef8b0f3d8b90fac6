package database

import (
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProviderSet 暴露连接池与事务管理器构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	NewPgxPool,
	NewTxManager,
)

// NewTxManager 基于连接池构造 txmanager.Manager。
func NewTxManager(pool *pgxpool.Pool, logger log.Logger) (txmanager.Manager, error) {
	return txmanager.NewManager(pool, txmanager.Config{}, txmanager.Dependencies{Logger: logger})
}
