// Package database 负责 PostgreSQL 连接池的初始化与生命周期管理。
package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bionicotaku/wedding-media-service/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPgxPool 创建并配置 pgxpool.Pool，返回 Wire cleanup 函数。
// 启动时执行健康检查（Ping + 版本查询），失败直接报错而不是带病运行。
func NewPgxPool(ctx context.Context, c *conf.Data, logger log.Logger) (*pgxpool.Pool, func(), error) {
	helper := log.NewHelper(logger)

	pgCfg := c.Postgres
	if pgCfg == nil {
		return nil, nil, fmt.Errorf("postgres configuration is required")
	}
	if pgCfg.DSN == "" {
		return nil, nil, fmt.Errorf("postgres DSN is required (set DATABASE_URL)")
	}

	poolConfig, err := pgxpool.ParseConfig(pgCfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}

	if pgCfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = pgCfg.MaxOpenConns
	}
	if pgCfg.MinOpenConns >= 0 {
		poolConfig.MinConns = pgCfg.MinOpenConns
	}
	if pgCfg.MaxConnLifetimeSeconds > 0 {
		poolConfig.MaxConnLifetime = time.Duration(pgCfg.MaxConnLifetimeSeconds) * time.Second
	}
	if pgCfg.MaxConnIdleTimeSeconds > 0 {
		poolConfig.MaxConnIdleTime = time.Duration(pgCfg.MaxConnIdleTimeSeconds) * time.Second
	}
	if pgCfg.HealthCheckPeriodSeconds > 0 {
		poolConfig.HealthCheckPeriod = time.Duration(pgCfg.HealthCheckPeriodSeconds) * time.Second
	}

	poolConfig.ConnConfig.Tracer = &pgxLogger{helper: helper}

	if schema := pgCfg.Schema; schema != "" {
		poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s, public", schema))
			if err != nil {
				return fmt.Errorf("failed to set search_path: %w", err)
			}
			return nil
		}
	}

	if !pgCfg.EnablePreparedStatements {
		// Supabase Pooler 模式必须禁用 prepared statements
		poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := healthCheck(ctx, pool, helper); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres health check failed: %w", err)
	}

	helper.Infof(
		"postgres pool created: dsn=%s max_conns=%d min_conns=%d schema=%s",
		sanitizeDSN(pgCfg.DSN),
		poolConfig.MaxConns,
		poolConfig.MinConns,
		pgCfg.Schema,
	)

	cleanup := func() {
		helper.Info("closing postgres pool")
		pool.Close()
	}

	return pool, cleanup, nil
}

func healthCheck(ctx context.Context, pool *pgxpool.Pool, helper *log.Helper) error {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(healthCtx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var version string
	if err := pool.QueryRow(healthCtx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("version query failed: %w", err)
	}

	helper.Infof("database health check passed: version=%s", truncateVersion(version))
	return nil
}

// sanitizeDSN 对 DSN 脱敏，隐藏密码。
func sanitizeDSN(dsn string) string {
	parsed, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	if parsed.User != nil {
		username := parsed.User.Username()
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(username, "***")
		}
	}
	return parsed.String()
}

func truncateVersion(version string) string {
	if idx := strings.Index(version, "("); idx != -1 {
		return strings.TrimSpace(version[:idx])
	}
	if len(version) > 100 {
		return version[:100] + "..."
	}
	return version
}

// pgxLogger 将 pgx 查询失败日志转发到 Kratos Logger。
type pgxLogger struct {
	helper *log.Helper
}

func (l *pgxLogger) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	return ctx
}

func (l *pgxLogger) TraceQueryEnd(_ context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	if data.Err != nil {
		// 只记录错误信息，不记录 SQL，避免敏感数据进入日志。
		l.helper.Errorf("postgres query failed: error=%v command_tag=%s", data.Err, data.CommandTag.String())
	}
}
