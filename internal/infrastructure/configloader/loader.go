// Package configloader 负责加载 YAML 启动配置并应用环境变量覆盖，
// 产出强类型的配置 Bundle 供 Wire 注入。
package configloader

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/bionicotaku/wedding-media-service/internal/conf"
	loginfra "github.com/bionicotaku/wedding-media-service/internal/infrastructure/logger"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/joho/godotenv"
)

const (
	envConfPath           = "CONF_PATH"
	envServiceName        = "SERVICE_NAME"
	envServiceVersion     = "SERVICE_VERSION"
	envAppEnv             = "APP_ENV"
	envDatabaseURL        = "DATABASE_URL"
	envPort               = "PORT"
	envPubSubEmulatorHost = "PUBSUB_EMULATOR_HOST"
	envYouTubeClientID    = "YOUTUBE_CLIENT_ID"
	envYouTubeSecret      = "YOUTUBE_CLIENT_SECRET"
	envYouTubeRefresh     = "YOUTUBE_REFRESH_TOKEN"
)

const defaultConfPath = "configs"

var envFileNames = []string{".env.local", ".env"}

// Params 包含构造配置 Bundle 所需的运行时输入。
type Params struct {
	ConfPath string
	Name     string
	Version  string
}

// Bundle 聚合启动配置与服务元信息。
type Bundle struct {
	Bootstrap *conf.Bootstrap
	LoggerCfg loginfra.Config
}

// BuildError 捕获配置构建过程中的上下文错误信息。
type BuildError struct {
	Stage string
	Path  string
	Err   error
}

func (e BuildError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s at %q: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Stage, e.Err)
}

// Unwrap 支持 errors.Is/As 链式查询。
func (e BuildError) Unwrap() error {
	return e.Err
}

// Build 加载配置文件、应用环境覆盖与默认值，并做最小校验。
func Build(params Params) (*Bundle, func(), error) {
	confPath := ResolveConfPath(params.ConfPath)
	loadEnvFiles(confPath)

	c := config.New(config.WithSource(file.NewSource(confPath)))
	if err := c.Load(); err != nil {
		return nil, nil, BuildError{Stage: "load", Path: confPath, Err: err}
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		c.Close()
		return nil, nil, BuildError{Stage: "scan", Path: confPath, Err: err}
	}

	applyEnvOverrides(&bc)
	applyDefaults(&bc)

	if err := validate(&bc); err != nil {
		c.Close()
		return nil, nil, BuildError{Stage: "validate", Path: confPath, Err: err}
	}

	cleanup := func() {
		_ = c.Close()
	}
	return &Bundle{
		Bootstrap: &bc,
		LoggerCfg: buildLoggerConfig(params),
	}, cleanup, nil
}

// ResolveConfPath 应用回退规则：显式传入 > CONF_PATH 环境变量 > 默认目录。
func ResolveConfPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(envConfPath); env != "" {
		return env
	}
	return defaultConfPath
}

// loadEnvFiles 尝试从配置目录及工作目录加载 .env 文件，已存在的变量不覆盖。
func loadEnvFiles(confPath string) {
	dirs := []string{".", confPath, filepath.Dir(confPath)}
	for _, dir := range dirs {
		for _, name := range envFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			_ = godotenv.Load(path)
		}
	}
}

func applyEnvOverrides(bc *conf.Bootstrap) {
	if bc == nil {
		return
	}
	if dsn := os.Getenv(envDatabaseURL); dsn != "" {
		if bc.Data == nil {
			bc.Data = &conf.Data{}
		}
		if bc.Data.Postgres == nil {
			bc.Data.Postgres = &conf.Postgres{}
		}
		bc.Data.Postgres.DSN = dsn
	}
	// Cloud Run 等平台通过 $PORT 指定监听端口，保留配置中的 host 部分。
	if port := os.Getenv(envPort); port != "" {
		if bc.Server != nil && bc.Server.HTTP != nil && bc.Server.HTTP.Addr != "" {
			if host, _, err := net.SplitHostPort(bc.Server.HTTP.Addr); err == nil {
				bc.Server.HTTP.Addr = net.JoinHostPort(host, port)
			}
		}
	}
	if bc.Messaging != nil {
		if endpoint := os.Getenv(envPubSubEmulatorHost); endpoint != "" {
			bc.Messaging.EmulatorEndpoint = endpoint
		}
	}
	if bc.YouTube == nil {
		bc.YouTube = &conf.YouTube{}
	}
	if v := os.Getenv(envYouTubeClientID); v != "" {
		bc.YouTube.ClientID = v
	}
	if v := os.Getenv(envYouTubeSecret); v != "" {
		bc.YouTube.ClientSecret = v
	}
	if v := os.Getenv(envYouTubeRefresh); v != "" {
		bc.YouTube.RefreshToken = v
	}
}

func validate(bc *conf.Bootstrap) error {
	if bc.Data == nil || bc.Data.Postgres == nil || bc.Data.Postgres.DSN == "" {
		return fmt.Errorf("data.postgres.dsn is required (set DATABASE_URL)")
	}
	if bc.Server == nil || bc.Server.HTTP == nil || bc.Server.HTTP.Addr == "" {
		return fmt.Errorf("server.http.addr is required")
	}
	return nil
}

func buildLoggerConfig(params Params) loginfra.Config {
	name := params.Name
	if name == "" {
		name = os.Getenv(envServiceName)
	}
	version := params.Version
	if version == "" {
		version = os.Getenv(envServiceVersion)
	}
	cfg := loginfra.DefaultConfig(name, version)
	if env := os.Getenv(envAppEnv); env != "" {
		cfg.Env = env
	}
	return cfg
}
