// Package conf 定义服务的启动配置结构，由 Kratos config 从 YAML 扫描填充。
// 敏感字段（DATABASE_URL、YOUTUBE_* 等）通过环境变量覆盖，见 configloader。
package conf

// Bootstrap 聚合全部配置片段。
type Bootstrap struct {
	Server    *Server    `json:"server"`
	Data      *Data      `json:"data"`
	Messaging *Messaging `json:"messaging"`
	YouTube   *YouTube   `json:"youtube"`
	Uploader  *Uploader  `json:"uploader"`
	Sweeper   *Sweeper   `json:"sweeper"`
}

// Server 描述 HTTP 管理面的监听配置。
type Server struct {
	HTTP *HTTPServer `json:"http"`
}

// HTTPServer HTTP 监听参数，超时以秒为单位（纯结构体扫描不支持 duration 字面量）。
type HTTPServer struct {
	Network        string `json:"network"`
	Addr           string `json:"addr"`
	TimeoutSeconds int32  `json:"timeout_seconds"`
}

// Data 聚合存储相关配置。
type Data struct {
	Postgres *Postgres `json:"postgres"`
}

// Postgres 连接池配置。
type Postgres struct {
	DSN                      string `json:"dsn"`
	Schema                   string `json:"schema"`
	MaxOpenConns             int32  `json:"max_open_conns"`
	MinOpenConns             int32  `json:"min_open_conns"`
	MaxConnLifetimeSeconds   int32  `json:"max_conn_lifetime_seconds"`
	MaxConnIdleTimeSeconds   int32  `json:"max_conn_idle_time_seconds"`
	HealthCheckPeriodSeconds int32  `json:"health_check_period_seconds"`
	EnablePreparedStatements bool   `json:"enable_prepared_statements"`
}

// Messaging 描述 media.created 事件订阅所在的 Pub/Sub 资源。
type Messaging struct {
	ProjectID        string `json:"project_id"`
	TopicID          string `json:"topic_id"`
	SubscriptionID   string `json:"subscription_id"`
	EmulatorEndpoint string `json:"emulator_endpoint"`
}

// YouTube 托管方凭据与上传参数。凭据只从环境变量注入，不落配置文件。
type YouTube struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	CategoryID   string `json:"category_id"`
}

// Uploader 控制源媒体抓取行为。
type Uploader struct {
	FetchTimeoutSeconds int32  `json:"fetch_timeout_seconds"`
	TempDir             string `json:"temp_dir"`
}

// Sweeper 控制每日重试任务：运行时刻（配额重置之后）、时区与死信阈值。
type Sweeper struct {
	RunAt          string `json:"run_at"`   // "HH:MM"
	Timezone       string `json:"timezone"` // IANA 名称，默认跟随托管方配额重置时区
	MaxRetryCycles int32  `json:"max_retry_cycles"`
}
