package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// DSN 获取数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// AuthConfig 外部身份提供方配置（token 校验委托）
type AuthConfig struct {
	Enabled   bool   // 关闭时使用 X-Tenant-Id 请求头直通（本地联调）
	BaseURL   string // 身份提供方地址
	AppID     string
	SecretKey string
}

// MQTTConfig MQTT 配置（点检上报触发重算）
type MQTTConfig struct {
	Enabled  bool
	Broker   string // 如 "tcp://localhost:1883"
	ClientID string
	Username string
	Password string
	Topic    string // 订阅主题（如 "housecare/inspection/#"）
	QoS      byte
}

// SweepConfig 健康评分定时巡检配置
type SweepConfig struct {
	Enabled  bool
	Schedule string // cron 表达式（robfig/cron，如 "0 3 * * *"）
}

// Config housecare-data（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Auth  AuthConfig
	MQTT  MQTTConfig
	Sweep SweepConfig
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true for local dev: if DB is unavailable, housecare-data will fall back
	// to in-memory repos. This avoids "empty admin pages" when starting with plain `go run`.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "housecare")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// 身份提供方配置（默认关闭，联调用 X-Tenant-Id 直通）
	cfg.Auth.Enabled = getEnv("AUTH_ENABLED", "false") == "true"
	cfg.Auth.BaseURL = getEnv("AUTH_BASE_URL", "http://localhost:9090")
	cfg.Auth.AppID = getEnv("AUTH_APP_ID", "")
	cfg.Auth.SecretKey = getEnv("AUTH_SECRET_KEY", "")

	// MQTT 配置（点检上报触发重算，默认禁用）
	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "housecare-data-inspection")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "housecare/inspection/#")
	cfg.MQTT.QoS = byte(parseInt(getEnv("MQTT_QOS", "1"), 1))

	// 定时巡检（默认每天凌晨3点全量重算）
	cfg.Sweep.Enabled = getEnv("SWEEP_ENABLED", "true") == "true"
	cfg.Sweep.Schedule = getEnv("SWEEP_SCHEDULE", "0 3 * * *")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
