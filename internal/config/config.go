package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	MySQL    MySQLConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Uploads  UploadsConfig
	Printer  PrinterConfig
	Images   ImagesConfig
	PubSub   PubSubConfig
}

type AppConfig struct {
	Port         string
	Hostname     string
	APIPrefix    string
	StaticPrefix string
	CORSOrigin   []string
	Debug        bool
	// AllowTableReassign lets updateOrder move an order to another table.
	AllowTableReassign bool
	RateLimit          float64
	RateBurst          int
	ShutdownTimeout    time.Duration
}

type MySQLConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

func (c RabbitMQConfig) Enabled() bool { return c.URL != "" }

type UploadsConfig struct {
	Path     string
	MaxBytes int64
}

type PrinterConfig struct {
	URI     string
	Timeout time.Duration
}

type ImagesConfig struct {
	Workers int
}

type PubSubConfig struct {
	// Driver is "memory" or "redis".
	Driver string
}

func Load() *Config {
	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3001"),
			Hostname:           strings.TrimRight(getEnv("APP_HOSTNAME", "http://localhost:3001"), "/"),
			APIPrefix:          getEnv("APP_API_PREFIX", ""),
			StaticPrefix:       getEnv("APP_STATIC_PREFIX", "/public"),
			CORSOrigin:         splitList(getEnv("APP_CORS_ORIGIN", "http://localhost:3001")),
			Debug:              getEnvBool("APP_DEBUG", false),
			AllowTableReassign: getEnvBool("APP_ALLOW_TABLE_REASSIGN", false),
			RateLimit:          getEnvFloat("APP_RATE_LIMIT", 100),
			RateBurst:          getEnvInt("APP_RATE_BURST", 200),
			ShutdownTimeout:    getEnvDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		MySQL: MySQLConfig{
			Host:            getEnv("MYSQL_HOST", "localhost"),
			Port:            getEnv("MYSQL_PORT", "3306"),
			User:            getEnv("MYSQL_USER", "root"),
			Password:        getEnv("MYSQL_PASSWORD", ""),
			Database:        getEnv("MYSQL_DATABASE", "orders"),
			MaxOpenConns:    getEnvInt("MYSQL_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getEnvInt("MYSQL_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("MYSQL_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvDuration("MYSQL_CONN_MAX_IDLE_TIME", time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: getEnvDuration("REDIS_CACHE_TTL", 10*time.Second),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      getEnv("RABBITMQ_URL", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "orders.exchange"),
		},
		Uploads: UploadsConfig{
			Path:     getEnv("APP_UPLOADS_PATH", "./uploads"),
			MaxBytes: int64(getEnvInt("APP_UPLOADS_MAX_BYTES", 32<<20)),
		},
		Printer: PrinterConfig{
			URI:     strings.TrimRight(getEnv("APP_PRINT_API_URI", ""), "/"),
			Timeout: getEnvDuration("APP_PRINT_API_TIMEOUT", 5*time.Second),
		},
		Images: ImagesConfig{
			Workers: getEnvInt("IMAGES_WORKERS", 4),
		},
		PubSub: PubSubConfig{
			Driver: strings.ToLower(getEnv("PUBSUB_DRIVER", "memory")),
		},
	}
}

// PublicPrefix is the route under which uploaded files are served.
func (c *Config) PublicPrefix() string {
	return c.App.APIPrefix + c.App.StaticPrefix
}

// PublicURL is the absolute base of stored file URLs.
func (c *Config) PublicURL() string {
	return c.App.Hostname + c.PublicPrefix()
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
