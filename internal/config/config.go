package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Advisor  AdvisorConfig
	Scan     ScanConfig
	Notify   NotifyConfig
	Archive  ArchiveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// AdvisorConfig configures the external reasoning collaborator. With an empty
// endpoint the engine runs purely on the statistical fallback.
type AdvisorConfig struct {
	Endpoint       string
	APIKey         string
	Model          string
	TimeoutSeconds int
}

func (c AdvisorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ScanConfig bounds batch scans.
type ScanConfig struct {
	WorkerCount        int
	TaskTimeoutSeconds int
	AlertTTLHours      int
}

func (c ScanConfig) TaskTimeout() time.Duration {
	return time.Duration(c.TaskTimeoutSeconds) * time.Second
}

func (c ScanConfig) AlertTTL() time.Duration {
	return time.Duration(c.AlertTTLHours) * time.Hour
}

type NotifyConfig struct {
	WebhookURL     string
	TimeoutSeconds int
}

// ArchiveConfig configures the optional S3-compatible scan-report archive.
type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "replenish")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("ADVISOR_ENDPOINT", "")
		viper.SetDefault("ADVISOR_API_KEY", "")
		viper.SetDefault("ADVISOR_MODEL", "gpt-4o-mini")
		viper.SetDefault("ADVISOR_TIMEOUT_SECONDS", 30)
		viper.SetDefault("SCAN_WORKER_COUNT", 4)
		viper.SetDefault("SCAN_TASK_TIMEOUT_SECONDS", 45)
		viper.SetDefault("ALERT_TTL_HOURS", 24)
		viper.SetDefault("NOTIFY_WEBHOOK_URL", "")
		viper.SetDefault("NOTIFY_TIMEOUT_SECONDS", 10)
		viper.SetDefault("ARCHIVE_ENABLED", false)
		viper.SetDefault("ARCHIVE_ENDPOINT", "")
		viper.SetDefault("ARCHIVE_ACCESS_KEY", "")
		viper.SetDefault("ARCHIVE_SECRET_KEY", "")
		viper.SetDefault("ARCHIVE_BUCKET", "")
		viper.SetDefault("ARCHIVE_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:       viper.GetBool("CACHE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
			},
			Advisor: AdvisorConfig{
				Endpoint:       viper.GetString("ADVISOR_ENDPOINT"),
				APIKey:         viper.GetString("ADVISOR_API_KEY"),
				Model:          viper.GetString("ADVISOR_MODEL"),
				TimeoutSeconds: viper.GetInt("ADVISOR_TIMEOUT_SECONDS"),
			},
			Scan: ScanConfig{
				WorkerCount:        viper.GetInt("SCAN_WORKER_COUNT"),
				TaskTimeoutSeconds: viper.GetInt("SCAN_TASK_TIMEOUT_SECONDS"),
				AlertTTLHours:      viper.GetInt("ALERT_TTL_HOURS"),
			},
			Notify: NotifyConfig{
				WebhookURL:     viper.GetString("NOTIFY_WEBHOOK_URL"),
				TimeoutSeconds: viper.GetInt("NOTIFY_TIMEOUT_SECONDS"),
			},
			Archive: ArchiveConfig{
				Enabled:   viper.GetBool("ARCHIVE_ENABLED"),
				Endpoint:  viper.GetString("ARCHIVE_ENDPOINT"),
				AccessKey: viper.GetString("ARCHIVE_ACCESS_KEY"),
				SecretKey: viper.GetString("ARCHIVE_SECRET_KEY"),
				Bucket:    viper.GetString("ARCHIVE_BUCKET"),
				UseSSL:    viper.GetBool("ARCHIVE_USE_SSL"),
			},
		}
	})

	return instance
}
