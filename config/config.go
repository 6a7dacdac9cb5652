package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the sticker bot
type Config struct {
	Telegram TelegramConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	S3       S3Config
	Media    MediaConfig
	Session  SessionConfig
	Logging  LoggingConfig
	Service  ServiceConfig
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken    string
	BotUsername string
	// StickerAddInterval is the pause between consecutive sticker additions
	StickerAddInterval time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MigrationsPath string
}

// DSN returns the libpq connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// KafkaConfig holds Kafka configuration. Publishing is disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers         []string
	TopicPackEvents string
}

// Enabled reports whether pack events should be published
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// S3Config holds MinIO configuration. Archiving is disabled when Endpoint is empty.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether media should be archived
func (c S3Config) Enabled() bool {
	return c.Endpoint != ""
}

// MediaConfig holds media storage and transformation configuration
type MediaConfig struct {
	Dir           string
	FFmpegBinary  string
	FFprobeBinary string
	RembgURL      string
	RembgModels   []string
}

// SessionConfig holds conversation session configuration
type SessionConfig struct {
	IdleTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
	Dir   string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
	Port string
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config   *Config
	Telegram *TelegramConfig
	Database *DatabaseConfig
	Kafka    *KafkaConfig
	S3       *S3Config
	Media    *MediaConfig
	Session  *SessionConfig
	Logging  *LoggingConfig
	Service  *ServiceConfig
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:   cfg,
		Telegram: &cfg.Telegram,
		Database: &cfg.Database,
		Kafka:    &cfg.Kafka,
		S3:       &cfg.S3,
		Media:    &cfg.Media,
		Session:  &cfg.Session,
		Logging:  &cfg.Logging,
		Service:  &cfg.Service,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken:           getEnv("TELEGRAM_BOT_TOKEN", ""),
			BotUsername:        getEnv("TELEGRAM_BOT_USERNAME", ""),
			StickerAddInterval: getDuration("STICKER_ADD_INTERVAL", 500*time.Millisecond),
		},
		Database: loadDatabase(),
		Kafka: KafkaConfig{
			Brokers:         splitList(getEnv("KAFKA_BROKERS", "")),
			TopicPackEvents: getEnv("KAFKA_TOPIC_PACK_EVENTS", "sticker.pack.events"),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", "sticker-media"),
			UseSSL:    getEnv("S3_USE_SSL", "false") == "true",
		},
		Media: MediaConfig{
			Dir:           getEnv("MEDIA_DIR", "user_media"),
			FFmpegBinary:  getEnv("FFMPEG_BINARY", "ffmpeg"),
			FFprobeBinary: getEnv("FFPROBE_BINARY", "ffprobe"),
			RembgURL:      getEnv("REMBG_URL", "http://localhost:7000/api/remove"),
			RembgModels:   splitList(getEnv("REMBG_MODELS", "u2net,isnet-general-use,silueta")),
		},
		Session: SessionConfig{
			IdleTimeout: getDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Dir:   getEnv("LOG_DIR", "logs"),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "sticker-bot"),
			Port: getEnv("SERVICE_PORT", "8082"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase loads only the database configuration. Maintenance commands use
// it so they run without bot credentials.
func LoadDatabase() *DatabaseConfig {
	_ = godotenv.Load()
	cfg := loadDatabase()
	return &cfg
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnv("DB_PORT", "5432"),
		User:           getEnv("DB_USER", "postgres"),
		Password:       getEnv("DB_PASSWORD", "postgres"),
		Name:           getEnv("DB_NAME", "stickers"),
		SSLMode:        getEnv("DB_SSLMODE", "disable"),
		MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "file://migrations"),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if c.Telegram.BotUsername == "" {
		return fmt.Errorf("TELEGRAM_BOT_USERNAME is required")
	}

	if len(c.Media.RembgModels) == 0 {
		return fmt.Errorf("REMBG_MODELS must list at least one model")
	}

	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
