package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/tallerapp/notifier/internal/domain"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
// A .env file in the working directory is honored when present.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Logging
	LogFile       string // empty = stdout only
	LogMaxSizeMB  int
	LogMaxBackups int

	// Pipeline
	DeliveryTimeout time.Duration // per-channel upper bound on one Deliver call
	RateLimit       int           // max deliveries per second per channel
	DispatchWorkers int           // background pool size for async triggers
	DispatchQueue   int           // bounded queue capacity for async triggers

	// Mail channel
	MailEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	MailFromName string

	// WhatsApp gateway channel
	WhatsAppEnabled    bool
	WhatsAppGatewayURL string
	WhatsAppToken      string
	DefaultCountryCode string // prefix for phone numbers stored without one

	// Telegram ops channel
	TelegramEnabled  bool
	TelegramBotToken string
	TelegramChatID   int64

	// Kafka order-event trigger (disabled when broker is empty)
	KafkaBroker  string
	KafkaTopic   string
	KafkaGroupID string

	// Rendering
	RenderTimezone string
	Company        domain.CompanyProfile
}

func Load() (*Config, error) {
	// .env is a convenience for local runs; absence is not an error.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getInt("LOG_MAX_BACKUPS", 5),

		DeliveryTimeout: getDuration("DELIVERY_TIMEOUT", 30*time.Second),
		RateLimit:       getInt("RATE_LIMIT_PER_CHANNEL", 10),
		DispatchWorkers: getInt("DISPATCH_WORKERS", 3),
		DispatchQueue:   getInt("DISPATCH_QUEUE_SIZE", 100),

		MailEnabled:  getBool("MAIL_ENABLED", false),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),
		MailFromName: getEnv("MAIL_FROM_NAME", ""),

		WhatsAppEnabled:    getBool("WHATSAPP_ENABLED", false),
		WhatsAppGatewayURL: getEnv("WHATSAPP_GATEWAY_URL", ""),
		WhatsAppToken:      getEnv("WHATSAPP_TOKEN", ""),
		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "+34"),

		TelegramEnabled:  getBool("TELEGRAM_ENABLED", false),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   int64(getInt("TELEGRAM_CHAT_ID", 0)),

		KafkaBroker:  getEnv("KAFKA_BROKER", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "order-events"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "order-notifier"),

		RenderTimezone: getEnv("RENDER_TIMEZONE", "Europe/Madrid"),
		Company: domain.CompanyProfile{
			Name:    getEnv("COMPANY_NAME", "Taller Mecánico"),
			Phone:   getEnv("COMPANY_PHONE", ""),
			Email:   getEnv("COMPANY_EMAIL", ""),
			Address: getEnv("COMPANY_ADDRESS", ""),
		},
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
