package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	NATS   NATSConfig
	Auth   AuthConfig
	Email  EmailConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type MongoConfig struct {
	URI      string
	Database string
	User     string
	Password string
}

type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	ProductCacheTTL time.Duration
}

type NATSConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret       string
	SessionTokenTTL time.Duration

	// Fixed-window limits for /api/register and /api/login.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type EmailConfig struct {
	MailerSendKey string
	FromName      string
	FromEmail     string
	DevMode       bool // print emails to logs instead of sending
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "natural"),
			User:     getEnv("MONGODB_USER", ""),
			Password: getEnv("MONGODB_PASSWORD", ""),
		},
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", "localhost:6379"),
			Password:        getEnv("REDIS_PASSWORD", ""),
			DB:              getInt("REDIS_DB", 0),
			ProductCacheTTL: getDuration("PRODUCT_CACHE_TTL", 5*time.Minute),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", "dev-only-secret-change-in-prod"),
			SessionTokenTTL:   getDuration("EXPIRES_IN", 24*time.Hour),
			RateLimitRequests: getInt("AUTH_RATE_LIMIT_REQUESTS", 20),
			RateLimitWindow:   getDuration("AUTH_RATE_LIMIT_WINDOW", time.Minute),
		},
		Email: EmailConfig{
			MailerSendKey: getEnv("MAILERSEND_API_KEY", ""),
			FromName:      getEnv("MAILER_FROM_NAME", "Natural Shop"),
			FromEmail:     getEnv("MAILER_FROM_EMAIL", "noreply@naturalmart.local"),
			DevMode:       getBool("EMAIL_DEV_MODE", true),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
