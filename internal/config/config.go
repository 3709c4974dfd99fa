package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret is returned by Load when JWT_SECRET is not set.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	MySQLDSN          string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	ResetURLBase  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// RevealUnknownEmail makes forgot-password answer 404 for unknown addresses.
	RevealUnknownEmail bool

	LoginMaxAttempts int
	LoginLockout     time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	ResetCleanupInterval time.Duration

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is honoured when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		MySQLDSN:             getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/login?charset=utf8mb4&parseTime=True&loc=UTC"),
		DBMaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime:    getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisPass:            os.Getenv("REDIS_PASSWORD"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		TokenTTL:             getEnvDuration("TOKEN_TTL", time.Hour),
		ResetTokenTTL:        getEnvDuration("RESET_TOKEN_TTL", time.Hour),
		ResetURLBase:         getEnv("RESET_URL_BASE", "http://localhost:8080/reset-password"),
		SMTPHost:             os.Getenv("SMTP_HOST"),
		SMTPPort:             getEnvInt("SMTP_PORT", 587),
		SMTPUsername:         os.Getenv("SMTP_USERNAME"),
		SMTPPassword:         os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:             getEnv("SMTP_FROM", "no-reply@localhost"),
		RevealUnknownEmail:   getEnvBool("FORGOT_PASSWORD_REVEAL_UNKNOWN", false),
		LoginMaxAttempts:     getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginLockout:         getEnvDuration("LOGIN_LOCKOUT", 15*time.Minute),
		RateLimitRPS:         getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:       getEnvInt("RATE_LIMIT_BURST", 30),
		ResetCleanupInterval: getEnvDuration("RESET_CLEANUP_INTERVAL", 10*time.Minute),
		SwaggerHost:          os.Getenv("SWAGGER_HOST"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
