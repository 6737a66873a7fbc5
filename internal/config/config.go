package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServiceConfig holds all configuration for the car-rental API.
type ServiceConfig struct {
	Port     string
	AppEnv   string
	Database DatabaseConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
	Razorpay RazorpayConfig
	Mail     MailConfig
	Reaper   ReaperConfig
	CORS     CORSConfig
	Seed     SeedConfig
}

// SeedConfig holds the super admin account created at first startup.
type SeedConfig struct {
	SuperAdminName     string
	SuperAdminEmail    string
	SuperAdminPassword string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the GORM connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the postgres:// URL used by the migration runner.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// KafkaConfig holds event bus settings.
type KafkaConfig struct {
	Brokers []string
	Enabled bool
}

// RazorpayConfig holds payment gateway credentials.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

// MailConfig holds outbound email settings.
type MailConfig struct {
	MailerSendKey string
	FromName      string
	FromEmail     string
	DevMode       bool
	ClientURL     string
}

// ReaperConfig holds the stale-booking sweep settings.
type ReaperConfig struct {
	Interval       string
	StaleThreshold time.Duration
}

// CORSConfig holds allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables (prefix RENTAL_),
// falling back to a local .env file when present.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RENTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// A missing .env is fine, anything else is a real error.
	if err := v.ReadInConfig(); err != nil && !strings.Contains(err.Error(), "no such file") {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v.SetDefault("PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "car_rental")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_SECRET", "dev-only-secret-change-in-prod")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_ENABLED", true)
	v.SetDefault("MAIL_FROM_NAME", "Wheelio Car Rental")
	v.SetDefault("MAIL_FROM_EMAIL", "noreply@wheelio.local")
	v.SetDefault("MAIL_DEV_MODE", true)
	v.SetDefault("CLIENT_URL", "http://localhost:5173")
	v.SetDefault("REAPER_INTERVAL", "@every 1m")
	v.SetDefault("REAPER_STALE_THRESHOLD", "10m")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("SUPER_ADMIN_NAME", "Super Admin")

	cfg := &ServiceConfig{
		Port:   normalizePort(v.GetString("PORT")),
		AppEnv: v.GetString("APP_ENV"),
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			AccessTokenTTL:  v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTokenTTL: v.GetDuration("JWT_REFRESH_TTL"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			Enabled: v.GetBool("KAFKA_ENABLED"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     v.GetString("RAZORPAY_KEY_ID"),
			KeySecret: v.GetString("RAZORPAY_KEY_SECRET"),
		},
		Mail: MailConfig{
			MailerSendKey: v.GetString("MAILERSEND_API_KEY"),
			FromName:      v.GetString("MAIL_FROM_NAME"),
			FromEmail:     v.GetString("MAIL_FROM_EMAIL"),
			DevMode:       v.GetBool("MAIL_DEV_MODE"),
			ClientURL:     v.GetString("CLIENT_URL"),
		},
		Reaper: ReaperConfig{
			Interval:       v.GetString("REAPER_INTERVAL"),
			StaleThreshold: v.GetDuration("REAPER_STALE_THRESHOLD"),
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ","),
		},
		Seed: SeedConfig{
			SuperAdminName:     v.GetString("SUPER_ADMIN_NAME"),
			SuperAdminEmail:    v.GetString("SUPER_ADMIN_EMAIL"),
			SuperAdminPassword: v.GetString("SUPER_ADMIN_PASSWORD"),
		},
	}

	if cfg.Reaper.StaleThreshold <= 0 {
		return nil, fmt.Errorf("reaper stale threshold must be positive")
	}

	return cfg, nil
}

func normalizePort(port string) string {
	if port == "" {
		return ":8080"
	}
	if !strings.HasPrefix(port, ":") {
		return ":" + port
	}
	return port
}
