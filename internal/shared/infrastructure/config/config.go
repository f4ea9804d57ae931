package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/saransh1220/libraria/internal/shared/infrastructure/database"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Database    database.PostgresConfig
	Redis       database.RedisConfig
	JWT         JWTConfig
	FileStorage FileStorageConfig
	Log         LogConfig
	Library     LibraryConfig
	Migrations  MigrationsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins string
	PublicBaseURL  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// FileStorageConfig holds file storage configuration
type FileStorageConfig struct {
	UseS3            bool
	S3Region         string
	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3BucketName     string
	S3UseSSL         bool
	LocalPath        string
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level  string
	Format string
}

// LibraryConfig holds circulation policy knobs
type LibraryConfig struct {
	FinePerDay      float64
	Currency        string
	ReminderLockTTL time.Duration
}

// MigrationsConfig controls schema migrations at boot
type MigrationsConfig struct {
	Path    string
	AutoRun bool
}

var defaults = map[string]string{
	"PORT":               "8080",
	"ALLOWED_ORIGINS":    "http://localhost:4200",
	"PUBLIC_BASE_URL":    "http://localhost:8080",
	"DB_HOST":            "localhost",
	"DB_PORT":            "5432",
	"DB_USER":            "postgres",
	"DB_PASSWORD":        "",
	"DB_NAME":            "libraria",
	"DB_SSLMODE":         "disable",
	"REDIS_HOST":         "localhost",
	"REDIS_PORT":         "6379",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           "0",
	"JWT_SECRET":         "default-dev-secret",
	"JWT_EXPIRATION":     "24h",
	"USE_S3":             "false",
	"S3_REGION":          "us-east-1",
	"S3_ENDPOINT":        "",
	"S3_ACCESS_KEY":      "",
	"S3_SECRET_KEY":      "",
	"S3_BUCKET":          "",
	"S3_USE_SSL":         "true",
	"LOCAL_STORAGE_PATH": "./uploads",
	"LOG_LEVEL":          "info",
	"LOG_FORMAT":         "json",
	"FINE_PER_DAY":       "10",
	"FINE_CURRENCY":      "INR",
	"REMINDER_LOCK_TTL":  "30s",
	"MIGRATIONS_PATH":    "migrations",
	"MIGRATIONS_AUTORUN": "true",
}

// Load reads configuration from an optional .env file and environment variables
func Load() Config {
	// .env is optional; real environment variables always win
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return Config{
		Server: ServerConfig{
			Port:           getString(v, "PORT"),
			AllowedOrigins: getString(v, "ALLOWED_ORIGINS"),
			PublicBaseURL:  getString(v, "PUBLIC_BASE_URL"),
		},
		Database: database.PostgresConfig{
			Host:     getString(v, "DB_HOST"),
			Port:     getString(v, "DB_PORT"),
			User:     getString(v, "DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   getString(v, "DB_NAME"),
			SSLMode:  getString(v, "DB_SSLMODE"),
		},
		Redis: database.RedisConfig{
			Host:     getString(v, "REDIS_HOST"),
			Port:     getString(v, "REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET"),
			Expiry: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		},
		FileStorage: FileStorageConfig{
			UseS3:            v.GetBool("USE_S3"),
			S3Region:         getString(v, "S3_REGION"),
			S3Endpoint:       v.GetString("S3_ENDPOINT"),
			S3PublicEndpoint: firstNonEmpty(v.GetString("S3_PUBLIC_ENDPOINT"), v.GetString("S3_ENDPOINT")),
			S3AccessKey:      v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:      v.GetString("S3_SECRET_KEY"),
			S3BucketName:     v.GetString("S3_BUCKET"),
			S3UseSSL:         v.GetBool("S3_USE_SSL"),
			LocalPath:        getString(v, "LOCAL_STORAGE_PATH"),
		},
		Log: LogConfig{
			Level:  getString(v, "LOG_LEVEL"),
			Format: getString(v, "LOG_FORMAT"),
		},
		Library: LibraryConfig{
			FinePerDay:      parseFloat(v, "FINE_PER_DAY", 10),
			Currency:        getString(v, "FINE_CURRENCY"),
			ReminderLockTTL: parseDuration(v.GetString("REMINDER_LOCK_TTL"), 30*time.Second),
		},
		Migrations: MigrationsConfig{
			Path:    getString(v, "MIGRATIONS_PATH"),
			AutoRun: v.GetBool("MIGRATIONS_AUTORUN"),
		},
	}
}

// getString returns the value for key, falling back to the default when the
// variable is set but empty
func getString(v *viper.Viper, key string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return defaults[key]
}

// parseDuration parses a duration string or returns a default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}

func parseFloat(v *viper.Viper, key string, defaultValue float64) float64 {
	f := v.GetFloat64(key)
	if f < 0 {
		return defaultValue
	}
	if f == 0 && v.GetString(key) != "0" {
		return defaultValue
	}
	return f
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
