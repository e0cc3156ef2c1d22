package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	AWS      AWSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all (e.g. http://localhost:3000,http://localhost:3001)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/forms?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and S3 bucket names.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	ExportsBucket        string
	PresignExpireMinutes int
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtExpire, _ := strconv.Atoi(getEnv("JWT_EXPIRE_HOURS", "24"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", "postgres://localhost:5432/forms?sslmode=disable"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "forms"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: jwtExpire,
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ExportsBucket:        getEnv("AWS_S3_EXPORTS_BUCKET", "formforge-exports-bucket"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
