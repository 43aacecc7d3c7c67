package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting for the billing service.
type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret string
	// Optional JWKS endpoint of the identity provider. When set, tokens are
	// verified against the published keys instead of the shared secret.
	JWKSURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string

	WhatsAppServiceURL string
	GatewayTimeout     time.Duration
	StatusTimeout      time.Duration
	ReconnectDelay     time.Duration
}

// Load reads configuration from the environment. A .env file is honored
// when present, matching local development setups.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWKSURL:   os.Getenv("IDP_JWKS_URL"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		MinioBucket:    getenv("MINIO_BUCKET", "invoices"),

		WhatsAppServiceURL: getenv("WHATSAPP_SERVICE_URL", "http://localhost:8002"),
		GatewayTimeout:     getenvDuration("WHATSAPP_TIMEOUT", 30*time.Second),
		StatusTimeout:      getenvDuration("WHATSAPP_STATUS_TIMEOUT", 5*time.Second),
		ReconnectDelay:     getenvDuration("WHATSAPP_RECONNECT_DELAY", 3*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
