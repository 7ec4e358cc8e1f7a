package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Values come from the environment (optionally via a .env file) with simple defaults.
type Config struct {
	ListenAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	JWTSecret string

	// Emby media server the "native search" channel talks to.
	EmbyServerURL string
	EmbyAPIKey    string
	EmbyUserID    string
	EmbyChannelID string // Roku app id of the Emby channel

	// Brave Search API key for the supplementary web-search provider.
	BraveAPIKey string

	// Fallback Roku for play requests whose reader has no mapping yet.
	DefaultRokuAddr string

	// Per-plugin search timeout in milliseconds.
	SearchTimeoutMs int

	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override variables already set in the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8584"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // no hardcoded default for credentials
		DBName:     getEnv("DB_NAME", "blockbuster"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "blockbuster"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),

		EmbyServerURL: strings.TrimRight(getEnv("EMBY_SERVER_URL", ""), "/"),
		EmbyAPIKey:    os.Getenv("EMBY_API_KEY"),
		EmbyUserID:    os.Getenv("EMBY_USER_ID"),
		EmbyChannelID: getEnv("EMBY_CHANNEL_ID", "44191"),

		BraveAPIKey: os.Getenv("BRAVE_API_KEY"),

		DefaultRokuAddr: getEnv("DEFAULT_ROKU_ADDR", ""),

		SearchTimeoutMs: getEnvInt("SEARCH_TIMEOUT_MS", 5000),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}
