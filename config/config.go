package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Values come from the environment (optionally via a .env file) with simple defaults.
type Config struct {
	ServerAddr string

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string // restricted tier: reads, chat, play counter
	DBPassword string
	// Admin tier bypasses the row-level restrictions the public tier is
	// subject to; only the song metadata insert uses it.
	DBAdminUser     string
	DBAdminPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioRegion    string
	// MinioPublicURL is the externally reachable base used to build blob URLs,
	// e.g. "https://cdn.example.com". Defaults to the endpoint itself.
	MinioPublicURL  string
	SongBucket      string
	ThumbnailBucket string

	ChatHistoryLimit int // newest rows kept after each post
	ChatPageSize     int // rows returned by the poll endpoint

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
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	minioEndpoint := getEnv("MINIO_ENDPOINT", "127.0.0.1:9000")
	scheme := "http://"
	if getEnvBool("MINIO_USE_SSL", false) {
		scheme = "https://"
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		DBHost:          getEnv("DB_HOST", "127.0.0.1"),
		DBPort:          getEnv("DB_PORT", "3306"),
		DBName:          getEnv("DB_NAME", "wavefm"),
		DBUser:          getEnv("DB_USER", "wavefm"),
		DBPassword:      os.Getenv("DB_PASSWORD"), // no hardcoded default for passwords
		DBAdminUser:     getEnv("DB_ADMIN_USER", "root"),
		DBAdminPassword: os.Getenv("DB_ADMIN_PASSWORD"),

		MinioEndpoint:   minioEndpoint,
		MinioAccessKey:  os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:  os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:     getEnvBool("MINIO_USE_SSL", false),
		MinioRegion:     getEnv("MINIO_REGION", "us-east-1"),
		MinioPublicURL:  getEnv("MINIO_PUBLIC_URL", scheme+minioEndpoint),
		SongBucket:      getEnv("SONG_BUCKET", "songs"),
		ThumbnailBucket: getEnv("THUMBNAIL_BUCKET", "thumbnails"),

		ChatHistoryLimit: getEnvInt("CHAT_HISTORY_LIMIT", 100),
		ChatPageSize:     getEnvInt("CHAT_PAGE_SIZE", 5),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}
