package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Offline mirror (embedded sqlite)
	MirrorPath string

	// Redis cache
	RedisHost string
	RedisPort string

	// Google sign-in
	GoogleClientID string

	// Push notifications
	FirebaseCredentials string

	// Outbox event publishing
	GoogleProjectID string
	PubSubTopic     string

	// AI analysis
	AIProvider    string
	OllamaBaseURL string
	OllamaModel   string

	// Resource uploads
	UploadDir     string
	PublicBaseURL string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 168 * time.Hour // 7 days
	if exp := os.Getenv("JWT_REFRESH_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:  accessExpiry,
		JWTRefreshExpiry: refreshExpiry,

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "coachly_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		MirrorPath: getEnv("MIRROR_PATH", "./data/mirror.sqlite"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnv("REDIS_PORT", "6379"),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),

		GoogleProjectID: getEnv("GOOGLE_PROJECT_ID", ""),
		PubSubTopic:     getEnv("PUBSUB_TOPIC", "coachly-mutations"),

		AIProvider:    getEnv("AI_PROVIDER", "ollama"),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),

		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
