package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Study    StudyConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JobTopicName       string
}

type DatabaseConfig struct {
	Connection string
}

// StudyConfig tunes session construction.
type StudyConfig struct {
	DefaultSessionSize int
	MaxSessionSize     int
	SessionTTL         time.Duration
	TimedPointsPerCard int
	TimedDuration      time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JobTopicName:       getEnv("GENERATE_DISTRACTORS_TOPIC_NAME", "GENERATE_DISTRACTORS"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Study: StudyConfig{
			DefaultSessionSize: getEnvAsInt("STUDY_DEFAULT_SESSION_SIZE", 20),
			MaxSessionSize:     getEnvAsInt("STUDY_MAX_SESSION_SIZE", 100),
			SessionTTL:         getEnvAsDuration("STUDY_SESSION_TTL", 24*time.Hour),
			TimedPointsPerCard: getEnvAsInt("STUDY_TIMED_POINTS_PER_CARD", 10),
			TimedDuration:      getEnvAsDuration("STUDY_TIMED_DURATION", 2*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
