package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AppMode       string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	RedisHost     string
	RedisPort     string
	RedisPassword string

	SessionTTL       time.Duration
	ActiveWindow     time.Duration
	TypingIdle       time.Duration
	EditWindow       time.Duration
	RetentionHorizon time.Duration
	SweepInterval    time.Duration
	PreviewTimeout   time.Duration

	FeedLimit   int
	SearchLimit int
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort:       getEnv("APP_PORT", "8080"),
		AppMode:       getEnv("APP_MODE", "debug"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "hue_chat"),
		DBPort:        getEnv("DB_PORT", "5432"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		SessionTTL:       getEnvAsDuration("SESSION_TTL", 30*24*time.Hour),
		ActiveWindow:     getEnvAsDuration("ACTIVE_WINDOW", 60*time.Second),
		TypingIdle:       getEnvAsDuration("TYPING_IDLE", 5*time.Second),
		EditWindow:       getEnvAsDuration("EDIT_WINDOW", time.Minute),
		RetentionHorizon: getEnvAsDuration("RETENTION_HORIZON", 48*time.Hour),
		SweepInterval:    getEnvAsDuration("SWEEP_INTERVAL", time.Minute),
		PreviewTimeout:   getEnvAsDuration("PREVIEW_TIMEOUT", 3*time.Second),

		FeedLimit:   getEnvAsInt("FEED_LIMIT", 100),
		SearchLimit: getEnvAsInt("SEARCH_LIMIT", 50),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}
