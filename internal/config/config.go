package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	LogLevel    string
	Environment string
	CORSOrigins string

	// APIBaseURL is the root of the paging video API, without a trailing slash.
	APIBaseURL     string
	ClassifierPath string
	CorpusPath     string
	// CommentLimit caps the number of comments fetched per video (0 = all).
	CommentLimit int
	HTTPTimeout  time.Duration
	// AnalysisRateLimit is the number of /video requests allowed per IP and minute.
	AnalysisRateLimit int
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "sqlite://data/sentimentube.db"),
		RedisURL:    getEnv("REDIS_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "development"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		APIBaseURL:     getEnv("VIDEO_API_URL", "https://gdata.youtube.com/feeds/api"),
		ClassifierPath: getEnv("CLASSIFIER_PATH", "data/classifier.gob"),
		CorpusPath:     getEnv("CORPUS_PATH", ""),
		CommentLimit:   getEnvInt("COMMENT_LIMIT", 0),
		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		AnalysisRateLimit: getEnvInt("ANALYSIS_RATE_LIMIT", 10),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
