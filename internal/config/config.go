package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	PollInterval       time.Duration
	BatchSize          int
	OutboxRetention    time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
}

func Load() Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		Port:               port,
		DatabaseURL:        os.Getenv("DB_DSN"),
		PollInterval:       readDurationSeconds("RELAY_POLL_INTERVAL_SECONDS", 1),
		BatchSize:          readInt("RELAY_BATCH_SIZE", 100),
		OutboxRetention:    readDurationSeconds("OUTBOX_RETENTION_SECONDS", 3600),
		RateLimitPerMinute: readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:     readInt("RATE_LIMIT_BURST", 30),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            readInt("REDIS_DB", 0),
	}
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
