package config

import (
	"os"
	"regexp"
	"strconv"
	"time"
)

// Config holds runtime configuration for the API process.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string

	ValidatorURL          string
	ValidatorTimeout      time.Duration
	ValidatorMaxBodyBytes int64

	Workers   int
	QueueSize int

	JobTTL        time.Duration
	JobMaxEntries int
	EvictInterval time.Duration

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RateLimitCapacity int
	RateLimitRefill   float64
}

// Load reads configuration from environment variables with defaults for local development.
func Load() Config {
	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),

		ValidatorURL:          getEnv("VALIDATOR_URL", "http://localhost:9000/validate"),
		ValidatorTimeout:      getEnvDuration("VALIDATOR_TIMEOUT", 30*time.Second),
		ValidatorMaxBodyBytes: int64(getEnvInt("VALIDATOR_MAX_BODY_BYTES", 1<<20)),

		Workers:   getEnvInt("WORKERS", 8),
		QueueSize: getEnvInt("QUEUE_SIZE", 256),

		JobTTL:        getEnvDuration("JOB_TTL", time.Hour),
		JobMaxEntries: getEnvInt("JOB_MAX_ENTRIES", 10000),
		EvictInterval: getEnvDuration("EVICT_INTERVAL", time.Minute),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RateLimitCapacity: getEnvInt("RATE_LIMIT_CAPACITY", 50),
		RateLimitRefill:   getEnvFloat("RATE_LIMIT_REFILL_PER_SEC", 20),
	}
}

var credentialsRe = regexp.MustCompile(`://([^:/?#]+):([^@/]+)@`)

// RedactURL masks the password part of a URL: user:pass@ -> user:****@
func RedactURL(s string) string {
	return credentialsRe.ReplaceAllString(s, `://$1:****@`)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
