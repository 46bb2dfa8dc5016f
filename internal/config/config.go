package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort       string
	GRPCHealthPort string

	APIBaseURL string
	APIToken   string

	StorageBackend string
	SQLitePath     string
	RedisAddr      string
	RedisPassword  string
	MongoURI       string
	MongoDBName    string
	CartTTL        time.Duration

	KafkaBrokers []string

	CacheDedup bool

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func Load() *Config {
	return &Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		GRPCHealthPort: getEnv("GRPC_HEALTH_PORT", "50060"),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:3000/api"),
		APIToken:   getEnv("API_TOKEN", ""),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", "sqlite")),
		SQLitePath:     getEnv("SQLITE_PATH", "./restaurant.db"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "restaurant"),
		CartTTL:        getEnvDuration("CART_TTL", 30*24*time.Hour),

		KafkaBrokers: getEnvList("KAFKA_BROKERS"),

		CacheDedup: getEnvBool("CACHE_DEDUP", false),

		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
