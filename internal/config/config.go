package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// Session signing secret. Never logged, never echoed in responses.
	JWTSecret  string
	SessionTTL time.Duration

	CORSOrigins []string
	UploadDir   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PlacesCacheTTL time.Duration

	OTLPEndpoint string

	AuthRateLimit  int
	AuthRateWindow time.Duration
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)

	ttlHours := getEnvInt("SESSION_TTL_HOURS", 72)
	cacheSeconds := getEnvInt("PLACES_CACHE_TTL_SECONDS", 30)

	origins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return Config{
		Env:            env,
		Port:           port,
		DBURL:          buildDBURL(),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		SessionTTL:     time.Duration(ttlHours) * time.Hour,
		CORSOrigins:    origins,
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		PlacesCacheTTL: time.Duration(cacheSeconds) * time.Second,
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", ""),
		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: time.Duration(getEnvInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "staynest")
	pass := getEnv("DB_PASSWORD", "staynest")
	name := getEnv("DB_NAME", "staynest")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
