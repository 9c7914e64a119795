package config

import (
	"os"
	"strconv"

	"spyfall_webapp/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	JWTSecret     string
	DatabaseURL   string
	AllowedOrigin string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	// Room defaults
	RoomMaxUsers       int
	SessionTimeSeconds int
	StartRounds        int

	// API rate limiting
	APIRateLimit         int
	APIRateWindowSeconds int
}

// Load reads configuration from the environment. JWT_SECRET is the only
// required value; DATABASE_URL and REDIS_ADDR are optional and their
// features degrade gracefully when unset.
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	cfg := &Config{
		AppPort:       envString("APP_PORT", "8080"),
		JWTSecret:     jwtSecret,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		LogLevel: envString("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		RoomMaxUsers:       envInt("ROOM_MAX_USERS", 10),
		SessionTimeSeconds: envInt("SESSION_TIME_SECONDS", 120),
		StartRounds:        envInt("START_ROUNDS", 5),

		APIRateLimit:         envInt("API_RATE_LIMIT", 60),
		APIRateWindowSeconds: envInt("API_RATE_WINDOW_SECONDS", 60),
	}

	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, game history disabled")
	}

	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
