package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port             int
	DatabaseURL      string
	LogLevel         string
	GeminiAPIKey     string
	GeminiModel      string
	AITimeoutSeconds int
	NatsURL          string
	NatsToken        string
	AuthJWTSecret    string
}

func Load() Config {
	return Config{
		Port:             envInt("SBARD_PORT", 8600),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		GeminiAPIKey:     envStr("GEMINI_API_KEY", ""),
		GeminiModel:      envStr("SBARD_MODEL", "gemini-2.0-flash"),
		AITimeoutSeconds: envInt("SBARD_AI_TIMEOUT_SECONDS", 25),
		NatsURL:          envStr("NATS_URL", ""),
		NatsToken:        envStr("NATS_TOKEN", ""),
		AuthJWTSecret:    envStr("AUTH_JWT_SECRET", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
