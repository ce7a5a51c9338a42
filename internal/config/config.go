package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string

	OpenAIKey   string
	OpenAIModel string

	// Requests per minute per user on the assistant endpoints.
	AssistantRatePerMinute int
}

func Load() *Config {
	// .env is optional, real env vars win
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "banter"),
		DBPassword: getEnv("DB_PASSWORD", "banter_dev_password"),
		DBName:     getEnv("DB_NAME", "banter"),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),

		OpenAIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel: getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		AssistantRatePerMinute: getEnvInt("ASSISTANT_RATE_PER_MINUTE", 10),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
