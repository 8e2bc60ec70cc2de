package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	PineconeAPIKey    string
	PineconeIndexName string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	ExecAPIBase       string
	JWTSecret         string
	AllowOrigins      []string
	QTablePath        string
}

// Load reads configuration from the environment, with .env support for local
// development. Required keys are validated by the caller at startup.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] No .env file found, using environment variables")
	}

	return &Config{
		Port:              getEnv("PORT", "8000"),
		DatabaseURL:       getEnv("DB_URL", ""),
		PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
		PineconeIndexName: getEnv("PINECONE_INDEX", "codexp-catalog"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		ExecAPIBase:       getEnv("EXEC_API_BASE", "http://localhost:8001"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		AllowOrigins:      strings.Split(getEnv("ALLOW_ORIGINS", "http://localhost:3000"), ","),
		QTablePath:        getEnv("Q_TABLE_PATH", "q_table.json"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
