package bootstrap

import (
	"os"
	"strconv"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	HMACKey string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	WhisperModel  string
	EmbedModel    string

	KeywordMinMatches     int
	KeywordMinConfidence  float64
	PhraseMinConfidence   float64
	SemanticMinSimilarity float64
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		HMACKey: getEnv("HMAC_KEY", "change-me-in-production"),

		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       0,

		QdrantHost:   getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:   6334,
		QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),

		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		WhisperModel:  getEnv("WHISPER_MODEL", "whisper-1"),
		EmbedModel:    getEnv("EMBED_MODEL", "text-embedding-3-small"),

		KeywordMinMatches:     getEnvInt("MATCH_KEYWORD_MIN_MATCHES", 3),
		KeywordMinConfidence:  getEnvFloat("MATCH_KEYWORD_MIN_CONFIDENCE", 0.25),
		PhraseMinConfidence:   getEnvFloat("MATCH_PHRASE_MIN_CONFIDENCE", 0.5),
		SemanticMinSimilarity: getEnvFloat("MATCH_SEMANTIC_MIN_SIMILARITY", 0.72),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
