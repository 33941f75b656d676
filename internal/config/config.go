package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Knowledge base
	KnowledgeBaseDir string
	MinChunkSize     int
	MaxChunkSize     int

	// AI providers
	MockAI          bool
	GeminiAPIKey    string
	GeminiModel     string
	EmbeddingsModel string
	VectorDim       int
	ProviderTimeout int // seconds
	MaxAttempts     int
	RateLimitRPM    int

	// Retrieval
	TopK          int
	MinRelevance  float64
	ContextBudget int // words
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8501"), ","),

		KnowledgeBaseDir: getEnv("KNOWLEDGE_BASE_DIR", "./phase2_data"),
		MinChunkSize:     getEnvInt("MIN_CHUNK_SIZE", 200),
		MaxChunkSize:     getEnvInt("MAX_CHUNK_SIZE", 500),

		MockAI:          getEnvBool("MOCK_AI", false),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		EmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		VectorDim:       getEnvInt("VECTOR_DIM", 768),
		ProviderTimeout: getEnvInt("PROVIDER_TIMEOUT", 30),
		MaxAttempts:     getEnvInt("PROVIDER_MAX_ATTEMPTS", 3),
		RateLimitRPM:    getEnvInt("PROVIDER_RATE_LIMIT_RPM", 10),

		TopK:          getEnvInt("RETRIEVAL_TOP_K", 5),
		MinRelevance:  getEnvFloat64("RETRIEVAL_MIN_RELEVANCE", 0.25),
		ContextBudget: getEnvInt("CONTEXT_BUDGET_WORDS", 2000),
	}

	// Validate required fields
	if !cfg.MockAI && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required unless MOCK_AI=true - set it in .env file")
	}

	if cfg.MinChunkSize <= 0 || cfg.MaxChunkSize <= cfg.MinChunkSize {
		return nil, fmt.Errorf("invalid chunk bounds: min=%d max=%d", cfg.MinChunkSize, cfg.MaxChunkSize)
	}

	if cfg.VectorDim <= 0 {
		return nil, fmt.Errorf("VECTOR_DIM must be positive, got %d", cfg.VectorDim)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
