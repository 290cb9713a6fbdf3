package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	JWTSecret    string
	AIAPIKey     string
	EmbedModel   string
	EmbedDim     int
	GenModel     string
	Port         string

	// Chunking and retrieval.
	ChunkSize    int
	ChunkOverlap int
	TopK         int

	// Gemini request queue.
	RequestInterval time.Duration
	MaxQueueSize    int
	MaxRetries      int
	BaseDelay       time.Duration

	// Generation tuning.
	Temperature     float32
	GenTopK         int
	GenTopP         float32
	MaxOutputTokens int
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "intern-compass-docs"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:     getEnvInt("EMBED_DIM", 768),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		Port:         getEnv("PORT", "3001"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 512),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 50),
		TopK:         getEnvInt("TOP_K", 5),

		RequestInterval: getEnvMillis("REQUEST_INTERVAL_MS", 1000),
		MaxQueueSize:    getEnvInt("MAX_QUEUE_SIZE", 10),
		MaxRetries:      getEnvInt("MAX_RETRIES", 3),
		BaseDelay:       getEnvMillis("BASE_DELAY_MS", 500),

		Temperature:     getEnvFloat("GEN_TEMPERATURE", 0.7),
		GenTopK:         getEnvInt("GEN_TOP_K", 40),
		GenTopP:         getEnvFloat("GEN_TOP_P", 0.95),
		MaxOutputTokens: getEnvInt("GEN_MAX_OUTPUT_TOKENS", 2048),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float32) float32 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		log.Printf("WARN: %s=%q not a float, using default %v", key, v, def)
		return def
	}
	return float32(f)
}

func getEnvMillis(key string, defMillis int) time.Duration {
	return time.Duration(getEnvInt(key, defMillis)) * time.Millisecond
}
