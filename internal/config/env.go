package config

import (
	"log"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	JWTAudience string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	UploadBucket string

	QdrantURL        string
	QdrantCollection string
	QdrantAPIKey     string

	EmbedProvider   string
	AzureAPIKey     string
	AzureDeployment string
	AzureAPIVersion string
	AzureEndpoint   string
	GeminiAPIKey    string
	GeminiModel     string

	ChunkSize    int
	ChunkOverlap int

	PoolSize       int
	MaxUploadBytes int64
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("SECRET_KEY", ""),
		JWTAudience: getEnv("JWT_AUDIENCE", "genserve.ai"),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		UploadBucket: getEnv("UPLOAD_BUCKET", "uploads"),

		QdrantURL:        getEnv("QDRANT_URL", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "default_collection"),
		QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),

		EmbedProvider:   getEnv("EMBED_PROVIDER", "azure"),
		AzureAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT", "text-embedding-3-large"),
		AzureAPIVersion: getEnv("AZURE_OPENAI_TEXTEMBEDDER_API_VERSION", ""),
		AzureEndpoint:   getEnv("AZURE_OPENAI_TEXTEMBEDDER_ENDPOINT", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("EMBED_MODEL", "text-embedding-004"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 2000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),

		PoolSize:       getEnvInt("INGEST_POOL_SIZE", 2*runtime.NumCPU()),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 64<<20),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("SECRET_KEY not set")
	}
	if cfg.QdrantURL == "" {
		log.Fatal("QDRANT_URL not set")
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

func getEnvInt64(key string, def int64) int64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
