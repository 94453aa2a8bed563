package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Ai          AIConfig
	VectorStore VectorStoreConfig
	WebSearch   WebSearchConfig
	Dedup       DedupConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	TranscriptTopic    string // Transcript archival topic
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider    string // "ollama", "openai", etc
	OllamaBaseURL  string
	ChatModel      string // answer generation and streaming
	AgentModel     string // validators, router, planner, query expansion
	EmbeddingModel string // used for both chunks and queries
	VisionModel    string // image captioning
}

type VectorStoreConfig struct {
	Provider string // "faiss" or "pgvector"
	FaissURL string
	TopK     int
}

type WebSearchConfig struct {
	MaxQueries   int // expanded search queries per request
	LinksPerPage int // result links taken per query
	RateLimit    float64
	ChunkTokens  int
	MinChunkLen  int
}

type DedupConfig struct {
	KeepRatio           float64
	SimilarityThreshold float64
	MinSentenceWords    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			TranscriptTopic:    getEnv("CHAT_TRANSCRIPT_TOPIC_NAME", "CHAT_TRANSCRIPT"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "ollama"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			ChatModel:      getEnv("LLM_CHAT_MODEL", "llama3:latest"),
			AgentModel:     getEnv("LLM_AGENT_MODEL", "llama3:latest"),
			EmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "embeddinggemma"),
			VisionModel:    getEnv("LLM_VISION_MODEL", "gemma3:27b"),
		},
		VectorStore: VectorStoreConfig{
			Provider: getEnv("VECTOR_STORE_PROVIDER", "faiss"),
			FaissURL: getEnv("FAISS_BASE_URL", "http://localhost:8004"),
			TopK:     getEnvAsInt("VECTOR_STORE_TOP_K", 5),
		},
		WebSearch: WebSearchConfig{
			MaxQueries:   getEnvAsInt("WEB_MAX_QUERIES", 3),
			LinksPerPage: getEnvAsInt("WEB_LINKS_PER_QUERY", 5),
			RateLimit:    getEnvAsFloat("WEB_FETCH_RATE_LIMIT", 2.0),
			ChunkTokens:  getEnvAsInt("WEB_CHUNK_TOKENS", 512),
			MinChunkLen:  getEnvAsInt("WEB_MIN_CHUNK_LEN", 70),
		},
		Dedup: DedupConfig{
			KeepRatio:           getEnvAsFloat("DEDUP_KEEP_RATIO", 0.7),
			SimilarityThreshold: getEnvAsFloat("DEDUP_SIMILARITY_THRESHOLD", 0.9),
			MinSentenceWords:    getEnvAsInt("DEDUP_MIN_SENTENCE_WORDS", 4),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
