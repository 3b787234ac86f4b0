package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Agent    AgentConfig
	Handoff  HandoffConfig
	Catalog  CatalogConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	ConsoleLogFilePath string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	OpenAI       string
	GoogleGemini string
	HuggingFace  string
	Jina         string
}

type AIConfig struct {
	LLMProvider         string // "openai", "ollama", "huggingface"
	LLMModel            string // e.g. "gpt-3.5-turbo", "llama3"
	LLMBaseURL          string // optional override for OpenAI-compatible endpoints
	Temperature         float64
	EmbeddingProvider   string // "openai", "ollama", "gemini" or "jina"
	EmbeddingModel      string
	EmbeddingBaseURL    string
	EmbeddingDimensions int
	OllamaBaseURL       string
}

// AgentConfig tunes the per-session conversation pipeline.
type AgentConfig struct {
	HistoryBackend  string // "redis" or "memory"
	HistoryTTL      time.Duration
	HistoryTimeout  time.Duration
	SearchLimit     int
	SearchTimeout   time.Duration
	LLMTimeout      time.Duration
	PersistRetryMax time.Duration
	SessionIdleTTL  time.Duration
}

type HandoffConfig struct {
	EstimatedWaitTime string
	DefaultReason     string
	SupportEmail      string
}

type CatalogConfig struct {
	IndexTopic          string
	SimilarityThreshold float64 // minimum cosine similarity, 0 or less keeps the nearest hits unfiltered
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ConsoleLogFilePath: getEnv("AGENT_CONSOLE_LOG_FILE_PATH", "logs/agent_console.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Customer Service Bot"),
		},
		Keys: APIKeys{
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:         getEnv("LLM_PROVIDER", "openai"),
			LLMModel:            getEnv("LLM_MODEL", "gpt-3.5-turbo"),
			LLMBaseURL:          getEnv("LLM_BASE_URL", ""),
			Temperature:         getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", ""),
			EmbeddingBaseURL:    getEnv("EMBEDDING_BASE_URL", ""),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Agent: AgentConfig{
			HistoryBackend:  getEnv("HISTORY_BACKEND", "redis"),
			HistoryTTL:      getEnvAsDuration("HISTORY_TTL", 0),
			HistoryTimeout:  getEnvAsDuration("HISTORY_TIMEOUT", 5*time.Second),
			SearchLimit:     getEnvAsInt("SEARCH_LIMIT", 3),
			SearchTimeout:   getEnvAsDuration("SEARCH_TIMEOUT", 10*time.Second),
			LLMTimeout:      getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			PersistRetryMax: getEnvAsDuration("PERSIST_RETRY_MAX", 10*time.Second),
			SessionIdleTTL:  getEnvAsDuration("SESSION_IDLE_TTL", 30*time.Minute),
		},
		Handoff: HandoffConfig{
			EstimatedWaitTime: getEnv("HANDOFF_ESTIMATED_WAIT", "5-10 minutes"),
			DefaultReason:     getEnv("HANDOFF_DEFAULT_REASON", "User requested human assistance"),
			SupportEmail:      getEnv("HANDOFF_SUPPORT_EMAIL", ""),
		},
		Catalog: CatalogConfig{
			IndexTopic:          getEnv("CATALOG_INDEX_TOPIC_NAME", "INDEX_PRODUCT"),
			SimilarityThreshold: getEnvAsFloat("CATALOG_SIMILARITY_THRESHOLD", 0),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "customer-service-backend"),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("30s", "5m").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
