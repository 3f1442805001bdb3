package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App   AppConfig
	Mongo MongoConfig
	Ai    AIConfig
	MCP   MCPConfig
	Query QueryConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	AuditTopic         string
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type AIConfig struct {
	LLMProvider   string // "openai", "gemini", "ollama" or "" for fallback mode
	LLMModel      string
	OpenAIKey     string
	GoogleGemini  string
	OllamaBaseURL string
}

type MCPConfig struct {
	Enabled   bool
	ServerURL string
	CacheTTL  time.Duration
}

type QueryConfig struct {
	ResultLimit       int
	SummarySampleSize int
	HistoryTTL        time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AuditTopic:         getEnv("QUERY_AUDIT_TOPIC_NAME", "QUERY_ANSWERED"),
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", "mongodb://localhost:27017/"),
			Database:   getEnv("MONGO_DATABASE", "cicd_db"),
			Collection: getEnv("MONGO_COLLECTION", "cdPipelineEvents"),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
			LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			GoogleGemini:  getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		MCP: MCPConfig{
			Enabled:   getEnvAsBool("MCP_ENABLED", false),
			ServerURL: getEnv("MCP_SERVER_URL", "http://localhost:3001"),
			CacheTTL:  time.Duration(getEnvAsInt("MCP_CACHE_TTL", 300)) * time.Second,
		},
		Query: QueryConfig{
			ResultLimit:       getEnvAsInt("RESULT_LIMIT", 1000),
			SummarySampleSize: getEnvAsInt("SUMMARY_SAMPLE_SIZE", 10),
			HistoryTTL:        time.Duration(getEnvAsInt("HISTORY_TTL_MINUTES", 60)) * time.Minute,
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
