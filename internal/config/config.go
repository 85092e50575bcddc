package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
	Audio     AudioConfig
	Paths     PathConfig
	Languages LanguageConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type AIConfig struct {
	LLMProvider   string // "ollama"
	LLMModel      string // e.g. "llama3.2"
	OllamaBaseURL string
	Temperature   float64
	MaxTokens     int
}

type RetrievalConfig struct {
	ChunkSize    int
	ChunkOverlap int // configured but not applied by the splitter, see knowledge.splitText
	TopKResults  int
}

type AudioConfig struct {
	WhisperBaseURL string // empty disables voice features
	WhisperModel   string
}

type PathConfig struct {
	KnowledgeBaseDir   string
	InteractionLogPath string
}

type LanguageConfig struct {
	Supported []string
	Default   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3.2"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Temperature:   getEnvAsFloat("LLM_TEMPERATURE", 0.3),
			MaxTokens:     getEnvAsInt("LLM_MAX_TOKENS", 512),
		},
		Retrieval: RetrievalConfig{
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 800),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 150),
			TopKResults:  getEnvAsInt("TOP_K_RESULTS", 3),
		},
		Audio: AudioConfig{
			WhisperBaseURL: getEnv("WHISPER_BASE_URL", ""),
			WhisperModel:   getEnv("WHISPER_MODEL", "base"),
		},
		Paths: PathConfig{
			KnowledgeBaseDir:   getEnv("KNOWLEDGE_BASE_DIR", "knowledge_base"),
			InteractionLogPath: getEnv("INTERACTION_LOG_PATH", "logs/interactions.log"),
		},
		Languages: LanguageConfig{
			Supported: []string{"en", "es", "fr", "de", "it", "pt", "hi", "zh", "ja", "ko", "ar", "ru"},
			Default:   "en",
		},
	}
}

// Validate rejects configurations the pipeline cannot serve.
func (c *Config) Validate() error {
	if c.Ai.Temperature < 0 || c.Ai.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %v", c.Ai.Temperature)
	}
	if c.Retrieval.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Retrieval.ChunkSize)
	}
	if c.Retrieval.TopKResults <= 0 {
		return fmt.Errorf("top K results must be positive, got %d", c.Retrieval.TopKResults)
	}
	if _, err := strconv.Atoi(c.App.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.App.Port)
	}
	return nil
}

// IsSupported reports whether the language code is in the supported set.
func (l LanguageConfig) IsSupported(code string) bool {
	for _, lang := range l.Supported {
		if lang == code {
			return true
		}
	}
	return false
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
