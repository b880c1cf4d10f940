package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv, AppPort string
	CORSOrigins     []string

	OpenAIKey, OpenAIModel   string
	GroqKey, GroqModel       string
	GeminiKey, GeminiModel   string
	MistralKey, MistralModel string

	Temperature float64

	OpenAIRPS   int
	OpenAIBurst int

	OpenSearchHost string
	OpenSearchPort int
	FeedbackIndex  string

	RedisAddr     string
	RedisDB       int
	QueryCacheTTL time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppEnv:      get("APP_ENV", "dev"),
		AppPort:     get("APP_PORT", "8080"),
		CORSOrigins: split(get("CORS_ORIGINS", "http://localhost:5173")),

		// provider keys are optional at boot; a request for a keyless
		// provider fails with a config error instead
		OpenAIKey:    get("OPENAI_API_KEY", ""),
		OpenAIModel:  get("OPENAI_MODEL", "gpt-4o"),
		GroqKey:      get("GROQ_API_KEY", ""),
		GroqModel:    get("GROQ_MODEL", "deepseek-r1-distill-llama-70b"),
		GeminiKey:    get("GEMINI_API_KEY", ""),
		GeminiModel:  get("GEMINI_MODEL", "gemini-2.5-pro"),
		MistralKey:   get("MISTRAL_API_KEY", ""),
		MistralModel: get("MISTRAL_MODEL", "mistral-large-latest"),

		Temperature: atof(get("LLM_TEMPERATURE", "0.1")),

		OpenAIRPS:   atoi(get("OPENAI_RPS", "2")),
		OpenAIBurst: atoi(get("OPENAI_BURST", "2")),

		OpenSearchHost: get("OPENSEARCH_HOST", "opensearch"),
		OpenSearchPort: atoi(get("OPENSEARCH_PORT", "9200")),
		FeedbackIndex:  get("FEEDBACK_INDEX", "chat-feedback"),

		RedisAddr:     get("REDIS_ADDR", ""),
		RedisDB:       atoi(get("REDIS_DB", "0")),
		QueryCacheTTL: mustDuration(get("QUERY_CACHE_TTL", "15m")),
	}
	return c
}

func get(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func atoi(s string) int { i, _ := strconv.Atoi(s); return i }

func atof(s string) float64 { f, _ := strconv.ParseFloat(s, 64); return f }

func mustDuration(s string) time.Duration { d, _ := time.ParseDuration(s); return d }

func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func GetEnv(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}
