package providers

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"promptrouter/internal/config"
	"promptrouter/internal/telemetry"
)

// Registry resolves a requested provider name plus optional model override
// into a configured Client. Built once at boot; the OpenAI limiter is shared
// across requests.
type Registry struct {
	cfg           *config.Config
	openaiLimiter *rate.Limiter
}

func NewRegistry(cfg *config.Config) *Registry {
	rps := cfg.OpenAIRPS
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.OpenAIBurst
	if burst <= 0 {
		burst = 2
	}
	return &Registry{
		cfg:           cfg,
		openaiLimiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Resolve maps a provider name to a client. An unrecognized name falls back
// to OpenAI instead of failing; see DESIGN.md for why this stays silent.
func (r *Registry) Resolve(provider, model string) (Client, error) {
	switch SourceName(strings.ToLower(strings.TrimSpace(provider))) {
	case SourceGroq:
		if r.cfg.GroqKey == "" {
			return nil, &ConfigError{Var: "GROQ_API_KEY"}
		}
		return &Groq{
			Key:         r.cfg.GroqKey,
			ModelName:   orDefault(model, r.cfg.GroqModel),
			Temperature: r.cfg.Temperature,
			HTTP:        newHTTPClient(),
		}, nil
	case SourceGemini:
		if r.cfg.GeminiKey == "" {
			return nil, &ConfigError{Var: "GEMINI_API_KEY"}
		}
		return &Gemini{
			Key:         r.cfg.GeminiKey,
			ModelName:   orDefault(model, r.cfg.GeminiModel),
			Temperature: r.cfg.Temperature,
			HTTP:        newHTTPClient(),
		}, nil
	case SourceMistral:
		if r.cfg.MistralKey == "" {
			return nil, &ConfigError{Var: "MISTRAL_API_KEY"}
		}
		return &Mistral{
			Key:         r.cfg.MistralKey,
			ModelName:   orDefault(model, r.cfg.MistralModel),
			Temperature: r.cfg.Temperature,
			HTTP:        newHTTPClient(),
		}, nil
	case SourceOpenAI:
		// primary, handled below
	default:
		if strings.TrimSpace(provider) != "" {
			l := telemetry.L()
			l.Warn().Str("provider", provider).Msg("unknown_provider_fallback_openai")
		}
	}
	if r.cfg.OpenAIKey == "" {
		return nil, &ConfigError{Var: "OPENAI_API_KEY"}
	}
	return &OpenAI{
		Key:         r.cfg.OpenAIKey,
		ModelName:   orDefault(model, r.cfg.OpenAIModel),
		Temperature: r.cfg.Temperature,
		HTTP:        newHTTPClient(),
		Limiter:     r.openaiLimiter,
	}, nil
}

func orDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
