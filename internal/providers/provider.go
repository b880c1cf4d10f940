package providers

import (
	"context"
	"fmt"
)

type SourceName string

const (
	SourceOpenAI  SourceName = "openai"
	SourceGroq    SourceName = "groq"
	SourceGemini  SourceName = "gemini"
	SourceMistral SourceName = "mistral"
)

// Supported reports whether name is one of the provider identifiers this
// service can route to.
func Supported(name string) bool {
	switch SourceName(name) {
	case SourceOpenAI, SourceGroq, SourceGemini, SourceMistral:
		return true
	}
	return false
}

// Client is a resolved provider ready to take a prompt. jsonOnly asks the
// provider for structured JSON output where the API supports it; the reply
// still goes through CleanModelOutput before parsing.
type Client interface {
	Name() SourceName
	Complete(ctx context.Context, prompt string, jsonOnly bool) (string, error)
}

// ConfigError means a provider was requested whose API key is not set.
type ConfigError struct {
	Var string
}

func (e *ConfigError) Error() string { return "missing env " + e.Var }

// ProviderError wraps transport and API failures from an upstream provider.
type ProviderError struct {
	Source SourceName
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
