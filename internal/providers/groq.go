package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"promptrouter/internal/telemetry"
)

// models that accept a reasoning_format flag; their reply then carries the
// final answer without the thinking transcript
var reasoningModels = map[string]struct{}{
	"qwen-qwq-32b":                  {},
	"deepseek-r1-distill-llama-70b": {},
}

type Groq struct {
	Key, ModelName string
	Temperature    float64
	HTTP           *http.Client
}

func (c *Groq) Name() SourceName { return SourceGroq }

func (c *Groq) Complete(ctx context.Context, prompt string, _ bool) (string, error) {
	body := map[string]any{
		"model": c.ModelName,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"temperature":           c.Temperature,
		"top_p":                 0.95,
		"max_completion_tokens": 1024,
		"stream":                false,
	}
	if _, ok := reasoningModels[c.ModelName]; ok {
		body["reasoning_format"] = "parsed"
	}

	b, _ := json.Marshal(body)
	log := telemetry.L().With().Str("provider", string(c.Name())).Str("model", c.ModelName).Logger()

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.groq.com/openai/v1/chat/completions", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+c.Key)
	req.Header.Set("Content-Type", "application/json")

	t0 := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("groq_request_failed")
		return "", &ProviderError{Source: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Str("status", resp.Status).RawJSON("body", raw).Msg("groq_http_error")
		return "", &ProviderError{Source: c.Name(), Err: errors.New("http " + resp.Status)}
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	_ = json.Unmarshal(raw, &out)
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", &ProviderError{Source: c.Name(), Err: errors.New("empty choices")}
	}

	log.Debug().Int("latency_ms", int(time.Since(t0)/time.Millisecond)).Msg("groq_done")
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
