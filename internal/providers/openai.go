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

	"golang.org/x/time/rate"

	"promptrouter/internal/telemetry"
)

// OpenAI is the primary provider. When jsonOnly is set it requests the
// structured json_object response format so the model is held to emitting
// parseable JSON.
type OpenAI struct {
	Key, ModelName string
	Temperature    float64
	HTTP           *http.Client
	Limiter        *rate.Limiter
}

func (c *OpenAI) Name() SourceName { return SourceOpenAI }

func (c *OpenAI) Complete(ctx context.Context, prompt string, jsonOnly bool) (string, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return "", &ProviderError{Source: c.Name(), Err: err}
		}
	}

	body := map[string]any{
		"model": c.ModelName,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"temperature": c.Temperature,
		"max_tokens":  1024,
	}
	if jsonOnly {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	b, _ := json.Marshal(body)
	log := telemetry.L().With().Str("provider", string(c.Name())).Int("body_len", len(b)).Logger()

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+c.Key)
	req.Header.Set("Content-Type", "application/json")

	t0 := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("openai_request_failed")
		return "", &ProviderError{Source: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	log.Debug().Int("status_code", resp.StatusCode).Int("body_len", len(raw)).Msg("openai_response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Str("status", resp.Status).RawJSON("body", raw).Msg("openai_http_error")
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

	log.Debug().Int("latency_ms", int(time.Since(t0)/time.Millisecond)).Msg("openai_done")
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
