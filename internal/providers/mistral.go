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

type Mistral struct {
	Key, ModelName string
	Temperature    float64
	HTTP           *http.Client
}

func (c *Mistral) Name() SourceName { return SourceMistral }

func (c *Mistral) Complete(ctx context.Context, prompt string, jsonOnly bool) (string, error) {
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
	log := telemetry.L().With().Str("provider", string(c.Name())).Str("model", c.ModelName).Logger()

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.mistral.ai/v1/chat/completions", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+c.Key)
	req.Header.Set("Content-Type", "application/json")

	t0 := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("mistral_request_failed")
		return "", &ProviderError{Source: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Str("status", resp.Status).RawJSON("body", raw).Msg("mistral_http_error")
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

	log.Debug().Int("latency_ms", int(time.Since(t0)/time.Millisecond)).Msg("mistral_done")
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
