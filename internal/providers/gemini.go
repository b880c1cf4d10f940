package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"promptrouter/internal/telemetry"
)

type Gemini struct {
	Key, ModelName string
	Temperature    float64
	HTTP           *http.Client
}

func (c *Gemini) Name() SourceName { return SourceGemini }

func (c *Gemini) Complete(ctx context.Context, prompt string, jsonOnly bool) (string, error) {
	genCfg := map[string]any{
		"temperature":     c.Temperature,
		"maxOutputTokens": 1024,
	}
	if jsonOnly {
		genCfg["responseMimeType"] = "application/json"
	}
	body := map[string]any{
		"contents": []any{
			map[string]any{
				"role": "user",
				"parts": []any{
					map[string]string{"text": prompt},
				},
			},
		},
		"generationConfig": genCfg,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return "", &ProviderError{Source: c.Name(), Err: err}
	}

	log := telemetry.L().With().Str("provider", string(c.Name())).Int("body_len", len(b)).Logger()
	log.Debug().Msg("gemini_request")

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", c.ModelName)
	req, _ := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", c.Key)

	t0 := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("gemini_request_failed")
		return "", &ProviderError{Source: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	log.Debug().Int("status_code", resp.StatusCode).Int("body_len", len(raw)).Msg("gemini_response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Str("status", resp.Status).RawJSON("body", raw).Msg("gemini_http_error")
		return "", &ProviderError{Source: c.Name(), Err: errors.New("http " + resp.Status)}
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		PromptFeedback *struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
	}
	_ = json.Unmarshal(raw, &out)

	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", &ProviderError{Source: c.Name(), Err: errors.New("blocked: " + out.PromptFeedback.BlockReason)}
	}

	var text string
	if len(out.Candidates) > 0 && len(out.Candidates[0].Content.Parts) > 0 {
		text = out.Candidates[0].Content.Parts[0].Text
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ProviderError{Source: c.Name(), Err: errors.New("empty candidates")}
	}

	log.Debug().Int("latency_ms", int(time.Since(t0)/time.Millisecond)).Msg("gemini_done")
	return text, nil
}
