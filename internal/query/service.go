package query

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"promptrouter/internal/config"
	"promptrouter/internal/model"
	"promptrouter/internal/providers"
	"promptrouter/internal/sanitize"
	"promptrouter/internal/telemetry"
)

const (
	UseCaseFreePrompt = "FreePrompt"
	UseCaseSummary    = "Summary"
	UseCaseQuiz       = "Quiz"
	UseCaseFunFact    = "FunFact"
)

var (
	ErrEmptyQuery     = errors.New("query must not be empty")
	ErrMissingLength  = errors.New("missing length for summary")
	ErrBadModelOutput = errors.New("invalid model response")
)

// ValidationError carries the validator message, surfaced verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type Request struct {
	Query    string              `json:"query"`
	Length   string              `json:"length"`
	UseCase  string              `json:"use_case"`
	Provider string              `json:"provider"`
	Model    string              `json:"model"`
	Messages []model.ChatMessage `json:"messages"`
}

// Resolver turns a provider name plus optional model override into a client.
type Resolver interface {
	Resolve(provider, model string) (providers.Client, error)
}

// Service runs the request pipeline: sanitize, resolve, build prompt,
// invoke, normalize, validate. One attempt per request; any failure is
// terminal and mapped to a response by the handler.
type Service struct {
	resolver Resolver
	rdb      *redis.Client
	cacheTTL time.Duration
	sf       singleflight.Group
}

func NewService(cfg *config.Config, rdb *redis.Client, resolver Resolver) *Service {
	return &Service{
		resolver: resolver,
		rdb:      rdb,
		cacheTTL: cfg.QueryCacheTTL,
	}
}

func (s *Service) Process(ctx context.Context, req Request) (map[string]any, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if err := sanitize.Check(q); err != nil {
		return nil, err
	}

	switch req.UseCase {
	case UseCaseFreePrompt, UseCaseQuiz, UseCaseFunFact:
	case UseCaseSummary:
		if strings.TrimSpace(req.Length) == "" {
			return nil, ErrMissingLength
		}
	default:
		// understood but declined, deliberately not an error
		return map[string]any{
			"type":    "not_supported",
			"message": "This request is not supported.",
		}, nil
	}

	if s.rdb == nil || s.cacheTTL <= 0 {
		return s.execute(ctx, req, q)
	}

	key := cacheKey(req, q)
	if env, ok := s.cacheGet(ctx, key); ok {
		return env, nil
	}
	// collapse concurrent identical queries into one provider call
	v, err, _ := s.sf.Do(key, func() (any, error) {
		env, err := s.execute(ctx, req, q)
		if err == nil {
			s.cacheSet(ctx, key, env)
		}
		return env, err
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

func (s *Service) execute(ctx context.Context, req Request, q string) (map[string]any, error) {
	cl, err := s.resolver.Resolve(req.Provider, req.Model)
	if err != nil {
		return nil, err
	}

	log := telemetry.L().With().
		Str("provider", string(cl.Name())).
		Str("use_case", req.UseCase).
		Logger()

	var prompt string
	switch req.UseCase {
	case UseCaseFreePrompt:
		prompt = providers.BuildFreePrompt(req.Messages, q)
	case UseCaseSummary:
		prompt = providers.BuildSummaryPrompt(q, req.Length)
	case UseCaseQuiz:
		prompt = providers.BuildQuizPrompt(req.Messages, q)
	case UseCaseFunFact:
		prompt = providers.BuildFunFactPrompt(req.Messages, q)
	}
	jsonOnly := req.UseCase != UseCaseFreePrompt

	raw, err := cl.Complete(ctx, prompt, jsonOnly)
	if err != nil {
		log.Error().Err(err).Msg("provider_complete_failed")
		return nil, err
	}

	if req.UseCase == UseCaseFreePrompt {
		text := strings.TrimSpace(providers.CleanModelOutput(raw))
		if ok, msg := Validate(UseCaseFreePrompt, map[string]any{"data": text}); !ok {
			return nil, &ValidationError{Msg: msg}
		}
		return map[string]any{"type": "free_prompt", "response": text}, nil
	}

	cleaned := providers.CleanModelOutput(raw)
	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		log.Error().Int("cleaned_len", len(cleaned)).Msg("model_output_not_json")
		return nil, ErrBadModelOutput
	}

	if ok, msg := Validate(req.UseCase, payload); !ok {
		return nil, &ValidationError{Msg: msg}
	}

	// validated payload passes through unmutated; type tag wins on collision
	env := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		env[k] = v
	}
	env["type"] = envelopeTag(req.UseCase)
	return env, nil
}

func envelopeTag(useCase string) string {
	switch useCase {
	case UseCaseSummary:
		return "summary"
	case UseCaseQuiz:
		return "quiz"
	case UseCaseFunFact:
		return "fun_fact"
	default:
		return "free_prompt"
	}
}

func cacheKey(req Request, q string) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode([]any{req.UseCase, req.Provider, req.Model, req.Length, q, req.Messages})
	return "query:" + hex.EncodeToString(h.Sum(nil))
}

func (s *Service) cacheGet(ctx context.Context, key string) (map[string]any, bool) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var env map[string]any
	if json.Unmarshal([]byte(val), &env) != nil {
		return nil, false
	}
	l := telemetry.L()
	l.Debug().Str("key", key).Msg("query_cache_hit")
	return env, true
}

func (s *Service) cacheSet(ctx context.Context, key string, env map[string]any) {
	b, err := json.Marshal(env)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, b, s.cacheTTL).Err(); err != nil {
		l := telemetry.L()
		l.Warn().Err(err).Msg("query_cache_set_err")
	}
}
