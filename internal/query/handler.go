package query

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"promptrouter/internal/config"
	"promptrouter/internal/middleware"
	"promptrouter/internal/providers"
	"promptrouter/internal/sanitize"
	"promptrouter/internal/telemetry"
)

type Handler struct {
	svc *Service
}

func NewHandler(cfg *config.Config, rdb *redis.Client) *Handler {
	return &Handler{svc: NewService(cfg, rdb, providers.NewRegistry(cfg))}
}

// NewHandlerWithService wires a prebuilt service, used by tests.
func NewHandlerWithService(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ProcessQuery(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	rid, _ := c.Locals(middleware.ReqIDKey).(string)
	log := telemetry.L().With().
		Str("req_id", rid).
		Str("use_case", req.UseCase).
		Str("provider", req.Provider).
		Logger()

	env, err := h.svc.Process(c.Context(), req)
	if err != nil {
		var (
			unsafeErr     *sanitize.UnsafeInputError
			validationErr *ValidationError
			configErr     *providers.ConfigError
		)
		switch {
		case errors.Is(err, ErrEmptyQuery), errors.Is(err, ErrMissingLength):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		case errors.As(err, &unsafeErr):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": unsafeErr.Msg})
		case errors.Is(err, ErrBadModelOutput):
			log.Warn().Msg("model_output_rejected")
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"type": "error", "message": "invalid model response",
			})
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"type": "error", "message": validationErr.Msg,
			})
		case errors.As(err, &configErr):
			// deployment problem, detail stays in the logs
			log.Error().Err(err).Msg("provider_config_error")
		default:
			log.Error().Err(err).Msg("process_query_failed")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"type": "error", "message": "An unexpected error occurred.",
		})
	}

	return c.JSON(env)
}
