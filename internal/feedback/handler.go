package feedback

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"promptrouter/internal/middleware"
	"promptrouter/internal/model"
	"promptrouter/internal/providers"
	"promptrouter/internal/telemetry"
)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

type request struct {
	Thumbs       string              `json:"thumbs"`
	MessageIndex *int                `json:"message_index"`
	Model        string              `json:"model"`
	Provider     string              `json:"provider"`
	Feedback     string              `json:"feedback"`
	Messages     []model.ChatMessage `json:"messages"`
}

func (h *Handler) StoreFeedback(c *fiber.Ctx) error {
	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Thumbs != "up" && req.Thumbs != "down" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid thumbs value"})
	}
	if req.MessageIndex == nil || *req.MessageIndex < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid message_index"})
	}
	if !providers.Supported(req.Provider) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown provider"})
	}

	snapshot := req.Messages
	if snapshot == nil {
		snapshot = []model.ChatMessage{}
	}
	doc := Document{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Thumbs:       req.Thumbs,
		Model:        req.Model,
		Provider:     req.Provider,
		MessageIndex: *req.MessageIndex,
		FeedbackText: req.Feedback,
		ChatSnapshot: snapshot,
		ID:           uuid.New().String(),
	}

	rid, _ := c.Locals(middleware.ReqIDKey).(string)
	log := telemetry.L().With().Str("req_id", rid).Str("feedback_id", doc.ID).Logger()

	if err := h.store.Insert(c.Context(), doc); err != nil {
		log.Error().Err(err).Msg("feedback_insert_failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store feedback"})
	}

	log.Info().Str("thumbs", doc.Thumbs).Str("provider", doc.Provider).Msg("feedback_stored")
	return c.JSON(doc)
}
