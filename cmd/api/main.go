package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"promptrouter/internal/cache"
	"promptrouter/internal/config"
	"promptrouter/internal/feedback"
	"promptrouter/internal/middleware"
	"promptrouter/internal/query"
	"promptrouter/internal/telemetry"
)

func main() {
	cfg := config.Load()

	tlog := telemetry.Init(telemetry.FromEnv(config.GetEnv))
	tlog.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("booting promptrouter")

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = cache.MustConnect(cfg.RedisAddr, cfg.RedisDB)
		tlog.Info().Str("addr", cfg.RedisAddr).Msg("query cache enabled")
	}

	store, err := feedback.NewOpenSearchStore(cfg.OpenSearchHost, cfg.OpenSearchPort, cfg.FeedbackIndex)
	if err != nil {
		log.Fatalf("opensearch client: %v", err)
	}
	if err := store.EnsureIndex(context.Background()); err != nil {
		log.Fatalf("feedback index: %v", err)
	}

	app := fiber.New()

	app.Use(middleware.RequestID())
	app.Use(middleware.Recover())
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.RequestLog())
	app.Use(middleware.SecureHeaders())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	qh := query.NewHandler(cfg, rdb)
	fh := feedback.NewHandler(store)

	api := app.Group("/api")
	api.Post("/process_query", qh.ProcessQuery)
	api.Post("/store_feedback", fh.StoreFeedback)

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
