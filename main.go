package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"foodbot/internal/bot"
	"foodbot/internal/config"
	"foodbot/internal/intent"
	"foodbot/internal/llm"
	"foodbot/internal/logger"
	"foodbot/internal/places"
	"foodbot/internal/recommend"
	"foodbot/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if env.GoogleAPIKey == "" {
		logger.Warn().Msg("⚠️ GOOGLE_API_KEY not set, place lookups will fail")
	}

	ctx := context.Background()

	chatModel, err := llm.NewChatModel(ctx, cfg.LLM, env)
	if err != nil {
		return fmt.Errorf("create chat model: %w", err)
	}

	analyzer, err := intent.NewAnalyzer(ctx, chatModel, intent.Defaults{
		Location:  cfg.Bot.DefaultLocation,
		Keyword:   cfg.Bot.DefaultKeyword,
		TimeLimit: cfg.Bot.DefaultTimeLimit,
	})
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}

	placesClient := places.New(places.Config{
		APIKey:       env.GoogleAPIKey,
		BaseURL:      cfg.Places.BaseURL,
		Language:     cfg.Places.Language,
		RadiusMeters: cfg.Places.RadiusMeters,
	})

	pipeline := recommend.New(placesClient, llm.NewNarrator(chatModel), recommend.Options{
		MinRating:     cfg.Bot.MinRating,
		MinReviews:    cfg.Bot.MinReviews,
		MaxResults:    cfg.Bot.MaxResults,
		ShortlistSize: cfg.Bot.ShortlistSize,
	})

	var contexts bot.ContextStore
	if env.RedisURL != "" {
		ttl := time.Duration(cfg.Storage.ContextTTLSec) * time.Second
		redisStore, err := storage.NewRedisContextStore(ctx, env.RedisURL, ttl)
		if err != nil {
			return fmt.Errorf("create redis context store: %w", err)
		}
		contexts = redisStore
		logger.Info().Msg("using redis context store")
	} else {
		contexts = storage.NewMemoryContextStore()
	}

	saved, err := storage.NewSavedListStore(cfg.Storage.SavedListPath)
	if err != nil {
		return fmt.Errorf("create saved list store: %w", err)
	}

	b := bot.New(analyzer, pipeline, contexts)
	server := bot.NewServer(b, saved)

	logger.Info().
		Str("provider", cfg.LLM.Provider).
		Str("model", cfg.LLM.Model).
		Msg("foodbot starting")

	return server.Run(cfg.Server.ListenAddr)
}
