package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"foodbot/internal/config"
)

// Supported providers.
const (
	ProviderGateway  = "gateway"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
	ProviderArk      = "ark"
	ProviderDeepseek = "deepseek"
)

// NewChatModel builds the configured text-generation backend. The gateway
// provider is the default; the rest are openai-compatible backends for
// running the bot against other deployments.
func NewChatModel(ctx context.Context, cfg config.LLMConfig, env *config.Env) (model.BaseChatModel, error) {
	baseURL := cfg.BaseURL
	if env.LLMBaseURL != "" {
		baseURL = env.LLMBaseURL
	}

	switch cfg.Provider {
	case "", ProviderGateway:
		return NewGatewayModel(baseURL, env.LLMAPIKey, cfg.Model), nil

	case ProviderOpenAI:
		maxTokens := cfg.MaxTokens
		temperature := float32(cfg.Temperature)
		modelConfig := &openai.ChatModelConfig{
			APIKey:  env.LLMAPIKey,
			BaseURL: baseURL,
			Model:   cfg.Model,
		}
		if maxTokens > 0 {
			modelConfig.MaxTokens = &maxTokens
		}
		if temperature > 0 {
			modelConfig.Temperature = &temperature
		}
		return openai.NewChatModel(ctx, modelConfig)

	case ProviderOllama:
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: baseURL,
			Model:   cfg.Model,
			Timeout: gatewayTimeout,
		})

	case ProviderArk:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:  env.LLMAPIKey,
			Model:   cfg.Model,
			Timeout: durationPtr(gatewayTimeout),
		})

	case ProviderDeepseek:
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:  env.LLMAPIKey,
			Model:   cfg.Model,
			BaseURL: baseURL,
			Timeout: gatewayTimeout,
		})

	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}
