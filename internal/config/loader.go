package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"foodbot/internal/logger"
)

// Config represents the structure of config.yaml.
type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	LLM     LLMConfig     `yaml:"llm"`
	Places  PlacesConfig  `yaml:"places"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     logger.Config `yaml:"log"`
}

// BotConfig holds recommendation defaults and filter thresholds.
type BotConfig struct {
	DefaultLocation  string  `yaml:"default_location"`
	DefaultKeyword   string  `yaml:"default_keyword"`
	DefaultTimeLimit int     `yaml:"default_time_limit"`
	MinRating        float64 `yaml:"min_rating"`
	MinReviews       int     `yaml:"min_reviews"`
	MaxResults       int     `yaml:"max_results"`
	ShortlistSize    int     `yaml:"shortlist_size"`
}

// LLMConfig selects the text-generation backend.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // gateway, openai, ollama, ark, deepseek
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// PlacesConfig holds places-API parameters.
type PlacesConfig struct {
	BaseURL      string `yaml:"base_url"`
	Language     string `yaml:"language"`
	RadiusMeters int    `yaml:"radius_meters"`
}

// ServerConfig holds the chat-surface listen address.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// StorageConfig holds persistence locations.
type StorageConfig struct {
	SavedListPath string `yaml:"saved_list_path"`
	ContextTTLSec int    `yaml:"context_ttl_seconds"`
}

// Env carries secrets and deploy-specific overrides taken from the
// environment instead of config.yaml.
type Env struct {
	GoogleAPIKey string `envconfig:"GOOGLE_API_KEY"`
	LLMBaseURL   string `envconfig:"LLM_BASE_URL"`
	LLMAPIKey    string `envconfig:"LLM_API_KEY"`
	RedisURL     string `envconfig:"REDIS_URL"`
}

// Load reads config.yaml and applies defaults.
func Load(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	config.applyDefaults()

	return &config, nil
}

// LoadEnv processes environment configuration.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}
	return &env, nil
}

func (c *Config) applyDefaults() {
	if c.Bot.DefaultLocation == "" {
		c.Bot.DefaultLocation = "國立成功大學"
	}
	if c.Bot.DefaultKeyword == "" {
		c.Bot.DefaultKeyword = "美食"
	}
	if c.Bot.DefaultTimeLimit <= 0 {
		c.Bot.DefaultTimeLimit = 20
	}
	if c.Bot.MinRating == 0 {
		c.Bot.MinRating = 3.5
	}
	if c.Bot.MaxResults <= 0 {
		c.Bot.MaxResults = 3
	}
	if c.Bot.ShortlistSize <= 0 {
		c.Bot.ShortlistSize = 15
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "gateway"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-oss:120b"
	}
	if c.Places.Language == "" {
		c.Places.Language = "zh-TW"
	}
	if c.Places.RadiusMeters <= 0 {
		c.Places.RadiusMeters = 5000
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Storage.SavedListPath == "" {
		c.Storage.SavedListPath = "saved_lists.json"
	}
	if c.Storage.ContextTTLSec <= 0 {
		c.Storage.ContextTTLSec = 3600
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
}
