package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	OpenAI    OpenAIConfig
	STT       STTConfig
	Nutrition NutritionConfig
	Static    StaticConfig
	Limits    LimitsConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type LogConfig struct {
	Level slog.Level
}

// OpenAIConfig is shared by the transcription and analysis clients.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

type STTConfig struct {
	Backend       string // "openai" or "local"
	Model         string
	OpenAIBaseURL string
	LocalBaseURL  string
}

type NutritionConfig struct {
	Provider         string // "openai" or "anthropic"
	Model            string
	MaxTokens        int
	Validate         bool
	AnthropicKey     string
	AnthropicBaseURL string
}

type StaticConfig struct {
	Dir string
}

type LimitsConfig struct {
	UpstreamTimeout time.Duration
	MaxBodyBytes    int64
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	port, err := getEnvInt("PORT", 3000)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	maxTokens, err := getEnvInt("NUTRITION_MAX_TOKENS", 500)
	if err != nil {
		return nil, fmt.Errorf("invalid NUTRITION_MAX_TOKENS: %w", err)
	}

	validate, err := getEnvBool("NUTRITION_VALIDATE", false)
	if err != nil {
		return nil, fmt.Errorf("invalid NUTRITION_VALIDATE: %w", err)
	}

	timeout, err := getEnvDuration("UPSTREAM_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
	}

	maxBody, err := getEnvInt("MAX_BODY_BYTES", 35<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_BODY_BYTES: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	openaiBase := getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1")

	provider := getEnv("NUTRITION_PROVIDER", "openai")
	defaultModel := "gpt-4o"
	if provider == "anthropic" {
		defaultModel = "claude-sonnet-4-20250514"
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: port,
		},
		Log: LogConfig{Level: level},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: openaiBase,
		},
		STT: STTConfig{
			Backend:       getEnv("STT_BACKEND", "openai"),
			Model:         getEnv("STT_MODEL", "whisper-1"),
			OpenAIBaseURL: getEnv("STT_OPENAI_BASE_URL", openaiBase),
			LocalBaseURL:  getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
		},
		Nutrition: NutritionConfig{
			Provider:         provider,
			Model:            getEnv("NUTRITION_MODEL", defaultModel),
			MaxTokens:        maxTokens,
			Validate:         validate,
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", ""),
		},
		Static: StaticConfig{
			Dir: getEnv("STATIC_DIR", "web"),
		},
		Limits: LimitsConfig{
			UpstreamTimeout: timeout,
			MaxBodyBytes:    int64(maxBody),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate rejects malformed settings. Missing credentials are not checked
// here: the processing routes report them per request.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "PORT must be between 1 and 65535")
	}
	switch c.STT.Backend {
	case "openai", "local":
	default:
		problems = append(problems, fmt.Sprintf("STT_BACKEND %q is not one of openai, local", c.STT.Backend))
	}
	switch c.Nutrition.Provider {
	case "openai", "anthropic":
	default:
		problems = append(problems, fmt.Sprintf("NUTRITION_PROVIDER %q is not one of openai, anthropic", c.Nutrition.Provider))
	}
	if c.Nutrition.MaxTokens <= 0 {
		problems = append(problems, "NUTRITION_MAX_TOKENS must be positive")
	}
	if c.Limits.UpstreamTimeout <= 0 {
		problems = append(problems, "UPSTREAM_TIMEOUT must be positive")
	}
	if c.Limits.MaxBodyBytes <= 0 {
		problems = append(problems, "MAX_BODY_BYTES must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
