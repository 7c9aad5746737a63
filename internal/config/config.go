package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// OpenRouter completion provider
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	PublicAppURL      string
	AppTitle          string
	DefaultModel      string

	// Brave web search
	BraveSearchAPIKey string
	BraveSearchURL    string
	SearchResultCount int

	MaxStreamDuration  time.Duration
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OpenRouterAPIKey:  strings.TrimSpace(getEnv("OPENROUTER_API_KEY", "")),
		OpenRouterBaseURL: strings.TrimRight(getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"), "/"),
		PublicAppURL:      getEnv("PUBLIC_APP_URL", "https://localhost:3000"),
		AppTitle:          getEnv("APP_TITLE", "DeepSeek Chat App"),
		DefaultModel:      getEnv("DEFAULT_MODEL", "deepseek/deepseek-r1-0528:free"),

		BraveSearchAPIKey: strings.TrimSpace(getEnv("BRAVE_SEARCH_API_KEY", "")),
		BraveSearchURL:    getEnv("BRAVE_SEARCH_URL", "https://api.search.brave.com/res/v1/web/search"),
		SearchResultCount: getEnvAsInt("SEARCH_RESULT_COUNT", 5),

		MaxStreamDuration:  getEnvAsDuration("MAX_STREAM_DURATION", 5*time.Minute),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
	}
}

// CompletionConfigured reports whether the OpenRouter key is present.
func (c *Config) CompletionConfigured() bool {
	return c != nil && c.OpenRouterAPIKey != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as a positive integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
