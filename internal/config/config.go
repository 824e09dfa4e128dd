package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration for the ParentPath digest pipeline.
type Config struct {
	ItemsPath        string
	RecipientsPath   string
	TuningPath       string
	WindowDays       int
	Workers          int
	GeminiAPIKey     string
	GeminiModel      string
	LLMTemperature   float64
	LLMMaxTokens     int
	TranslateTimeout time.Duration
	LogLevel         string
}

// FromEnv creates a configuration instance sourced from environment variables.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ItemsPath:        getEnv("PARENTPATH_ITEMS", "data/sample_items.json"),
		RecipientsPath:   getEnv("PARENTPATH_RECIPIENTS", "data/sample_recipients.json"),
		TuningPath:       getEnv("PARENTPATH_TUNING", ""),
		WindowDays:       7,
		Workers:          4,
		GeminiAPIKey:     getEnv("PARENTPATH_GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("PARENTPATH_GEMINI_MODEL", "gemini-2.5-flash"),
		LLMTemperature:   0.2,
		LLMMaxTokens:     2048,
		TranslateTimeout: 30 * time.Second,
		LogLevel:         getEnv("PARENTPATH_LOG_LEVEL", "info"),
	}

	if window := os.Getenv("PARENTPATH_WINDOW_DAYS"); window != "" {
		if _, err := fmt.Sscanf(window, "%d", &cfg.WindowDays); err != nil {
			return Config{}, fmt.Errorf("parse PARENTPATH_WINDOW_DAYS: %w", err)
		}
	}

	if workers := os.Getenv("PARENTPATH_WORKERS"); workers != "" {
		if _, err := fmt.Sscanf(workers, "%d", &cfg.Workers); err != nil {
			return Config{}, fmt.Errorf("parse PARENTPATH_WORKERS: %w", err)
		}
	}

	if temp := os.Getenv("PARENTPATH_LLM_TEMPERATURE"); temp != "" {
		if _, err := fmt.Sscanf(temp, "%f", &cfg.LLMTemperature); err != nil {
			return Config{}, fmt.Errorf("parse PARENTPATH_LLM_TEMPERATURE: %w", err)
		}
	}

	if tokens := os.Getenv("PARENTPATH_LLM_MAX_TOKENS"); tokens != "" {
		if _, err := fmt.Sscanf(tokens, "%d", &cfg.LLMMaxTokens); err != nil {
			return Config{}, fmt.Errorf("parse PARENTPATH_LLM_MAX_TOKENS: %w", err)
		}
	}

	if timeout := os.Getenv("PARENTPATH_TRANSLATE_TIMEOUT_S"); timeout != "" {
		var seconds int
		if _, err := fmt.Sscanf(timeout, "%d", &seconds); err != nil {
			return Config{}, fmt.Errorf("parse PARENTPATH_TRANSLATE_TIMEOUT_S: %w", err)
		}
		cfg.TranslateTimeout = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
