package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// HAIKU_ prefix with underscores separating nested keys
// (e.g. HAIKU_DATABASE_URL, HAIKU_LLM_GEMINI_API_KEY) and take precedence
// over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults double as the key registry for AutomaticEnv: viper only maps
	// environment variables onto keys it already knows about.
	v.SetDefault("server.port", 3002)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.url", "")
	v.SetDefault("registry.backend", "memory")
	v.SetDefault("registry.redis_addr", "")
	v.SetDefault("registry.retention_minutes", 30)
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.caption_model", "gemini-2.0-flash")
	v.SetDefault("llm.illustration_model", "imagen-3.0-generate-002")
	v.SetDefault("content.images_dir", "public/images")
	v.SetDefault("content.max_upload_bytes", 10<<20)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HAIKU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
