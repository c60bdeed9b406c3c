package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Registry RegistryConfig `mapstructure:"registry" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Content  ContentConfig  `mapstructure:"content"  validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// RegistryConfig controls the in-flight task registry.
// The memory backend is the default and keeps tasks local to the process;
// the redis backend shares tasks across instances.
type RegistryConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=memory redis"`

	// RedisAddr is the host:port of the Redis server. Only consulted when
	// Backend is "redis".
	RedisAddr string `mapstructure:"redis_addr" validate:"required_if=Backend redis"`

	// RetentionMinutes bounds how long an unconsumed task stays in the
	// registry before it is evicted, whether or not a client ever polls it.
	RetentionMinutes int `mapstructure:"retention_minutes" validate:"required,gte=1"`
}

// LLMConfig contains all generative model integration settings.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"     validate:"required"`
	CaptionModel      string `mapstructure:"caption_model"      validate:"required"`
	IllustrationModel string `mapstructure:"illustration_model" validate:"required"`
}

// ContentConfig contains settings for the on-disk image content store.
type ContentConfig struct {
	ImagesDir      string `mapstructure:"images_dir"       validate:"required"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" validate:"required,gt=0"`
}
