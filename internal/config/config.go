// Package config loads and validates application configuration.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Task     TaskConfig     `mapstructure:"task"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=0,lte=31"`
}

// LLMConfig contains all language-model integration settings. Provider
// selects the backing SDK; base_url allows any OpenAI-compatible endpoint.
type LLMConfig struct {
	Provider          string `mapstructure:"provider"            validate:"required,oneof=openai gemini"`
	APIKey            string `mapstructure:"api_key"             validate:"required"`
	BaseURL           string `mapstructure:"base_url"`
	Model             string `mapstructure:"model"               validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	CacheSize         int    `mapstructure:"cache_size"          validate:"gte=0"`
	BatchSize         int    `mapstructure:"batch_size"          validate:"gte=1"`
}

// TaskConfig contains background task runner settings.
type TaskConfig struct {
	WorkerCount  int `mapstructure:"worker_count"   validate:"gte=0"`
	QueueSize    int `mapstructure:"queue_size"     validate:"gte=0"`
	StuckTaskAge int `mapstructure:"stuck_task_age" validate:"gte=0"` // minutes
}
