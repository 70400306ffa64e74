package config

import "time"

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	PostgresDSN       string        `env:"POSTGRES_DSN,required"`
	MaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"25"`
	MinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"5"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// HTTPConfig holds listener settings for the REST API and the health server.
type HTTPConfig struct {
	Port            int           `env:"HTTP_PORT" envDefault:"8080"`
	HealthPort      int           `env:"HEALTH_PORT" envDefault:"9090"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LLMConfig holds provider routing settings.
type LLMConfig struct {
	Enabled        bool          `env:"LLM_ENABLED" envDefault:"true"`
	ProvidersFile  string        `env:"LLM_PROVIDERS_FILE"`
	RequestTimeout time.Duration `env:"LLM_REQUEST_TIMEOUT" envDefault:"60s"`
	RateLimitRPS   float64       `env:"LLM_RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int           `env:"LLM_RATE_LIMIT_BURST" envDefault:"5"`
	MaxAttempts    int           `env:"LLM_MAX_ATTEMPTS" envDefault:"4"`
	SuspendPeriod  time.Duration `env:"LLM_SUSPEND_PERIOD" envDefault:"60s"`
}

// RedisConfig enables the shared suspension store when URL is set.
type RedisConfig struct {
	URL       string `env:"REDIS_URL"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"tolgee:llm:"`
}

// StorageConfig locates uploaded screenshots.
type StorageConfig struct {
	ScreenshotsDir string `env:"SCREENSHOTS_DIR" envDefault:"./data/screenshots"`
	HighlightKeys  bool   `env:"SCREENSHOTS_HIGHLIGHT_KEYS" envDefault:"true"`
}
