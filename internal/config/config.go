package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"lernquiz"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	OpenAI   OpenAI
	Upload   Upload
	Quiz     Quiz
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds session store configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// OpenAI configures the question generation and grading collaborators.
type OpenAI struct {
	APIKey    string `env:"OPENAI_API_KEY,notEmpty"`
	Model     string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	EvalModel string `env:"OPENAI_EVAL_MODEL" envDefault:"gpt-4o-mini"`
}

// Upload bounds the multipart upload surface.
type Upload struct {
	MaxFiles     int   `env:"UPLOAD_MAX_FILES" envDefault:"6"`
	MaxFileBytes int64 `env:"UPLOAD_MAX_FILE_BYTES" envDefault:"5242880"`
	MinChars     int   `env:"UPLOAD_MIN_CHARS" envDefault:"100"`
}

// Quiz groups session defaults.
type Quiz struct {
	SessionTTL time.Duration `env:"QUIZ_SESSION_TTL" envDefault:"720h"`
}

// Load parses environment variables into App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
