package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration for the questions service.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"qaws"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	Source   Source
	Fetch    Fetch
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

// Redis configures the optional known-id cache. Leaving REDIS_ADDR empty
// disables the cache; dedup correctness never depends on it.
type Redis struct {
	Addr       string        `env:"REDIS_ADDR" envDefault:""`
	DB         int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize   int           `env:"REDIS_POOL_SIZE" envDefault:"20"`
	KnownIDTTL time.Duration `env:"REDIS_KNOWN_ID_TTL" envDefault:"24h"`
}

// Source points at the upstream random-question API.
type Source struct {
	BaseURL     string        `env:"SOURCE_BASE_URL" envDefault:"https://jservice.io"`
	HTTPTimeout time.Duration `env:"SOURCE_HTTP_TIMEOUT" envDefault:"5s"`
}

// Fetch bounds the dedup fetch loop. MaxRounds caps batch fetches per
// request; RoundRetries is the extra-attempt budget when a single round
// fails transiently.
type Fetch struct {
	MaxRounds      int           `env:"FETCH_MAX_ROUNDS" envDefault:"5"`
	RoundRetries   int           `env:"FETCH_ROUND_RETRIES" envDefault:"2"`
	RetryBackoff   time.Duration `env:"FETCH_RETRY_BACKOFF" envDefault:"200ms"`
	RequestTimeout time.Duration `env:"FETCH_REQUEST_TIMEOUT" envDefault:"10s"`
	StoreTimeout   time.Duration `env:"FETCH_STORE_TIMEOUT" envDefault:"3s"`
	CountInterval  time.Duration `env:"STORED_COUNT_INTERVAL" envDefault:"1m"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
