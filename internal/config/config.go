// Package config loads gamevault settings from the environment and optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string `env:"GAMEVAULT_ENV" envDefault:"production"`
	DatabaseURL string `env:"GAMEVAULT_DATABASE_URL"`
	StateDir    string `env:"GAMEVAULT_STATE_DIR"`

	JWTSecret  string        `env:"GAMEVAULT_JWT_SECRET"`
	SessionTTL time.Duration `env:"GAMEVAULT_SESSION_TTL" envDefault:"168h"`

	SignInMaxFails int           `env:"GAMEVAULT_SIGNIN_MAX_FAILS" envDefault:"5"`
	SignInWindow   time.Duration `env:"GAMEVAULT_SIGNIN_WINDOW" envDefault:"15m"`
	SignInBlock    time.Duration `env:"GAMEVAULT_SIGNIN_BLOCK" envDefault:"15m"`

	RAWGBaseURL  string        `env:"GAMEVAULT_RAWG_BASE_URL" envDefault:"https://api.rawg.io/api"`
	RAWGAPIKey   string        `env:"GAMEVAULT_RAWG_API_KEY"`
	RAWGTimeout  time.Duration `env:"GAMEVAULT_RAWG_TIMEOUT" envDefault:"10s"`
	RAWGRetryFor time.Duration `env:"GAMEVAULT_RAWG_RETRY_FOR" envDefault:"3s"`

	RedisAddr      string        `env:"GAMEVAULT_REDIS_ADDR"`
	RedisPassword  string        `env:"GAMEVAULT_REDIS_PASSWORD"`
	RedisDB        int           `env:"GAMEVAULT_REDIS_DB" envDefault:"0"`
	CacheTTL       time.Duration `env:"GAMEVAULT_CACHE_TTL" envDefault:"1h"`
	SearchDebounce time.Duration `env:"GAMEVAULT_SEARCH_DEBOUNCE" envDefault:"500ms"`
}

// Load reads envFile when given (it must exist), otherwise an optional ./.env,
// then parses the environment. Variables already set win over file values.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.StateDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		cfg.StateDir = filepath.Join(dir, "gamevault")
	}
	return cfg, nil
}

// Local reports whether development defaults (console logging) apply.
func (c *Config) Local() bool { return c.Env == "local" || c.Env == "dev" }

// RequireStore checks the settings needed by commands that reach the record store.
func (c *Config) RequireStore() error {
	var errList []error
	if c.DatabaseURL == "" {
		errList = append(errList, errors.New("GAMEVAULT_DATABASE_URL is not set"))
	}
	if c.JWTSecret == "" {
		errList = append(errList, errors.New("GAMEVAULT_JWT_SECRET is not set"))
	} else if len(c.JWTSecret) < 16 {
		errList = append(errList, errors.New("GAMEVAULT_JWT_SECRET must be at least 16 bytes"))
	}
	if c.SessionTTL <= 0 {
		errList = append(errList, errors.New("GAMEVAULT_SESSION_TTL must be positive"))
	}
	return errors.Join(errList...)
}
