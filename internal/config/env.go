package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"8000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
}

type DatabaseEnv struct {
	Path string `envconfig:"DB_PATH" default:".sortbox/sortbox.db"`
}

type MotivationEnv struct {
	// Optional YAML file of {kind, text} phrase pairs seeded on top of
	// the built-in defaults.
	PhrasesFile string `envconfig:"MOTIVATION_PHRASES_FILE"`
}

type BotEnv struct {
	Token         string `envconfig:"BOT_TOKEN"`
	WebhookSecret string `envconfig:"BOT_WEBHOOK_SECRET" default:"secret"`
	WebhookURL    string `envconfig:"BOT_WEBHOOK_URL"`
	FrontendURL   string `envconfig:"FRONTEND_URL"`
}

type Env struct {
	BaseEnv
	DatabaseEnv
	MotivationEnv
	BotEnv
}

const namespace = "SORTBOX"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}
