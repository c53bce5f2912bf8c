package config

import (
	"fmt"
	"slices"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	BotToken    string `env:"BOT_TOKEN,required"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	GatewayBaseURL   string `env:"GATEWAY_BASE_URL" envDefault:"https://emb-service.onrender.com/api/v1"`
	TranslateBaseURL string `env:"TRANSLATE_BASE_URL" envDefault:"https://api.mymemory.translated.net"`
	TranslateAPIKey  string `env:"TRANSLATE_API_KEY"`

	AdminIDs           []int64 `env:"ADMIN_IDS" envSeparator:","`
	DropPendingUpdates bool    `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Optional supergroup that receives operational alerts.
	LogChatID      int64 `env:"LOG_CHAT_ID"`
	LogTopicErrors int   `env:"LOG_TOPIC_ERRORS"`
	LogTopicUsers  int   `env:"LOG_TOPIC_USERS"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	return slices.Contains(c.AdminIDs, telegramID)
}
