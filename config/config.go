package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"autothread-bot/models"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// SetDefaults registers the default value of every bot.* setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("bot.log_level", "info")
	v.SetDefault("bot.admin_channel_id", "")
	v.SetDefault("bot.config_dir", "./config/saves")
	v.SetDefault("bot.max_users", models.DefaultMaxUsers)
	v.SetDefault("bot.correlation_timeout", 6*time.Second)
	v.SetDefault("bot.max_thread_age", time.Minute)
	v.SetDefault("bot.autosave_schedule", "@every 5m")
	v.SetDefault("bot.history_db", "./data/onboarding.db")
	v.SetDefault("bot.history_retention_days", 31)
	v.SetDefault("bot.history_cleanup_schedule", "@daily")
	v.SetDefault("bot.channel_cache_size", 256)
	v.SetDefault("bot.health_addr", "")
}

// LoadConfig loads configuration from several sources into the global viper instance:
// 1. .env file (environment variables)
// 2. config.yaml (base configuration)
// 3. config/bot.json (merged over the base configuration)
// Environment variables override file values with the same key.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg(".env file not found, skipping")
	}

	SetDefaults(viper.GetViper())

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Info().Msg("config.yaml not found, using environment variables and defaults")
		} else {
			panic(fmt.Errorf("fatal error parsing config.yaml: %w", err))
		}
	}

	viper.SetConfigName("bot")
	viper.SetConfigType("json")
	viper.AddConfigPath("./config")

	if err := viper.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Debug().Msg("config/bot.json not found, skipping merge")
		} else {
			panic(fmt.Errorf("fatal error merging config/bot.json: %w", err))
		}
	}
}

// Settings decodes the bot.* section of v, applying sane floors to invalid values.
func Settings(v *viper.Viper) (models.Settings, error) {
	var s models.Settings
	if err := v.UnmarshalKey("bot", &s); err != nil {
		return s, fmt.Errorf("failed to decode bot settings: %w", err)
	}
	if s.MaxUsers <= 0 {
		s.MaxUsers = models.DefaultMaxUsers
	}
	if s.CorrelationTimeout <= 0 {
		s.CorrelationTimeout = 6 * time.Second
	}
	if s.ChannelCacheSize <= 0 {
		s.ChannelCacheSize = 256
	}
	return s, nil
}
