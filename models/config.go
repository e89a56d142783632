package models

import "time"

// Settings holds the process-wide bot settings loaded by the config package.
type Settings struct {
	LogLevel               string        `mapstructure:"log_level"`
	AdminChannelID         string        `mapstructure:"admin_channel_id"`
	ConfigDir              string        `mapstructure:"config_dir"`
	MaxUsers               int           `mapstructure:"max_users"`
	CorrelationTimeout     time.Duration `mapstructure:"correlation_timeout"`
	MaxThreadAge           time.Duration `mapstructure:"max_thread_age"`
	AutosaveSchedule       string        `mapstructure:"autosave_schedule"`
	HistoryDB              string        `mapstructure:"history_db"`
	HistoryRetentionDays   int           `mapstructure:"history_retention_days"`
	HistoryCleanupSchedule string        `mapstructure:"history_cleanup_schedule"`
	ChannelCacheSize       int           `mapstructure:"channel_cache_size"`
	HealthAddr             string        `mapstructure:"health_addr"`
}

// CommandsConfig represents the "commands" section of config.yaml.
type CommandsConfig struct {
	Auth AuthConfig `mapstructure:"auth"`
}

// AuthConfig lists the principals allowed to edit guild settings besides
// members with the Administrator permission.
type AuthConfig struct {
	Developers  []string `mapstructure:"developers"`
	AdminsRoles []string `mapstructure:"admins_roles"`
}
