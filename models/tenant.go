package models

// DefaultMaxUsers is the roster capacity used when no maximum is configured.
const DefaultMaxUsers = 15

// TenantConfig is the persisted per-guild configuration.
type TenantConfig struct {
	Users             []string               `yaml:"users"`
	UserFilters       map[string]*UserFilter `yaml:"user_filters,omitempty"`
	FirstMessage      string                 `yaml:"first_message,omitempty"`
	ExtraAddPings     string                 `yaml:"extra_add_pings,omitempty"`
	AutoPrefix        bool                   `yaml:"auto_prefix"`
	AutoPin           bool                   `yaml:"auto_pin"`
	AutoUnlock        bool                   `yaml:"auto_unlock"`
	ChannelRoleLimits map[string]string      `yaml:"channel_role_limits,omitempty"`
}

// UserFilter restricts which threads a roster user is added to.
type UserFilter struct {
	IsWhitelist  bool     `yaml:"is_whitelist"`
	ChannelSet   []string `yaml:"channels,omitempty"`
	ForumExclude bool     `yaml:"forum_exclude"`
}

// NewTenantConfig returns an empty, default-initialized config.
func NewTenantConfig() *TenantConfig {
	return &TenantConfig{
		Users:             []string{},
		UserFilters:       make(map[string]*UserFilter),
		ChannelRoleLimits: make(map[string]string),
	}
}

// HasUser reports whether userID is on the roster.
func (c *TenantConfig) HasUser(userID string) bool {
	for _, id := range c.Users {
		if id == userID {
			return true
		}
	}
	return false
}

// HasChannel reports whether channelID is in the filter's channel set.
func (f *UserFilter) HasChannel(channelID string) bool {
	for _, id := range f.ChannelSet {
		if id == channelID {
			return true
		}
	}
	return false
}
