package utils

import (
	"autothread-bot/models"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// Auth provides methods for authorization checks.
type Auth struct {
	config models.CommandsConfig
}

// NewAuth creates a new Auth instance with the loaded configuration.
func NewAuth() (*Auth, error) {
	var commandsConfig models.CommandsConfig
	if err := viper.UnmarshalKey("commands", &commandsConfig); err != nil {
		return nil, err
	}
	return &Auth{config: commandsConfig}, nil
}

// NewAuthFromConfig builds an Auth from an already decoded config.
func NewAuthFromConfig(cfg models.CommandsConfig) *Auth {
	return &Auth{config: cfg}
}

// IsDeveloper checks if a user is a developer.
func (a *Auth) IsDeveloper(userID string) bool {
	for _, devID := range a.config.Auth.Developers {
		if userID == devID {
			return true
		}
	}
	return false
}

// IsAdmin checks if a member holds the Administrator permission or a configured admin role.
func (a *Auth) IsAdmin(member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	for _, adminRoleID := range a.config.Auth.AdminsRoles {
		for _, userRoleID := range member.Roles {
			if userRoleID == adminRoleID {
				return true
			}
		}
	}
	return false
}

// CheckPermission checks if the interaction's member has the required permission level.
func (a *Auth) CheckPermission(member *discordgo.Member, requiredLevel string) bool {
	switch requiredLevel {
	case "developer":
		return member != nil && member.User != nil && a.IsDeveloper(member.User.ID)
	case "admin":
		return (member != nil && member.User != nil && a.IsDeveloper(member.User.ID)) || a.IsAdmin(member)
	case "guest":
		return true
	default:
		return false
	}
}
