package command

import "github.com/bwmarrin/discordgo"

var adminOnly = int64(discordgo.PermissionAdministrator)

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        "user",
		Description: description,
		Type:        discordgo.ApplicationCommandOptionUser,
		Required:    true,
	}
}

func channelOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        "channel",
		Description: "The parent channel",
		Type:        discordgo.ApplicationCommandOptionChannel,
		Required:    required,
		ChannelTypes: []discordgo.ChannelType{
			discordgo.ChannelTypeGuildText,
			discordgo.ChannelTypeGuildForum,
			discordgo.ChannelTypeGuildNews,
		},
	}
}

func enabledOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        "enabled",
		Description: "Turn the setting on or off",
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Required:    true,
	}
}

func textOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        "text",
		Description: description,
		Type:        discordgo.ApplicationCommandOptionString,
		Required:    false,
	}
}

func subCommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        name,
		Description: description,
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Options:     options,
	}
}

// HelpCommand defines the structure for the /help command.
type HelpCommand struct{}

// Definition returns the application command definition.
func (c *HelpCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "help",
		Description: "Explains what the auto-thread bot does",
	}
}

// ListCommand defines the structure for the /list command.
type ListCommand struct{}

// Definition returns the application command definition.
func (c *ListCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     "list",
		Description:              "Shows the users added to new threads",
		DefaultMemberPermissions: &adminOnly,
	}
}

// AddCommand defines the structure for the /add command.
type AddCommand struct{}

// Definition returns the application command definition.
func (c *AddCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     "add",
		Description:              "Adds a user to the auto-thread-join list",
		DefaultMemberPermissions: &adminOnly,
		Options:                  []*discordgo.ApplicationCommandOption{userOption("The user to add")},
	}
}

// RemoveCommand defines the structure for the /remove command.
type RemoveCommand struct{}

// Definition returns the application command definition.
func (c *RemoveCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     "remove",
		Description:              "Removes a user from the auto-thread-join list",
		DefaultMemberPermissions: &adminOnly,
		Options:                  []*discordgo.ApplicationCommandOption{userOption("The user to remove")},
	}
}

// FilterCommand defines the structure for the /filter command.
type FilterCommand struct{}

// Definition returns the application command definition.
func (c *FilterCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     "filter",
		Description:              "Limits which threads a listed user is added to",
		DefaultMemberPermissions: &adminOnly,
		Options: []*discordgo.ApplicationCommandOption{
			subCommand("mode", "Treat the user's channels as a whitelist or a blacklist",
				userOption("The listed user"),
				&discordgo.ApplicationCommandOption{
					Name:        "mode",
					Description: "Filter mode",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Whitelist", Value: "whitelist"},
						{Name: "Blacklist", Value: "blacklist"},
					},
				},
			),
			subCommand("add_channel", "Adds a channel to the user's filter", userOption("The listed user"), channelOption(true)),
			subCommand("remove_channel", "Removes a channel from the user's filter", userOption("The listed user"), channelOption(true)),
			subCommand("forum_exclude", "Never add the user to forum posts", userOption("The listed user"), enabledOption()),
			subCommand("clear", "Removes the user's filter", userOption("The listed user")),
		},
	}
}

// SettingsCommand defines the structure for the /settings command.
type SettingsCommand struct{}

// Definition returns the application command definition.
func (c *SettingsCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     "settings",
		Description:              "Configures how new threads are handled",
		DefaultMemberPermissions: &adminOnly,
		Options: []*discordgo.ApplicationCommandOption{
			subCommand("show", "Shows the current settings"),
			subCommand("first_message", "Message posted in every new thread (empty to disable)", textOption("The message")),
			subCommand("extra_pings", "Extra text appended to the add pings, e.g. a role mention", textOption("The text")),
			subCommand("auto_prefix", "Prefix new thread names with the author's name", enabledOption()),
			subCommand("auto_pin", "Pin the first message of new threads", enabledOption()),
			subCommand("auto_unlock", "Unlock threads that get archived and locked", enabledOption()),
			subCommand("role_limit", "Only add users holding a role to threads under a channel", channelOption(true),
				&discordgo.ApplicationCommandOption{
					Name:        "role",
					Description: "Required role (omit to remove the limit)",
					Type:        discordgo.ApplicationCommandOptionRole,
					Required:    false,
				},
			),
		},
	}
}

// HistoryCommand defines the structure for the /history command.
type HistoryCommand struct{}

// Definition returns the application command definition.
func (c *HistoryCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     "history",
		Description:              "Shows the most recently onboarded threads",
		DefaultMemberPermissions: &adminOnly,
	}
}
