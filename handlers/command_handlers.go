package handlers

import (
	"fmt"

	"autothread-bot/bot"
	"autothread-bot/utils"

	"github.com/bwmarrin/discordgo"
)

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func toOptionMap(options []*discordgo.ApplicationCommandInteractionDataOption) optionMap {
	m := make(optionMap, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func (m optionMap) user() string {
	if opt, ok := m["user"]; ok {
		if u := opt.UserValue(nil); u != nil {
			return u.ID
		}
	}
	return ""
}

func (m optionMap) channel() string {
	if opt, ok := m["channel"]; ok {
		if c := opt.ChannelValue(nil); c != nil {
			return c.ID
		}
	}
	return ""
}

func (m optionMap) role() string {
	if opt, ok := m["role"]; ok {
		if r := opt.RoleValue(nil, ""); r != nil {
			return r.ID
		}
	}
	return ""
}

func (m optionMap) str(name string) string {
	if opt, ok := m[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (m optionMap) boolean(name string) bool {
	if opt, ok := m[name]; ok {
		return opt.BoolValue()
	}
	return false
}

// subCommand splits the first option off as the subcommand name.
func subCommand(i *discordgo.InteractionCreate) (string, optionMap) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 || options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		return "", optionMap{}
	}
	return options[0].Name, toOptionMap(options[0].Options)
}

func audit(i *discordgo.InteractionCreate, command string, r reply) {
	if !r.Positive {
		return
	}
	utils.Info("Commands", command, fmt.Sprintf("guild %s by %s: %s", i.GuildID, i.Member.User.ID, r.Description))
}

// HandleList handles the logic for the /list command.
func HandleList(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	respond(s, i, listUsers(b.Store, i.GuildID))
}

// HandleAdd handles the logic for the /add command.
func HandleAdd(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := toOptionMap(i.ApplicationCommandData().Options)
	r := addUser(b.Store, i.GuildID, opts.user())
	audit(i, "Add", r)
	respond(s, i, r)
}

// HandleRemove handles the logic for the /remove command.
func HandleRemove(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := toOptionMap(i.ApplicationCommandData().Options)
	r := removeUser(b.Store, i.GuildID, opts.user())
	audit(i, "Remove", r)
	respond(s, i, r)
}

// HandleFilter handles the logic for the /filter command.
func HandleFilter(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, opts := subCommand(i)
	r := filterCommand(b.Store, i.GuildID, sub, opts.user(), opts.channel(), opts.str("mode"), opts.boolean("enabled"))
	audit(i, "Filter", r)
	respond(s, i, r)
}

// HandleSettings handles the logic for the /settings command.
func HandleSettings(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, opts := subCommand(i)
	r := settingsCommand(b.Store, i.GuildID, sub, opts.str("text"), opts.channel(), opts.role(), opts.boolean("enabled"))
	if sub != "show" {
		audit(i, "Settings", r)
	}
	respond(s, i, r)
}

// HandleHistory handles the logic for the /history command.
func HandleHistory(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	var h historyLister
	if b.History != nil {
		h = b.History
	}
	respond(s, i, historyReply(h, i.GuildID))
}
