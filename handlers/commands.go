package handlers

import (
	"autothread-bot/bot"
	"autothread-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

var commandPermissions = map[string]string{
	"help":     "guest",
	"list":     "admin",
	"add":      "admin",
	"remove":   "admin",
	"filter":   "admin",
	"settings": "admin",
	"history":  "admin",
}

// CommandDispatcher is the central handler for all application command interactions.
// It performs permission checks and then dispatches the interaction to the appropriate handler.
func CommandDispatcher(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" || i.Member == nil {
		respond(s, i, negative("Not here", "This bot only works inside a Discord server."))
		return
	}

	auth, err := utils.NewAuth()
	if err != nil {
		log.Error().Err(err).Msg("failed to create auth instance")
		respond(s, i, negative("Error", "Internal error while checking permissions."))
		return
	}

	data := i.ApplicationCommandData()
	requiredLevel, ok := commandPermissions[data.Name]
	if !ok {
		respond(s, i, negative("Error", "Unknown command."))
		return
	}
	if !auth.CheckPermission(i.Member, requiredLevel) {
		respond(s, i, negative("Not for you", "Only users with the **Admin** permission may use the `"+data.Name+"` command."))
		return
	}

	switch data.Name {
	case "help":
		respond(s, i, helpReply())
	case "list":
		HandleList(b, s, i)
	case "add":
		HandleAdd(b, s, i)
	case "remove":
		HandleRemove(b, s, i)
	case "filter":
		HandleFilter(b, s, i)
	case "settings":
		HandleSettings(b, s, i)
	case "history":
		HandleHistory(b, s, i)
	}
}

// respond sends r as an ephemeral embed.
func respond(s *discordgo.Session, i *discordgo.InteractionCreate, r reply) {
	color := utils.ColorError
	if r.Positive {
		color = utils.ColorInfo
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       r.Title,
				Description: r.Description,
				Color:       color,
			}},
			Flags:           discordgo.MessageFlagsEphemeral,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("error responding to interaction")
	}
}
