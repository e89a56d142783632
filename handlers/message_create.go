package handlers

import (
	"autothread-bot/bot"
	"autothread-bot/platform"

	"github.com/bwmarrin/discordgo"
)

// MessageCreateHandler feeds guild messages to the creator correlator.
func MessageCreateHandler(b *bot.Bot) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Message == nil || m.GuildID == "" {
			return
		}
		b.Onboarding.HandleMessage(platform.ToMessage(m.Message))
	}
}
