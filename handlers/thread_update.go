package handlers

import (
	"autothread-bot/bot"

	"github.com/bwmarrin/discordgo"
)

// ThreadUpdateHandler handles the THREAD_UPDATE event for the auto-unlock feature.
func ThreadUpdateHandler(b *bot.Bot) func(s *discordgo.Session, t *discordgo.ThreadUpdate) {
	return func(s *discordgo.Session, t *discordgo.ThreadUpdate) {
		if t.Channel == nil || t.BeforeUpdate == nil || t.ThreadMetadata == nil || t.GuildID == "" {
			return
		}
		wasArchived := t.BeforeUpdate.ThreadMetadata != nil && t.BeforeUpdate.ThreadMetadata.Archived
		go b.Onboarding.HandleThreadUpdate(t.GuildID, t.ID, wasArchived, t.ThreadMetadata.Archived, t.ThreadMetadata.Locked)
	}
}
