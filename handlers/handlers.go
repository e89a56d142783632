package handlers

import (
	"autothread-bot/bot"
	"autothread-bot/scanner"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Register all handlers to the bot.
func Register(b *bot.Bot) {
	b.Session.AddHandler(InteractionCreate(b))
	b.Session.AddHandler(ThreadCreateHandler(b))
	b.Session.AddHandler(ThreadUpdateHandler(b))
	b.Session.AddHandler(MessageCreateHandler(b))

	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Msgf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
		go func() {
			if err := s.UpdateWatchStatus(0, "for new threads"); err != nil {
				log.Warn().Err(err).Msg("failed to set status")
			}
		}()
	})
	b.Session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		if g.Unavailable {
			return
		}
		log.Info().Str("guild", g.ID).Msg("seen guild")
		go scanner.PreloadGuild(s, g.ID)
	})
}
