package handlers

import (
	"time"

	"autothread-bot/bot"
	"autothread-bot/platform"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// ThreadCreateHandler handles the THREAD_CREATE event. The gates run on the
// event goroutine; the onboarding itself runs in the background.
func ThreadCreateHandler(b *bot.Bot) func(s *discordgo.Session, t *discordgo.ThreadCreate) {
	return func(s *discordgo.Session, t *discordgo.ThreadCreate) {
		if t.Channel == nil || t.GuildID == "" || !t.IsThread() {
			return
		}
		created, err := discordgo.SnowflakeTimestamp(t.ID)
		if err != nil {
			created = time.Time{}
		}
		if b.Onboarding.Dispatch(platform.ToThread(t.Channel), created) {
			log.Debug().Str("guild", t.GuildID).Str("thread", t.ID).Msg("onboarding started")
		}
	}
}
