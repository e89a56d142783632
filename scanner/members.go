package scanner

import (
	"fmt"

	"autothread-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// PreloadGuild asks the gateway for the full member list of a guild. The
// chunks land in the session state, so roster members resolve without REST
// calls when a thread is onboarded.
func PreloadGuild(s *discordgo.Session, guildID string) {
	log.Info().Str("guild", guildID).Msg("requesting member list")
	if err := s.RequestGuildMembers(guildID, "", 0, "", false); err != nil {
		utils.Warn("Scanner", "PreloadMembers", fmt.Sprintf("guild %s: %v", guildID, err))
	}
}

// PreloadAll preloads every guild the session currently knows.
func PreloadAll(s *discordgo.Session) {
	if s == nil || s.State == nil {
		return
	}
	s.State.RLock()
	ids := make([]string, 0, len(s.State.Guilds))
	for _, g := range s.State.Guilds {
		ids = append(ids, g.ID)
	}
	s.State.RUnlock()

	for _, id := range ids {
		PreloadGuild(s, id)
	}
}
