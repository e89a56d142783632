package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red
)

var (
	session   *discordgo.Session
	channelID string
	// Embeds share the REST bucket with onboarding calls.
	mirrorLimiter = rate.NewLimiter(rate.Every(2*time.Second), 5)
)

// SetupLogging configures the global zerolog logger.
func SetupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		With().Timestamp().Logger()
}

// InitLogger enables mirroring log entries to the admin channel.
func InitLogger(s *discordgo.Session, adminChannelID string) {
	session = s
	channelID = adminChannelID
	if channelID == "" {
		log.Warn().Msg("bot.admin_channel_id is not set, logging to channel is disabled")
	}
}

// Log writes a structured entry and mirrors it to the admin channel when configured.
func Log(level, module, operation, details string) {
	var ev *zerolog.Event
	var color int
	switch level {
	case "WARN":
		ev, color = log.Warn(), ColorWarn
	case "ERROR":
		ev, color = log.Error(), ColorError
	default:
		ev, color = log.Info(), ColorInfo
	}
	ev.Str("module", module).Str("operation", operation).Msg(details)

	if session == nil || channelID == "" {
		return
	}
	if !mirrorLimiter.Allow() {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Log Level: %s", level),
		Color:     color,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Module",
				Value:  module,
				Inline: true,
			},
			{
				Name:   "Operation",
				Value:  operation,
				Inline: true,
			},
			{
				Name:  "Details",
				Value: details,
			},
		},
	}

	if _, err := session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Error().Err(err).Msg("error sending log message to Discord")
	}
}

// Info logs an informational message.
func Info(module, operation, details string) {
	Log("INFO", module, operation, details)
}

// Warn logs a warning message.
func Warn(module, operation, details string) {
	Log("WARN", module, operation, details)
}

// Error logs an error message.
func Error(module, operation, details string) {
	Log("ERROR", module, operation, details)
}
