package bot

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autothread-bot/config"
	"autothread-bot/database"
	healthgrpc "autothread-bot/grpc"
	"autothread-bot/models"
	"autothread-bot/onboarding"
	"autothread-bot/platform"
	"autothread-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Bot encapsulates the bot's state. It is the single owner of the tenant
// store and the onboarding registries; handlers reach them through it.
type Bot struct {
	Session    *discordgo.Session
	Commands   map[string]*discordgo.ApplicationCommand
	Settings   models.Settings
	Store      *database.TenantStore
	History    *database.HistoryDB
	Onboarding *onboarding.Service

	cron   *cron.Cron
	health *healthgrpc.HealthServer
}

// NewBot creates and initializes a new Bot instance.
func NewBot() (*Bot, error) {
	config.LoadConfig()
	settings, err := config.Settings(viper.GetViper())
	if err != nil {
		return nil, err
	}
	utils.SetupLogging(settings.LogLevel)

	token := viper.GetString("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("no bot token provided")
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent
	// Handlers run on the gateway goroutine so thread creations reach the
	// onboarding service in event order; slow handlers spawn their own goroutine.
	dg.SyncEvents = true

	p, err := platform.NewDiscord(dg, settings.ChannelCacheSize)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		Session:  dg,
		Commands: make(map[string]*discordgo.ApplicationCommand),
		Settings: settings,
		Store:    database.NewTenantStore(settings.ConfigDir, settings.MaxUsers),
	}

	var recorder onboarding.Recorder
	if settings.HistoryDB != "" {
		history, err := database.InitHistoryDB(settings.HistoryDB)
		if err != nil {
			log.Error().Err(err).Msg("onboarding history disabled")
		} else {
			b.History = history
			recorder = history
		}
	}

	b.Onboarding = onboarding.NewService(b.Store, p, recorder, onboarding.Options{
		CorrelationTimeout: settings.CorrelationTimeout,
		MaxThreadAge:       settings.MaxThreadAge,
	})
	return b, nil
}

// RegisterCommands registers the provided command definitions.
func (b *Bot) RegisterCommands(defs []*discordgo.ApplicationCommand) {
	for _, def := range defs {
		b.Commands[def.Name] = def
	}
}

// Start opens the bot's session and registers handlers.
func (b *Bot) Start(registerHandlers func(*Bot)) error {
	registerHandlers(b)

	err := b.Session.Open()
	if err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	utils.InitLogger(b.Session, b.Settings.AdminChannelID)

	for _, def := range b.Commands {
		if _, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, "", def); err != nil {
			log.Error().Err(err).Str("command", def.Name).Msg("cannot create command")
		}
	}

	if err := b.startScheduler(); err != nil {
		return err
	}

	if b.Settings.HealthAddr != "" {
		b.health = healthgrpc.NewHealthServer()
		if err := b.health.Start(b.Settings.HealthAddr); err != nil {
			log.Error().Err(err).Msg("health endpoint disabled")
			b.health = nil
		}
	}

	log.Info().Msg("Bot is now running. Type 'stop' or press CTRL-C to exit.")
	return nil
}

// Stop closes the session and flushes every tenant config.
func (b *Bot) Stop() {
	if b.health != nil {
		b.health.SetServing(false)
	}
	b.stopScheduler()
	if b.Session != nil {
		b.Session.Close()
	}
	b.Onboarding.Shutdown(5 * time.Second)
	b.Store.ShutdownAll()
	if b.History != nil {
		if err := b.History.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close history database")
		}
	}
	if b.health != nil {
		b.health.Stop()
	}
	log.Info().Msg("Bot stopped gracefully.")
}

// Run is the main entry point for the bot application.
func Run(registerHandlers func(*Bot), defs []*discordgo.ApplicationCommand) {
	bot, err := NewBot()
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing bot")
	}

	bot.RegisterCommands(defs)

	if err := bot.Start(registerHandlers); err != nil {
		log.Fatal().Err(err).Msg("error starting bot")
	}

	stop := make(chan struct{})
	go ConsoleLoop(os.Stdin, stop)

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	select {
	case <-sc:
	case <-stop:
		log.Info().Msg("Clearing up...")
	}

	bot.Stop()
}
