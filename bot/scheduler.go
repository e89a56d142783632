package bot

import (
	"fmt"
	"time"

	"autothread-bot/scanner"
	"autothread-bot/utils"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// startScheduler starts the cron jobs.
func (b *Bot) startScheduler() error {
	log.Info().Msg("Initializing scheduler...")
	b.cron = cron.New()

	if b.Settings.AutosaveSchedule != "" {
		_, err := b.cron.AddFunc(b.Settings.AutosaveSchedule, func() {
			if failed := b.Store.SaveAll(); failed > 0 {
				utils.Warn("Scheduler", "Autosave", fmt.Sprintf("%d guild configs failed to save", failed))
			}
		})
		if err != nil {
			return fmt.Errorf("could not set up autosave job: %w", err)
		}
	}

	if b.History != nil && b.Settings.HistoryCleanupSchedule != "" {
		_, err := b.cron.AddFunc(b.Settings.HistoryCleanupSchedule, func() {
			n, err := b.History.CleanupOlderThan(b.Settings.HistoryRetentionDays, time.Now())
			if err != nil {
				utils.Error("Scheduler", "HistoryCleanup", err.Error())
				return
			}
			log.Info().Int64("rows", n).Msg("cleaned up old onboarding history")
		})
		if err != nil {
			return fmt.Errorf("could not set up history cleanup job: %w", err)
		}
	}

	_, err := b.cron.AddFunc("@every 6h", func() {
		scanner.PreloadAll(b.Session)
	})
	if err != nil {
		return fmt.Errorf("could not set up member preload job: %w", err)
	}

	b.cron.Start()
	log.Info().Msg("Scheduler started.")
	return nil
}

// stopScheduler stops the cron jobs.
func (b *Bot) stopScheduler() {
	if b.cron != nil {
		<-b.cron.Stop().Done()
		log.Info().Msg("Scheduler stopped.")
	}
}
