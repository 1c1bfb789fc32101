package telegram

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"telegram-notifier/internal/external"
	"telegram-notifier/internal/misc"
	"telegram-notifier/internal/model"
)

// this file contains the scheduled discovery of new subscribers

// cronTimeout bounds a single scheduled poll
const cronTimeout = time.Minute

// Schedule registers the periodic poll on c. An empty spec disables it.
func Schedule(c *cron.Cron, spec string, db *gorm.DB, config external.TelegramConfig) error {
	if spec == "" {
		return nil
	}
	_, err := c.AddFunc(spec, func() { Cron(db, config) })
	return err
}

// Cron polls Telegram once with the options currently stored
func Cron(db *gorm.DB, config external.TelegramConfig) {
	log := misc.Logger("cron")
	options, err := model.GetOptions(db)
	if err != nil {
		log.Error("cannot load options", "error", err)
		return
	}
	if options.BotKey == nil {
		log.Debug("poll skipped, no bot key configured")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cronTimeout)
	defer cancel()
	created, err := external.SyncSubscribers(ctx, db.WithContext(ctx), external.NewTelegram(config, options.BotKey))
	if err != nil {
		log.Warn("scheduled poll failed", "error", err)
		return
	}
	log.Debug("scheduled poll done", "created", created)
}
