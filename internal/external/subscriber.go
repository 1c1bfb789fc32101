package external

import (
	"context"

	"gorm.io/gorm"

	"telegram-notifier/internal/misc"
	"telegram-notifier/internal/model"
)

// SyncSubscribers polls Telegram and stores every chat that is not a subscriber yet.
// It returns the number of subscribers created.
func SyncSubscribers(ctx context.Context, db *gorm.DB, telegram *Telegram) (int, error) {
	chats, err := telegram.PollUpdates(ctx)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, chat := range chats {
		err := db.Transaction(func(tx *gorm.DB) error {
			if subscriber, err := model.FindSubscriberByChatID(tx, chat.ChatID); err != nil || subscriber != nil {
				return err
			}
			inserted, err := model.InsertSubscriber(tx, chat.ChatID, chat.FullName(), chat.Username)
			if inserted {
				created++
			}
			return err
		})
		if err != nil {
			return created, err
		}
	}
	if created > 0 {
		misc.Logger("telegram").Info("subscribers discovered", "count", created)
	}
	return created, nil
}
