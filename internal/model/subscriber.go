package model

import (
	"errors"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSubscriberNotFound is returned when a mailing flag update matches no row
var ErrSubscriberNotFound = errors.New("subscriber does not exist")

// Subscriber is a Telegram chat discovered through getUpdates.
// Names are captured once at discovery and never re-synced.
type Subscriber struct {
	ID            uint   `jsonapi:"primary,subscriber" gorm:"primarykey"`
	ChatID        int64  `jsonapi:"attr,chat_id" gorm:"not null;uniqueIndex"`
	FullName      string `jsonapi:"attr,full_name" gorm:"size:255;not null"`
	Username      string `jsonapi:"attr,username" gorm:"size:255;not null"`
	InMailingList bool   `jsonapi:"attr,in_mailing_list" gorm:"not null;default:false"`

	DBTime
}

// columns subscribers may be ordered by
var sortColumns = map[string]func(*Subscriber) string{
	"full_name": func(s *Subscriber) string { return s.FullName },
	"username":  func(s *Subscriber) string { return s.Username },
}

// CreateTables migrates all tables. Running it again never drops data.
func CreateTables(db *gorm.DB) error {
	return db.AutoMigrate(tables()...)
}

// DropTables removes the subscriber and form tables together with the stored options
func DropTables(db *gorm.DB) error {
	if err := DeleteOptions(db); err != nil {
		return err
	}
	return db.Migrator().DropTable(&Subscriber{}, &Form{}, &Option{})
}

// ListSubscribers returns subscribers with the given mailing flag.
// orderBy is one of full_name, username (default full_name), order is asc or desc (default asc).
func ListSubscribers(db *gorm.DB, inMailingList bool, orderBy string, order string) ([]*Subscriber, error) {
	var subscribers []*Subscriber
	if err := db.Where("in_mailing_list = ?", inMailingList).Order("id").Find(&subscribers).Error; err != nil {
		return nil, err
	}
	key, ok := sortColumns[orderBy]
	if !ok {
		key = sortColumns["full_name"]
	}
	desc := order == "desc"
	sort.SliceStable(subscribers, func(i, j int) bool {
		if desc {
			return key(subscribers[i]) > key(subscribers[j])
		}
		return key(subscribers[i]) < key(subscribers[j])
	})
	return subscribers, nil
}

// FindSubscriberByChatID returns nil without error when the chat is unknown
func FindSubscriberByChatID(db *gorm.DB, chatID int64) (*Subscriber, error) {
	subscriber := &Subscriber{}
	if err := db.Where("chat_id = ?", chatID).First(subscriber).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return subscriber, nil
}

// InsertSubscriber adds a chat outside the mailing list and reports whether a row was created.
// A concurrent insert of the same chat is silently ignored.
func InsertSubscriber(db *gorm.DB, chatID int64, fullName string, username string) (bool, error) {
	subscriber := &Subscriber{
		ChatID:   chatID,
		FullName: fullName,
		Username: username,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoNothing: true,
	}).Create(subscriber)
	return result.RowsAffected > 0, result.Error
}

// SetMailingFlag moves a subscriber in or out of the mailing list
func SetMailingFlag(db *gorm.DB, id uint, inMailingList bool) error {
	subscriber := &Subscriber{}
	if err := db.First(subscriber, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSubscriberNotFound
	} else if err != nil {
		return err
	}
	return db.Model(subscriber).Update("in_mailing_list", inMailingList).Error
}

// MailingListChatIDs returns the chat id of every subscriber in the mailing list
func MailingListChatIDs(db *gorm.DB) ([]int64, error) {
	var chatIDs []int64
	err := db.Model(&Subscriber{}).Where("in_mailing_list = ?", true).Order("id").Pluck("chat_id", &chatIDs).Error
	return chatIDs, err
}
