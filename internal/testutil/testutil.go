// Package testutil holds the fixtures shared by the handler and client tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"telegram-notifier/internal/model"
)

// ValidBotKey matches the Telegram token format
const ValidBotKey = "12345678:ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789a"

func init() {
	gin.SetMode(gin.TestMode)
}

// NewDB opens a private in-memory database with all tables migrated
func NewDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	// every connection to :memory: is a new database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, model.CreateTables(db))
	return db
}

// Subscribe inserts a subscriber and optionally puts it into the mailing list
func Subscribe(t *testing.T, db *gorm.DB, chatID int64, fullName string, username string, inMailingList bool) *model.Subscriber {
	_, err := model.InsertSubscriber(db, chatID, fullName, username)
	require.NoError(t, err)
	subscriber, err := model.FindSubscriberByChatID(db, chatID)
	require.NoError(t, err)
	require.NotNil(t, subscriber)
	if inMailingList {
		require.NoError(t, model.SetMailingFlag(db, subscriber.ID, true))
		subscriber.InMailingList = true
	}
	return subscriber
}

// SentMessage is a sendMessage call received by FakeTelegram
type SentMessage struct {
	Method    string
	Token     string
	ChatID    int64
	Text      string
	ParseMode string
}

// FakeTelegram is a Bot API stand-in answering getUpdates with a canned body
// and recording every sendMessage call
type FakeTelegram struct {
	Server *httptest.Server

	mu       sync.Mutex
	updates  interface{}
	messages []SentMessage
	polls    int
}

func NewFakeTelegram(t *testing.T) *FakeTelegram {
	fake := &FakeTelegram{
		updates: map[string]interface{}{"ok": true, "result": []interface{}{}},
	}
	fake.Server = httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(fake.Server.Close)
	return fake
}

// Endpoint is a format string usable as the Telegram endpoint
func (fake *FakeTelegram) Endpoint() string {
	return fake.Server.URL + "/bot%s/%s"
}

// SetUpdates replaces the getUpdates response body, marshalled as JSON
func (fake *FakeTelegram) SetUpdates(body interface{}) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.updates = body
}

func (fake *FakeTelegram) Messages() []SentMessage {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return append([]SentMessage(nil), fake.messages...)
}

func (fake *FakeTelegram) Polls() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.polls
}

// Chat builds one getUpdates result item
func Chat(id int64, firstName string, lastName string, username string) map[string]interface{} {
	chat := map[string]interface{}{"id": id, "type": "private", "first_name": firstName}
	if lastName != "" {
		chat["last_name"] = lastName
	}
	if username != "" {
		chat["username"] = username
	}
	return map[string]interface{}{
		"update_id": id,
		"message":   map[string]interface{}{"message_id": 1, "date": 0, "chat": chat, "text": "/start"},
	}
}

func (fake *FakeTelegram) serve(w http.ResponseWriter, r *http.Request) {
	// /bot<token>/<method>
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/bot"), "/", 2)
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch parts[1] {
	case "getUpdates":
		fake.polls++
		json.NewEncoder(w).Encode(fake.updates)
	case "sendMessage":
		query := r.URL.Query()
		chatID, _ := strconv.ParseInt(query.Get("chat_id"), 10, 64)
		fake.messages = append(fake.messages, SentMessage{
			Method:    r.Method,
			Token:     parts[0],
			ChatID:    chatID,
			Text:      query.Get("text"),
			ParseMode: query.Get("parse_mode"),
		})
		w.Write([]byte(`{"ok":true,"result":{}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
	}
}
