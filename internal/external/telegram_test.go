package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-notifier/internal/misc"
	"telegram-notifier/internal/model"
	"telegram-notifier/internal/testutil"
)

func newTestTelegram(fake *testutil.FakeTelegram, botKey string) *Telegram {
	return NewTelegram(TelegramConfig{Endpoint: fake.Endpoint()}, &botKey)
}

func TestBuildURL(t *testing.T) {
	t.Run("default endpoint", func(t *testing.T) {
		key := testutil.ValidBotKey
		telegram := NewTelegram(TelegramConfig{}, &key)
		method, err := telegram.BuildURL("getUpdates")
		require.NoError(t, err)
		assert.Equal(t, "https://api.telegram.org/bot"+key+"/getUpdates", method)
	})

	t.Run("without bot key", func(t *testing.T) {
		for _, telegram := range []*Telegram{
			NewTelegram(TelegramConfig{}, nil),
			newTestTelegram(testutil.NewFakeTelegram(t), ""),
		} {
			_, err := telegram.BuildURL("sendMessage")
			assert.True(t, misc.IsConfigError(err))
		}
	})
}

func TestPollUpdates(t *testing.T) {
	fake := testutil.NewFakeTelegram(t)
	telegram := newTestTelegram(fake, testutil.ValidBotKey)
	ctx := context.Background()

	t.Run("chats are extracted from messages", func(t *testing.T) {
		fake.SetUpdates(map[string]interface{}{
			"ok": true,
			"result": []interface{}{
				testutil.Chat(42, "A", "", "a"),
				map[string]interface{}{"update_id": 2, "edited_message": map[string]interface{}{"message_id": 3}},
				testutil.Chat(43, "Ivan", "Petrov", ""),
			},
		})
		chats, err := telegram.PollUpdates(ctx)
		require.NoError(t, err)
		assert.Equal(t, []Chat{
			{ChatID: 42, FirstName: "A", Username: "a"},
			{ChatID: 43, FirstName: "Ivan", LastName: "Petrov"},
		}, chats)
		assert.Equal(t, "A", chats[0].FullName())
		assert.Equal(t, "Ivan Petrov", chats[1].FullName())
	})

	t.Run("not ok yields nothing", func(t *testing.T) {
		fake.SetUpdates(map[string]interface{}{"ok": false, "error_code": 401, "description": "Unauthorized"})
		chats, err := telegram.PollUpdates(ctx)
		require.NoError(t, err)
		assert.Empty(t, chats)
	})

	t.Run("without bot key", func(t *testing.T) {
		_, err := NewTelegram(TelegramConfig{Endpoint: fake.Endpoint()}, nil).PollUpdates(ctx)
		assert.True(t, misc.IsConfigError(err))
	})

	t.Run("garbage response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer server.Close()
		key := testutil.ValidBotKey
		_, err := NewTelegram(TelegramConfig{Endpoint: server.URL + "/bot%s/%s"}, &key).PollUpdates(ctx)
		assert.Error(t, err)
	})
}

func TestSendMessage(t *testing.T) {
	fake := testutil.NewFakeTelegram(t)
	ctx := context.Background()

	t.Run("sent as a GET with html parse mode", func(t *testing.T) {
		newTestTelegram(fake, testutil.ValidBotKey).SendMessage(ctx, 42, "Contact us\n\nName: A & B")
		messages := fake.Messages()
		require.Len(t, messages, 1)
		assert.Equal(t, testutil.SentMessage{
			Method:    http.MethodGet,
			Token:     testutil.ValidBotKey,
			ChatID:    42,
			Text:      "Contact us\n\nName: A & B",
			ParseMode: "html",
		}, messages[0])
	})

	t.Run("failures are not reported", func(t *testing.T) {
		key := testutil.ValidBotKey
		unreachable := NewTelegram(TelegramConfig{Endpoint: "http://127.0.0.1:0/bot%s/%s"}, &key)
		assert.NotPanics(t, func() { unreachable.SendMessage(ctx, 42, "lost") })
		assert.NotPanics(t, func() { NewTelegram(TelegramConfig{}, nil).SendMessage(ctx, 42, "no key") })
	})
}

func TestSyncSubscribers(t *testing.T) {
	db := testutil.NewDB(t)
	fake := testutil.NewFakeTelegram(t)
	telegram := newTestTelegram(fake, testutil.ValidBotKey)
	ctx := context.Background()

	t.Run("new chat becomes a subscriber outside the mailing list", func(t *testing.T) {
		fake.SetUpdates(map[string]interface{}{
			"ok":     true,
			"result": []interface{}{testutil.Chat(42, "A", "", "a")},
		})
		created, err := SyncSubscribers(ctx, db, telegram)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		subscriber, err := model.FindSubscriberByChatID(db, 42)
		require.NoError(t, err)
		require.NotNil(t, subscriber)
		assert.Equal(t, "A", subscriber.FullName)
		assert.Equal(t, "a", subscriber.Username)
		assert.False(t, subscriber.InMailingList)
	})

	t.Run("known and repeated chats are not duplicated", func(t *testing.T) {
		fake.SetUpdates(map[string]interface{}{
			"ok": true,
			"result": []interface{}{
				testutil.Chat(42, "Renamed", "", "renamed"),
				testutil.Chat(43, "Ivan", "Petrov", "ivan"),
				testutil.Chat(43, "Ivan", "Petrov", "ivan"),
			},
		})
		created, err := SyncSubscribers(ctx, db, telegram)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		var count int64
		require.NoError(t, db.Model(&model.Subscriber{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)

		subscriber, err := model.FindSubscriberByChatID(db, 42)
		require.NoError(t, err)
		assert.Equal(t, "A", subscriber.FullName)

		subscriber, err = model.FindSubscriberByChatID(db, 43)
		require.NoError(t, err)
		assert.Equal(t, "Ivan Petrov", subscriber.FullName)
	})
}
