package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pkg/errors"

	"telegram-notifier/internal/misc"
)

// this file contains the Telegram Bot API client used by both the admin actions and the notification hook

const missingBotKey = "the plugin cannot work without a Bot Key, set the Bot Key in the settings"

type TelegramConfig struct {
	// Endpoint is a format string taking the bot token and the method name
	Endpoint string
	Timeout  time.Duration
	// Client overrides the HTTP client built from Timeout
	Client *http.Client
}

// Telegram performs blocking GET calls against the Bot API with the configured bot key
type Telegram struct {
	botKey   *string
	endpoint string
	client   *http.Client
}

// Chat is a private chat discovered in getUpdates
type Chat struct {
	ChatID    int64
	FirstName string
	LastName  string
	Username  string
}

// FullName is the first name followed by the last name when there is one
func (chat Chat) FullName() string {
	if chat.LastName == "" {
		return chat.FirstName
	}
	return chat.FirstName + " " + chat.LastName
}

func NewTelegram(config TelegramConfig, botKey *string) *Telegram {
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	return &Telegram{
		botKey:   botKey,
		endpoint: endpoint,
		client:   client,
	}
}

// BuildURL returns the method URL for the configured bot, or a ConfigError without a bot key
func (telegram *Telegram) BuildURL(action string) (string, error) {
	if telegram.botKey == nil || *telegram.botKey == "" {
		return "", misc.NewConfigError(missingBotKey)
	}
	return fmt.Sprintf(telegram.endpoint, *telegram.botKey, action), nil
}

// PollUpdates lists the chats found in pending updates.
// A response with ok=false yields no chats and no error.
func (telegram *Telegram) PollUpdates(ctx context.Context) ([]Chat, error) {
	method, err := telegram.BuildURL("getUpdates")
	if err != nil {
		return nil, err
	}
	body, err := telegram.get(ctx, method, nil)
	if err != nil {
		return nil, errors.Wrap(err, "cannot fetch updates from Telegram")
	}
	defer body.Close()

	response := tgbotapi.APIResponse{}
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, errors.Wrap(err, "cannot decode Telegram response")
	}
	chats := []Chat{}
	if !response.Ok {
		misc.Logger("telegram").Debug("getUpdates was not ok", "code", response.ErrorCode, "description", response.Description)
		return chats, nil
	}
	var updates []tgbotapi.Update
	if err := json.Unmarshal(response.Result, &updates); err != nil {
		return nil, errors.Wrap(err, "cannot decode Telegram updates")
	}
	for _, update := range updates {
		if update.Message == nil || update.Message.Chat == nil {
			continue
		}
		chat := update.Message.Chat
		firstName := chat.FirstName
		if firstName == "" {
			// groups have a title instead of a name
			firstName = chat.Title
		}
		chats = append(chats, Chat{
			ChatID:    chat.ID,
			FirstName: firstName,
			LastName:  chat.LastName,
			Username:  chat.UserName,
		})
	}
	return chats, nil
}

// SendMessage pushes an HTML formatted text to a chat.
// Delivery is best effort: the response is ignored and failures are only logged.
func (telegram *Telegram) SendMessage(ctx context.Context, chatID int64, text string) {
	log := misc.Logger("telegram")
	method, err := telegram.BuildURL("sendMessage")
	if err != nil {
		log.Debug("message not sent", "chat_id", chatID, "error", err)
		return
	}
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("text", text)
	params.Set("parse_mode", "html")
	body, err := telegram.get(ctx, method, params)
	if err != nil {
		log.Debug("message not sent", "chat_id", chatID, "error", err)
		return
	}
	io.Copy(io.Discard, body)
	body.Close()
}

func (telegram *Telegram) get(ctx context.Context, method string, params url.Values) (io.ReadCloser, error) {
	if params != nil {
		method += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, method, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Add("Accept", "application/json")
	resp, err := telegram.client.Do(req)
	if err != nil {
		// the URL carries the bot token, keep it out of messages
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, errors.WithStack(err)
	}
	return resp.Body, nil
}
