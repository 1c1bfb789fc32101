package external

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"telegram-notifier/internal/misc"
	"telegram-notifier/internal/model"
	"telegram-notifier/internal/testutil"
)

type notificationFixture struct {
	db       *gorm.DB
	fake     *testutil.FakeTelegram
	notifier *Notifier
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	db := testutil.NewDB(t)
	testutil.Subscribe(t, db, 101, "Anna", "anna", true)
	testutil.Subscribe(t, db, 102, "Boris", "boris", true)
	testutil.Subscribe(t, db, 103, "Clara", "clara", false)
	notifier := NewNotifier(msk)
	notifier.Now = func() time.Time { return submitted }
	return &notificationFixture{
		db:       db,
		fake:     testutil.NewFakeTelegram(t),
		notifier: notifier,
	}
}

func (fixture *notificationFixture) submission(form *model.Form, gfList []int, botKey *string) *Submission {
	return &Submission{
		Form:     form,
		Entry:    model.Entry{"1.3": "Ann", "2": "555"},
		DB:       fixture.db,
		Options:  &model.PluginOptions{BotKey: botKey, GFList: gfList},
		Telegram: NewTelegram(TelegramConfig{Endpoint: fixture.fake.Endpoint()}, botKey),
	}
}

func TestNotifier_SendsToMailingList(t *testing.T) {
	fixture := newNotificationFixture(t)
	form := contactForm()
	form.Notifications = []model.FormNotification{{Name: "Admin", Message: "<p>Phone: {Phone:2}</p>"}}
	key := testutil.ValidBotKey

	sent, err := fixture.notifier.Notify(context.Background(), fixture.submission(form, []int{7}, &key))
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	messages := fixture.fake.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, int64(101), messages[0].ChatID)
	assert.Equal(t, int64(102), messages[1].ChatID)
	for _, message := range messages {
		assert.Equal(t, "Contact us", strings.SplitN(message.Text, "\n", 2)[0])
		assert.Equal(t, "Contact us\n\nPhone: 555\n05.03.2024, 2:07", message.Text)
		assert.Equal(t, "html", message.ParseMode)
	}
}

func TestNotifier_EveryTemplateToEverySubscriber(t *testing.T) {
	fixture := newNotificationFixture(t)
	form := contactForm()
	form.Notifications = []model.FormNotification{
		{Name: "First", Message: "one"},
		{Name: "Switched off on the platform", Message: "three"},
		{Name: "Second", Message: "two"},
	}
	key := testutil.ValidBotKey

	sent, err := fixture.notifier.Notify(context.Background(), fixture.submission(form, []int{3, 7}, &key))
	require.NoError(t, err)
	assert.Equal(t, 6, sent)
	messages := fixture.fake.Messages()
	require.Len(t, messages, 6)
	texts := []string{}
	for _, message := range messages {
		texts = append(texts, strings.SplitN(message.Text, "\n", 4)[2])
	}
	assert.Equal(t, []string{"one", "one", "three", "three", "two", "two"}, texts)
}

func TestNotifier_FormNotEnabled(t *testing.T) {
	fixture := newNotificationFixture(t)
	form := contactForm()
	form.Notifications = []model.FormNotification{{Message: "hello"}}
	key := testutil.ValidBotKey

	sent, err := fixture.notifier.Notify(context.Background(), fixture.submission(form, []int{8}, &key))
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, fixture.fake.Messages())
}

func TestNotifier_WithoutBotKey(t *testing.T) {
	fixture := newNotificationFixture(t)
	form := contactForm()
	form.Notifications = []model.FormNotification{{Message: "hello"}}

	_, err := fixture.notifier.Notify(context.Background(), fixture.submission(form, []int{7}, nil))
	assert.True(t, misc.IsConfigError(err))

	assert.NotPanics(t, func() {
		fixture.notifier.OnSubmission(context.Background(), fixture.submission(form, []int{7}, nil))
	})
	assert.Empty(t, fixture.fake.Messages())
}

func TestNotifier_SwallowsPanics(t *testing.T) {
	fixture := newNotificationFixture(t)
	key := testutil.ValidBotKey
	submission := fixture.submission(contactForm(), []int{7}, &key)
	submission.DB = nil

	assert.NotPanics(t, func() {
		fixture.notifier.OnSubmission(context.Background(), submission)
	})
}

func TestSubmissionListenerFunc(t *testing.T) {
	var got *Submission
	var listener SubmissionListener = SubmissionListenerFunc(func(ctx context.Context, submission *Submission) {
		got = submission
	})
	submission := &Submission{Form: &model.Form{ID: 1}}

	listener.OnSubmission(context.Background(), submission)

	assert.Same(t, submission, got)
}
