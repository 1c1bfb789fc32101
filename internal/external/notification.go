package external

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"telegram-notifier/internal/misc"
	"telegram-notifier/internal/model"
)

// this file contains the submission event and the listener pushing it to the mailing list

// Submission is one recorded form submission together with the request scoped
// state listeners may need
type Submission struct {
	Form     *model.Form
	Entry    model.Entry
	DB       *gorm.DB
	Options  *model.PluginOptions
	Telegram *Telegram
}

// SubmissionListener is called synchronously after the platform records a submission.
// Listeners must not fail the submission, so there is no error to return.
type SubmissionListener interface {
	OnSubmission(ctx context.Context, submission *Submission)
}

type SubmissionListenerFunc func(ctx context.Context, submission *Submission)

func (f SubmissionListenerFunc) OnSubmission(ctx context.Context, submission *Submission) {
	f(ctx, submission)
}

// Notifier sends every notification template of an enabled form to the mailing list
type Notifier struct {
	Location *time.Location
	// Now defaults to time.Now
	Now func() time.Time
}

func NewNotifier(location *time.Location) *Notifier {
	if location == nil {
		location = time.Local
	}
	return &Notifier{Location: location, Now: time.Now}
}

// OnSubmission swallows every error and panic, a failed notification never reaches the submitter
func (notifier *Notifier) OnSubmission(ctx context.Context, submission *Submission) {
	log := misc.Logger("notification")
	defer func() {
		if r := recover(); r != nil {
			log.Warn("notification aborted", "form_id", submission.Form.ID, "panic", r)
		}
	}()
	sent, err := notifier.Notify(ctx, submission)
	if err != nil {
		log.Warn("notification failed", "form_id", submission.Form.ID, "error", err)
		return
	}
	if sent > 0 {
		log.Debug("notifications sent", "form_id", submission.Form.ID, "count", sent)
	}
}

// Notify sends the notifications and returns how many messages were handed to Telegram
func (notifier *Notifier) Notify(ctx context.Context, submission *Submission) (int, error) {
	form := submission.Form
	if !submission.Options.HasForm(form.ID) {
		return 0, nil
	}
	if _, err := submission.Telegram.BuildURL("sendMessage"); err != nil {
		return 0, err
	}
	chatIDs, err := model.MailingListChatIDs(submission.DB)
	if err != nil {
		return 0, errors.Wrap(err, "cannot load the mailing list")
	}
	now := notifier.now().In(notifier.Location)
	sent := 0
	for _, notification := range form.Notifications {
		text := RenderNotification(notification.Message, form, submission.Entry, now)
		for _, chatID := range chatIDs {
			submission.Telegram.SendMessage(ctx, chatID, text)
			sent++
		}
	}
	return sent, nil
}

func (notifier *Notifier) now() time.Time {
	if notifier.Now == nil {
		return time.Now()
	}
	return notifier.Now()
}
