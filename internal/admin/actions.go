package admin

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"telegram-notifier/internal/external"
	"telegram-notifier/internal/misc"
	"telegram-notifier/internal/model"
)

// this file contains the admin actions posted by the buttons of the settings page

const (
	messagePrefix       = "Telegram Notifier: "
	defaultMessage      = "success!"
	defaultErrorMessage = "internal error, please contact the developers"
)

// Action is a unit of work. The returned message replaces the default success text when not empty.
type Action func(ctx *gin.Context) (string, error)

// Actions maps the posted "action" field to its handler
var Actions = map[string]Action{
	"telegram-notifier-update":    Update,
	"telegram-notifier-add":       Add,
	"telegram-notifier-remove":    Remove,
	"telegram-notifier-gf-add":    FormAdd,
	"telegram-notifier-gf-remove": FormRemove,
}

// HandleAction dispatches an admin action and redirects back with the outcome as a notice
func HandleAction(ctx *gin.Context) {
	action, exists := Actions[ctx.PostForm("action")]
	if !exists {
		ctx.String(http.StatusBadRequest, "unknown action")
		return
	}
	RunAction(ctx, action)
}

// RunAction runs action, then redirects to the referring page with
// notice_message and notice_status set, whatever happened
func RunAction(ctx *gin.Context, action Action) {
	message, status := runAction(ctx, action)
	redirectWithNotice(ctx, message, status)
}

func redirectWithNotice(ctx *gin.Context, message string, status string) {
	target := misc.SetQuery(ctx.Request.Referer(), pageRoot(ctx), map[string]string{
		"notice_message": message,
		"notice_status":  status,
	})
	ctx.Redirect(http.StatusFound, target)
	ctx.Abort()
}

func runAction(ctx *gin.Context, action Action) (message string, status string) {
	log := misc.Logger("admin")
	defer func() {
		if r := recover(); r != nil {
			log.Error("action panicked", "action", ctx.PostForm("action"), "panic", r)
			message, status = messagePrefix+defaultErrorMessage, "error"
		}
	}()
	result, err := action(ctx)
	if err != nil {
		log.Warn("action failed", "action", ctx.PostForm("action"), "error", err)
		if err.Error() == "" {
			return messagePrefix + defaultErrorMessage, "error"
		}
		return messagePrefix + err.Error(), "error"
	}
	if result == "" {
		result = defaultMessage
	}
	return messagePrefix + result, "success"
}

// Update stores the chats that started the bot since the last poll
func Update(ctx *gin.Context) (string, error) {
	db := ctx.MustGet("DB").(*gorm.DB)
	telegram := ctx.MustGet("Telegram").(*external.Telegram)
	_, err := external.SyncSubscribers(ctx.Request.Context(), db, telegram)
	return "", err
}

// Add puts a subscriber into the mailing list
func Add(ctx *gin.Context) (string, error) {
	if err := setMailingFlag(ctx, true); err != nil {
		return "", err
	}
	return "subscriber added to the mailing list", nil
}

// Remove takes a subscriber out of the mailing list
func Remove(ctx *gin.Context) (string, error) {
	if err := setMailingFlag(ctx, false); err != nil {
		return "", err
	}
	return "subscriber removed from the mailing list", nil
}

// FormAdd enables notifications for a form. Adding a form twice lists it twice.
func FormAdd(ctx *gin.Context) (string, error) {
	formID, err := postedID(ctx, "gf")
	if err != nil {
		return "", err
	}
	options := ctx.MustGet("Options").(*model.PluginOptions)
	options.AddForm(int(formID))
	return "", model.SetOptions(ctx.MustGet("DB").(*gorm.DB), options)
}

// FormRemove disables notifications for one occurrence of a form
func FormRemove(ctx *gin.Context) (string, error) {
	formID, err := postedID(ctx, "gf")
	if err != nil {
		return "", err
	}
	options := ctx.MustGet("Options").(*model.PluginOptions)
	if !options.RemoveForm(int(formID)) {
		return "", nil
	}
	return "", model.SetOptions(ctx.MustGet("DB").(*gorm.DB), options)
}

func setMailingFlag(ctx *gin.Context, inMailingList bool) error {
	id, err := postedID(ctx, "id")
	if err != nil {
		return err
	}
	return model.SetMailingFlag(ctx.MustGet("DB").(*gorm.DB), uint(id), inMailingList)
}

func postedID(ctx *gin.Context, field string) (uint64, error) {
	value := ctx.PostForm(field)
	if value == "" {
		return 0, misc.NewValidationError(field, fmt.Sprintf("%q is required", field))
	}
	id, err := strconv.ParseUint(value, 10, 31)
	if err != nil || id == 0 {
		return 0, misc.NewValidationError(field, fmt.Sprintf("%q must be a positive integer", field))
	}
	return id, nil
}
