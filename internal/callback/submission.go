package callback

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"telegram-notifier/internal/external"
	"telegram-notifier/internal/misc"
	"telegram-notifier/internal/model"
)

// SubmissionRequest is posted by the form platform right after it records a submission
type SubmissionRequest struct {
	Form  map[string]interface{} `json:"form" binding:"required"`
	Entry map[string]interface{} `json:"entry"`
	// Confirmation is whatever the platform will show the submitter, it is handed back untouched
	Confirmation json.RawMessage `json:"confirmation"`
}

// HandleSubmission dispatches a submission to every listener and always answers
// with the confirmation it received
func HandleSubmission(listeners ...external.SubmissionListener) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		request := &SubmissionRequest{}
		if err := ctx.ShouldBindJSON(request); err != nil {
			misc.ReturnStandardError(ctx, http.StatusBadRequest, "cannot unmarshal JSON of request: "+err.Error())
			return
		}
		defer ctx.JSON(http.StatusOK, gin.H{"confirmation": request.Confirmation})

		log := misc.Logger("callback")
		form, err := model.DecodeForm(request.Form)
		if err != nil {
			log.Warn("submission ignored", "error", err)
			return
		}
		entry, err := model.DecodeEntry(request.Entry)
		if err != nil {
			log.Warn("submission ignored", "form_id", form.ID, "error", err)
			return
		}
		db := ctx.MustGet("DB").(*gorm.DB)
		if err := model.SaveForms(db, form); err != nil {
			log.Warn("cannot cache form definition", "form_id", form.ID, "error", err)
		}
		submission := &external.Submission{
			Form:     form,
			Entry:    entry,
			DB:       db,
			Options:  ctx.MustGet("Options").(*model.PluginOptions),
			Telegram: ctx.MustGet("Telegram").(*external.Telegram),
		}
		for _, listener := range listeners {
			notify(ctx, listener, submission)
		}
	}
}

// a misbehaving listener must not keep the others from running
func notify(ctx *gin.Context, listener external.SubmissionListener, submission *external.Submission) {
	defer func() {
		if r := recover(); r != nil {
			misc.Logger("callback").Error("submission listener panicked", "form_id", submission.Form.ID, "panic", r)
		}
	}()
	listener.OnSubmission(ctx.Request.Context(), submission)
}
