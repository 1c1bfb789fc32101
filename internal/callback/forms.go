package callback

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"telegram-notifier/internal/misc"
	"telegram-notifier/internal/model"
)

// HandleForms receives the platform's form catalogue so the admin page can offer every form
func HandleForms(ctx *gin.Context) {
	var request []map[string]interface{}
	if err := ctx.ShouldBindJSON(&request); err != nil {
		misc.ReturnStandardError(ctx, http.StatusBadRequest, "cannot unmarshal JSON of request: "+err.Error())
		return
	}
	forms := make([]*model.Form, 0, len(request))
	for i, raw := range request {
		form, err := model.DecodeForm(raw)
		if err != nil {
			misc.ReturnStandardError(ctx, http.StatusBadRequest, fmt.Sprintf("form #%d: %s", i, err.Error()))
			return
		}
		forms = append(forms, form)
	}
	if err := model.SaveForms(ctx.MustGet("DB").(*gorm.DB), forms...); err != nil {
		misc.ReturnStandardError(ctx, http.StatusInternalServerError, err.Error())
		return
	}
	ctx.Status(http.StatusNoContent)
}
