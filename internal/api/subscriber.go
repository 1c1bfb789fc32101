package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/jsonapi"
	"gorm.io/gorm"

	"telegram-notifier/internal/misc"
	"telegram-notifier/internal/model"
)

// SubscribersGet lists subscribers as a JSON:API document.
// Without in_mailing_list both lists are returned, mailing list first.
func SubscribersGet(ctx *gin.Context) {
	db := ctx.MustGet("DB").(*gorm.DB)
	orderBy := ctx.Query("orderby")
	order := ctx.Query("order")

	lists := []bool{true, false}
	if raw, exists := ctx.GetQuery("in_mailing_list"); exists {
		inMailingList, err := strconv.ParseBool(raw)
		if err != nil {
			misc.ReturnStandardError(ctx, http.StatusBadRequest, "in_mailing_list must be a boolean")
			return
		}
		lists = []bool{inMailingList}
	}

	subscribers := []*model.Subscriber{}
	for _, inMailingList := range lists {
		found, err := model.ListSubscribers(db, inMailingList, orderBy, order)
		if err != nil {
			misc.ReturnStandardError(ctx, http.StatusInternalServerError, err.Error())
			return
		}
		subscribers = append(subscribers, found...)
	}
	ctx.Status(http.StatusOK)
	if err := jsonapi.MarshalPayload(ctx.Writer, subscribers); err != nil {
		misc.ReturnStandardError(ctx, http.StatusInternalServerError, err.Error())
	}
}
