package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"telegram-notifier/internal/external"
	"telegram-notifier/internal/misc"
	"telegram-notifier/internal/model"
)

// OptionsMiddleware loads the plugin options once per request as "Options"
// and builds a Telegram client bound to the stored bot key as "Telegram".
// It must run after DatabaseMiddleware.
func OptionsMiddleware(config external.TelegramConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		options, err := model.GetOptions(ctx.MustGet("DB").(*gorm.DB))
		if err != nil {
			misc.Logger("middleware").Error("cannot load options", "error", err)
			ctx.String(http.StatusInternalServerError, "cannot load plugin options")
			ctx.Abort()
			return
		}
		setOptions(ctx, config, options)
		ctx.Next()
	}
}

// FallbackOptionsMiddleware is OptionsMiddleware for callers that must always get an answer.
// When the options cannot be read the defaults are used, so no form is enabled and no bot key is set.
func FallbackOptionsMiddleware(config external.TelegramConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		options, err := model.GetOptions(ctx.MustGet("DB").(*gorm.DB))
		if err != nil {
			misc.Logger("middleware").Error("cannot load options, using defaults", "error", err)
			options = model.DefaultOptions()
		}
		setOptions(ctx, config, options)
		ctx.Next()
	}
}

func setOptions(ctx *gin.Context, config external.TelegramConfig, options *model.PluginOptions) {
	ctx.Set("Options", options)
	ctx.Set("Telegram", external.NewTelegram(config, options.BotKey))
}
