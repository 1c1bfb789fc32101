package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"telegram-notifier/internal/admin"
	"telegram-notifier/internal/api"
	"telegram-notifier/internal/callback"
	"telegram-notifier/internal/external"
	"telegram-notifier/internal/middleware"
)

type routerConfig struct {
	Telegram external.TelegramConfig
	// Accounts protects the admin page and the API, nil disables authentication
	Accounts   gin.Accounts
	HookSecret string
	// FormBuilder is false when the form platform is not available
	FormBuilder bool
	Listeners   []external.SubmissionListener
}

func newRouter(db *gorm.DB, config routerConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.SetHTMLTemplate(admin.Templates())
	router.Use(middleware.DatabaseMiddleware(db))

	authorized := func(group *gin.RouterGroup) {
		if config.Accounts != nil {
			group.Use(gin.BasicAuth(config.Accounts))
		}
	}

	adminRouter := router.Group("/admin")
	authorized(adminRouter)
	if !config.FormBuilder {
		// without the form platform only the warning is served
		adminRouter.GET("", admin.MissingFormBuilder)
		return router
	}
	adminRouter.Use(middleware.OptionsMiddleware(config.Telegram))
	{
		adminRouter.GET("", admin.Page)
		adminRouter.POST(admin.OptionsPath, admin.SaveOptions)
		adminRouter.POST(admin.ActionPath, admin.HandleAction)
	}

	hookRouter := router.Group("/hooks")
	hookRouter.Use(middleware.HookMiddleware(config.HookSecret))
	hookRouter.Use(middleware.FallbackOptionsMiddleware(config.Telegram))
	{
		hookRouter.POST("/submission", callback.HandleSubmission(config.Listeners...))
		hookRouter.PUT("/forms", callback.HandleForms)
	}

	apiRouter := router.Group("/api")
	apiRouter.Use(middleware.APIMiddleware)
	{
		apiRouter.GET("/uptime", uptime)
		subscriberRouter := apiRouter.Group("/subscribers")
		authorized(subscriberRouter)
		subscriberRouter.GET("", api.SubscribersGet)
	}

	return router
}

func uptime(ctx *gin.Context) {
	ctx.String(http.StatusOK, "{\"meta\":{\"uptime\": \""+fmt.Sprintf("%s", time.Since(startTime))+"\"}}")
}
