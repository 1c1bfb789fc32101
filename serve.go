package main

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"telegram-notifier/internal/external"
	"telegram-notifier/internal/misc"
	"telegram-notifier/internal/model"
	"telegram-notifier/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the tables and serve the admin page and hooks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	log := misc.Logger("main")

	accounts := gin.Accounts(viper.GetStringMapString("admin.accounts"))
	if len(accounts) == 0 {
		return errors.New("admin.accounts must list at least one administrator")
	}
	location, err := time.LoadLocation(viper.GetString("timezone"))
	if err != nil {
		return err
	}
	hookSecret := viper.GetString("hooks.secret")
	if hookSecret == "" {
		hookSecret = uuid.New().String()
		log.Warn("hooks.secret is not set, using a generated secret", "secret", hookSecret)
	}
	telegramConfig := external.TelegramConfig{
		Endpoint: viper.GetString("telegram.endpoint"),
		Timeout:  viper.GetDuration("telegram.timeout"),
	}

	// load essential interfaces (database)
	db, err := openDatabase()
	if err != nil {
		return err
	}
	if err := model.CreateTables(db); err != nil {
		return err
	}
	debugPrint("Database migrated")

	formBuilder := viper.GetBool("formbuilder.enabled")
	if !formBuilder {
		log.Warn("form builder integration is disabled, only the admin notice is served")
	}
	router := newRouter(db, routerConfig{
		Telegram:    telegramConfig,
		Accounts:    accounts,
		HookSecret:  hookSecret,
		FormBuilder: formBuilder,
		Listeners:   []external.SubmissionListener{external.NewNotifier(location)},
	})

	if formBuilder {
		c := cron.New()
		// telegram subscriber poll
		if err := telegram.Schedule(c, viper.GetString("telegram.poll_cron"), db, telegramConfig); err != nil {
			return err
		}
		c.Start()
		defer c.Stop()
	}

	log.Info("listening", "address", viper.GetString("listen"))
	return router.Run(viper.GetString("listen"))
}
