package main

import (
	"fmt"

	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// tables are named like WordPress plugin tables, e.g. wp_telegram_notifier_subscribers
func openDatabase() (*gorm.DB, error) {
	var dialector gorm.Dialector
	dsn := viper.GetString("database.dsn")
	switch driver := viper.GetString("database.driver"); driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: viper.GetString("database.prefix") + "telegram_notifier_",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fail to connect to DB: %w", err)
	}
	debugPrint("Database connected")
	if viper.GetBool("debug") {
		db = db.Debug()
	}
	return db, nil
}
