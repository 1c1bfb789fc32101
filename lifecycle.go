package main

import (
	"github.com/spf13/cobra"

	"telegram-notifier/internal/model"
)

// install and uninstall stand in for plugin activation and deactivation

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Create the subscriber, form and option tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		if err := model.CreateTables(db); err != nil {
			return err
		}
		cmd.Println("Tables created")
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Drop all tables and stored options",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		if err := model.DropTables(db); err != nil {
			return err
		}
		cmd.Println("Tables dropped")
		return nil
	},
}
