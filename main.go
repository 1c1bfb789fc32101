package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	// timezone database for hosts without zoneinfo
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"telegram-notifier/internal/misc"
)

var (
	startTime  time.Time
	configFile string
)

var rootCmd = &cobra.Command{
	Use:           "telegram-notifier",
	Short:         "Push form submissions to a Telegram mailing list",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func main() {
	startTime = time.Now()
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default telegram-notifier.yaml in ., $HOME or /etc)")
	rootCmd.AddCommand(serveCmd, installCmd, uninstallCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func initConfig() error {
	setDefaults()
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("telegram-notifier.yaml")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath("/etc")
	}
	viper.SetEnvPrefix("TELEGRAM_NOTIFIER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		// environment variables alone are enough when no file is given
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	}

	// set debug mode for gin
	if viper.GetBool("debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	misc.InitLogger(gin.DefaultWriter, viper.GetBool("debug"))
	return nil
}

func setDefaults() {
	viper.SetDefault("debug", false)
	viper.SetDefault("listen", ":8080")
	viper.SetDefault("database.driver", "mysql")
	viper.SetDefault("database.prefix", "wp_")
	viper.SetDefault("timezone", "Europe/Moscow")
	viper.SetDefault("formbuilder.enabled", true)
	viper.SetDefault("telegram.timeout", 10*time.Second)
	viper.SetDefault("telegram.poll_cron", "")
}

// this function prints a line of debug information to the default IO writer
// debugging status and DefaultWriter are inherited from gin
func debugPrint(format string, values ...interface{}) {
	if gin.IsDebugging() {
		if !strings.HasSuffix(format, "\n") {
			format += "\n"
		}
		fmt.Fprintf(gin.DefaultWriter, "[Telegram Notifier] "+format, values...)
	}
}
