package misc

import (
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
)

var logger = newLogger(gin.DefaultWriter, slog.LevelInfo)

// InitLogger replaces the process logger. Debug mode logs everything.
func InitLogger(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = newLogger(w, level)
	slog.SetDefault(logger)
}

// Logger returns the process logger tagged with a component name
func Logger(component string) *slog.Logger {
	return logger.With("component", component)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !gin.IsDebugging(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" && a.Value.Kind() == slog.KindAny {
				if err, ok := a.Value.Any().(error); ok {
					return tint.Err(err)
				}
			}
			return a
		},
	}))
}
