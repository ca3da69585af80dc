package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

var Logger zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter configures the global logger from LOG_LEVEL, LOG_FORMAT
// (json|console), LOG_TIME_FORMAT, LOG_COLOR and LOG_CALLER.
func InitWithWriter(w io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(envOr("LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var base zerolog.Logger
	if strings.EqualFold(envOr("LOG_FORMAT", "json"), "console") {
		cw := zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: envOr("LOG_TIME_FORMAT", time.RFC3339),
			NoColor:    strings.TrimSpace(os.Getenv("LOG_COLOR")) == "0",
		}
		base = zerolog.New(cw)
	} else {
		base = zerolog.New(w)
	}

	l := base.With().Timestamp().Str("service", envOr("SERVICE_NAME", "orderflow")).Logger().Level(level)
	if strings.TrimSpace(os.Getenv("LOG_CALLER")) == "1" {
		l = l.With().Caller().Logger()
	}

	Logger = l
	zlog.Logger = Logger
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
