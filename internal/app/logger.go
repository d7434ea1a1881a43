package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/config"
)

const appName = "tasktracker"

var globalLogger zerolog.Logger

// InitDefaultLogger logs to stderr, leaving stdout to command output.
func InitDefaultLogger() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"

	globalLogger = zerolog.New(os.Stderr).
		With().
		Timestamp().
		Caller().
		Str("app", appName).
		Int("pid", os.Getpid()).
		Logger()

	globalLogger.Debug().Msg("initialized default logger")
}

// MustInitApplicationLogger applies the level and output of the
// configured env and tags every further entry with the env and
// storage driver.
func MustInitApplicationLogger() {
	cfg := config.Global()

	level, ok := envLogLevel(cfg.Env)
	if !ok {
		globalLogger.Error().
			Str("env", cfg.Env).
			Msg("unknown env")
		panic(fmt.Errorf("unknown env: %s", cfg.Env))
	}
	zerolog.SetGlobalLevel(level)

	w := io.Writer(os.Stderr)
	if cfg.Env == config.EnvLocal {
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = os.Stderr
		w = consoleWriter
	}

	globalLogger = globalLogger.Output(w).
		With().
		Str("env", cfg.Env).
		Str("storage_driver", cfg.Storage.Driver).
		Logger()

	globalLogger.Debug().
		Stringer("level", level).
		Msg("initialized application logger")
}

func envLogLevel(env string) (zerolog.Level, bool) {
	switch env {
	case config.EnvDev:
		return zerolog.DebugLevel, true
	case config.EnvProd:
		return zerolog.InfoLevel, true
	case config.EnvLocal:
		return zerolog.TraceLevel, true
	default:
		return zerolog.NoLevel, false
	}
}
