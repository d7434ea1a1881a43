package app

import (
	"context"

	"github.com/adanyl0v/go-task-tracker/internal/config"
	"github.com/adanyl0v/go-task-tracker/internal/notify"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

const notificationFeedSize = 50

var (
	globalNotificationFeed *notify.Feed
	globalTaskService      services.TaskService
	globalSessionService   services.SessionService
	globalTokenService     services.TokenService
)

// MustInitServices wires the services over the opened storage and
// restores the session left by a previous run, if any.
func MustInitServices() {
	jwtCfg := config.Global().JWT

	globalNotificationFeed = notify.NewFeed(notificationFeedSize)
	notifier := notify.Multi{
		notify.NewLogSink(globalLogger.With().Str("component", "notify").Logger()),
		globalNotificationFeed,
	}

	globalTaskService = services.NewTaskService(globalLogger, globalStorage, notifier)
	globalSessionService = services.NewSessionService(globalLogger, globalStorage, globalTaskService)
	globalTokenService = services.NewTokenService(
		jwtCfg.Issuer,
		[]byte(jwtCfg.SigningKey),
		jwtCfg.AccessTokenTTL,
	)

	user, err := globalSessionService.Restore(context.Background())
	if err != nil {
		globalLogger.Warn().
			Err(err).
			Msg("failed to restore session, starting logged out")
		return
	}
	if user != nil {
		globalLogger.Debug().
			Str("user_id", user.ID).
			Msg("restored session")
	}
}
