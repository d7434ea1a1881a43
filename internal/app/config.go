package app

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/go-task-tracker/internal/config"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

func MustReadEnv() {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to read env")
		panic(err)
	}

	event := globalLogger.Info().
		Str("env", cfg.Env).
		Str("storage_driver", cfg.Storage.Driver).
		Str("http_addr", cfg.HTTP.Host+":"+cfg.HTTP.Port).
		Str("jwt_issuer", cfg.JWT.Issuer).
		Dur("access_token_ttl", cfg.JWT.AccessTokenTTL)
	switch cfg.Storage.Driver {
	case storage.DriverPostgres:
		event = event.Str("postgres_host", cfg.Storage.Postgres.Host)
	case storage.DriverRedis:
		event = event.Str("redis_addr", cfg.Storage.Redis.Addr)
	case storage.DriverSQLite:
		event = event.Str("sqlite_path", cfg.Storage.SQLite.Path)
	case storage.DriverNATS:
		event = event.Str("nats_url", cfg.Storage.NATS.URL)
	}
	event.Msg("read env")

	config.SetGlobal(cfg)
}
