package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/adanyl0v/go-task-tracker/internal/config"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

var globalStorage storage.Storage

func MustOpenStorage() {
	cfg := config.Global().Storage
	switch cfg.Driver {
	case storage.DriverMemory:
		globalStorage = storage.NewMemory()
	case storage.DriverPostgres:
		globalStorage = mustConnectPostgres(cfg.Postgres)
	case storage.DriverRedis:
		globalStorage = mustConnectRedis(cfg.Redis)
	case storage.DriverSQLite:
		globalStorage = mustOpenSQLite(cfg.SQLite)
	case storage.DriverNATS:
		globalStorage = mustConnectNATS(cfg.NATS)
	default:
		err := fmt.Errorf("unknown storage driver: %s", cfg.Driver)
		globalLogger.Error().
			Err(err).
			Msg("failed to open storage")
		panic(err)
	}
	globalLogger.Debug().
		Str("driver", cfg.Driver).
		Msg("opened storage")
}

func CloseStorage() {
	if globalStorage == nil {
		return
	}

	err := globalStorage.Close()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to close storage")
		return
	}
	globalLogger.Debug().Msg("closed storage")
}

func mustConnectPostgres(cfg config.PostgresConfig) storage.Storage {
	connURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host,
		cfg.Port, cfg.Database, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = pool.Ping(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping postgres")
		pool.Close()
		panic(err)
	}

	store := storage.NewPostgres(pool)
	err = store.EnsureTable(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to prepare postgres table")
		pool.Close()
		panic(err)
	}

	globalLogger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to postgres")
	return store
}

func mustConnectRedis(cfg config.RedisConfig) storage.Storage {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err := client.Ping(ctx).Err()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("addr", cfg.Addr).
			Msg("failed to ping redis")
		closeErr := client.Close()
		if closeErr != nil {
			globalLogger.Error().
				Err(closeErr).
				Msg("failed to close redis client")
		}
		panic(err)
	}

	globalLogger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to redis")
	return storage.NewRedis(client, cfg.Prefix)
}

func mustOpenSQLite(cfg config.SQLiteConfig) storage.Storage {
	store, err := storage.OpenSQLite(cfg.Path)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("path", cfg.Path).
			Msg("failed to open sqlite database")
		panic(err)
	}

	globalLogger.Debug().
		Str("path", cfg.Path).
		Msg("opened sqlite database")
	return store
}

func mustConnectNATS(cfg config.NATSConfig) storage.Storage {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	store, err := storage.OpenNATS(ctx, cfg.URL, cfg.Bucket)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("url", cfg.URL).
			Msg("failed to open nats bucket")
		panic(err)
	}

	globalLogger.Info().
		Str("url", cfg.URL).
		Str("bucket", cfg.Bucket).
		Msg("connected to nats")
	return store
}
