// Package storage provides the local key-value store that holds all
// persisted application state. Every backend stores opaque text values
// under string keys and reports absent keys without an error.
package storage

import "context"

type Storage interface {
	// Get returns the value stored under key. The boolean is false
	// when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverNATS     = "nats"
)

var (
	_ Storage = (*Memory)(nil)
	_ Storage = (*Postgres)(nil)
	_ Storage = (*Redis)(nil)
	_ Storage = (*SQLite)(nil)
	_ Storage = (*NATS)(nil)
)
