package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATS stores entries in a JetStream key-value bucket.
type NATS struct {
	conn *nats.Conn
	kv   jetstream.KeyValue
}

// OpenNATS connects to the server at url and creates the bucket
// if it doesn't exist yet.
func OpenNATS(ctx context.Context, url, bucket string) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("go-task-tracker"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "task tracker state",
		History:     1,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open bucket %q: %w", bucket, err)
	}

	return &NATS{conn: conn, kv: kv}, nil
}

func (s *NATS) Get(ctx context.Context, key string) (string, bool, error) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return string(entry.Value()), true, nil
}

func (s *NATS) Set(ctx context.Context, key, value string) error {
	_, err := s.kv.Put(ctx, key, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to put key %q: %w", key, err)
	}
	return nil
}

func (s *NATS) Delete(ctx context.Context, key string) error {
	err := s.kv.Delete(ctx, key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

func (s *NATS) Close() error {
	return s.conn.Drain()
}
