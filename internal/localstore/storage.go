// Package localstore holds a single user's forms and collected responses in
// memory, mirrored to a durable key-value store on every mutation. It backs
// the offline authoring and response-collection flows; the networked API in
// internal/forms and internal/responses plays the same role for the shared,
// multi-user deployment.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// Record names for the two durable collections.
const (
	RecordForms     = "forms"
	RecordResponses = "responses"
)

// Storage is a durable key-value store of named records, each holding one
// fully serialized collection. Read returns (nil, nil) when the record does
// not exist yet.
type Storage interface {
	Read(ctx context.Context, record string) ([]byte, error)
	Write(ctx context.Context, record string, data []byte) error
}

// FileStorage keeps each record as a JSON file under a directory.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the directory if needed and returns a file-backed storage.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

// Read returns the record contents, or (nil, nil) if the file does not exist.
func (f *FileStorage) Read(_ context.Context, record string) ([]byte, error) {
	data, err := os.ReadFile(f.path(record))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read record %s: %w", record, err)
	}
	return data, nil
}

// Write replaces the record contents in full.
func (f *FileStorage) Write(_ context.Context, record string, data []byte) error {
	if err := os.WriteFile(f.path(record), data, 0o644); err != nil {
		return fmt.Errorf("write record %s: %w", record, err)
	}
	return nil
}

func (f *FileStorage) path(record string) string {
	return filepath.Join(f.dir, record+".json")
}

// RedisStorage keeps each record under a prefixed Redis key with no expiry.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage returns a Redis-backed storage. Keys are "<prefix>:<record>".
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = "localstore"
	}
	return &RedisStorage{client: client, prefix: prefix}
}

// Read returns the record contents, or (nil, nil) if the key does not exist.
func (r *RedisStorage) Read(ctx context.Context, record string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(record)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read record %s: %w", record, err)
	}
	return data, nil
}

// Write replaces the record contents in full.
func (r *RedisStorage) Write(ctx context.Context, record string, data []byte) error {
	if err := r.client.Set(ctx, r.key(record), data, 0).Err(); err != nil {
		return fmt.Errorf("write record %s: %w", record, err)
	}
	return nil
}

func (r *RedisStorage) key(record string) string {
	return r.prefix + ":" + record
}
