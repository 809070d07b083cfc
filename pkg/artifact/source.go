package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-redis/redis/v8"
)

const (
	fileScheme  = "file://"
	redisScheme = "redis://"
)

// Source fetches the raw bytes currently published at a location.
// Implementations return ErrNotFound when nothing is published.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Location() string
}

// NewSource resolves a configured location. redis:// locations need a client.
func NewSource(location string, client *redis.Client) (Source, error) {
	switch {
	case strings.HasPrefix(location, redisScheme):
		key := strings.TrimPrefix(location, redisScheme)
		if key == "" {
			return nil, fmt.Errorf("redis location %q has no key", location)
		}
		if client == nil {
			return nil, fmt.Errorf("redis location %q configured but redis is not available", location)
		}
		return NewRedisSource(client, key), nil
	case strings.HasPrefix(location, fileScheme):
		return NewFileSource(strings.TrimPrefix(location, fileScheme)), nil
	case strings.Contains(location, "://"):
		return nil, fmt.Errorf("unsupported artifact location %q", location)
	default:
		return NewFileSource(location), nil
	}
}

// FileSource reads an artifact from a shared volume
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Location() string {
	return s.path
}

// Fetch reads the whole file in one pass. Completeness is checked by Decode.
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := os.ReadFile(s.path)
		done <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if errors.Is(r.err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return r.data, r.err
	}
}

// RedisSource reads an artifact stored under a single key. SET replaces the value
// atomically, so a reader never observes a partially written artifact.
type RedisSource struct {
	client *redis.Client
	key    string
}

func NewRedisSource(client *redis.Client, key string) *RedisSource {
	return &RedisSource{client: client, key: key}
}

func (s *RedisSource) Location() string {
	return redisScheme + s.key
}

func (s *RedisSource) Fetch(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

// Publish stores a bundle under the source key
func (s *RedisSource) Publish(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key, data, 0).Err()
}

func compactJSON(raw json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("invalid model json: %w", err)
	}
	return buf.Bytes(), nil
}
