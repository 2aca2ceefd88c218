package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps every path as one string key below a key prefix.
type RedisStorage struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStorage connects to a redis:// URL. Keys are written as
// "<prefix>:<path>".
func NewRedisStorage(ctx context.Context, redisURL, prefix string) (*RedisStorage, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	if prefix == "" {
		prefix = "taskboard"
	}
	return &RedisStorage{rdb: rdb, prefix: prefix + ":"}, nil
}

func (s *RedisStorage) Close() error {
	return s.rdb.Close()
}

func (s *RedisStorage) key(p string) (string, error) {
	c, err := CleanPath(p)
	if err != nil {
		return "", fmt.Errorf("%q: %w", p, err)
	}
	return s.prefix + c, nil
}

func (s *RedisStorage) Read(ctx context.Context, p string) ([]byte, error) {
	key, err := s.key(p)
	if err != nil {
		return nil, err
	}
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

func (s *RedisStorage) Write(ctx context.Context, p string, data []byte) error {
	key, err := s.key(p)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

func (s *RedisStorage) Delete(ctx context.Context, p string) error {
	key, err := s.key(p)
	if err != nil {
		return err
	}
	n, err := s.rdb.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", p, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func (s *RedisStorage) List(ctx context.Context, prefix string) ([]string, error) {
	c, err := cleanPrefix(prefix)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", prefix, err)
	}
	match := globEscaper.Replace(s.prefix)
	if c != "" {
		match += globEscaper.Replace(c) + "/"
	}
	match += "*"

	var paths []string
	iter := s.rdb.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		p := strings.TrimPrefix(iter.Val(), s.prefix)
		if isDirectChild(c, p) {
			paths = append(paths, p)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *RedisStorage) Exists(ctx context.Context, p string) (bool, error) {
	key, err := s.key(p)
	if err != nil {
		return false, err
	}
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	return n > 0, nil
}
