package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key used when the URI has no key parameter.
const DefaultRedisKey = "pluginrelease:registry"

// RedisStore keeps the snapshot under a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to the server named by uri
// (redis://[user:pass@]host:port/db?key=name). The key parameter is
// removed before the remaining options are handed to the client.
func NewRedisStore(uri string) (*RedisStore, error) {
	opts, key, err := parseRedisURI(uri)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: redis.NewClient(opts), key: key}, nil
}

func parseRedisURI(uri string) (*redis.Options, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, "", fmt.Errorf("parse redis uri: %w", err)
	}
	q := u.Query()
	key := q.Get("key")
	if key == "" {
		key = DefaultRedisKey
	}
	q.Del("key")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, "", fmt.Errorf("parse redis uri: %w", err)
	}
	return opts, key, nil
}

// Load implements Source.
func (s *RedisStore) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return data, true, nil
}

// Save implements Sink.
func (s *RedisStore) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Close closes the client connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Key returns the Redis key holding the snapshot.
func (s *RedisStore) Key() string { return s.key }

var _ Store = (*RedisStore)(nil)
