package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists the session as a JSON blob under
// storefront:session:<profile>. A JWT with an exp claim sets the key's TTL,
// so Redis drops the record when the token dies.
type RedisStore struct {
	client *redis.Client
	key    string
	owned  bool
	now    func() time.Time
}

// NewRedisStore wraps an existing client. Close does not close it.
func NewRedisStore(client *redis.Client, profile string) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{
		client: client,
		key:    redisKey(profile),
		now:    time.Now,
	}
}

// OpenRedis connects to url (redis://...) and owns the connection.
func OpenRedis(url, profile string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	s := NewRedisStore(redis.NewClient(opts), profile)
	s.owned = true
	return s, nil
}

func (r *RedisStore) Load(ctx context.Context) (Record, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNoSession
	}
	if err != nil {
		return Record{}, fmt.Errorf("redis get failed: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// Surface as a record with unparsable user so restore clears it.
		return Record{User: data}, nil
	}
	return rec, nil
}

func (r *RedisStore) Save(ctx context.Context, rec Record) error {
	var ttl time.Duration
	if exp, ok := tokenExpiry(rec.Token); ok {
		ttl = exp.Sub(r.now())
		if ttl <= 0 {
			return r.Clear(ctx)
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if r.owned {
		return r.client.Close()
	}
	return nil
}

func redisKey(profile string) string {
	return fmt.Sprintf("storefront:session:%s", profile)
}
