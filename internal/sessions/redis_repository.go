package sessions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps sessions as JSON values whose TTL matches the
// session's remaining lifetime, so revocation-by-expiry needs no sweeper.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository returns a Redis-backed session repository. An empty
// prefix defaults to "session:".
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) Save(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		// never store an already-expired session without a TTL
		ttl = time.Second
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+s.RefreshToken, b, ttl).Err()
}

func (r *RedisRepository) Find(ctx context.Context, refresh string) (*Session, error) {
	b, err := r.client.Get(ctx, r.prefix+refresh).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if !s.ExpiresAt.After(time.Now().UTC()) {
		_ = r.client.Del(ctx, r.prefix+refresh).Err()
		return nil, nil
	}
	return &s, nil
}

func (r *RedisRepository) Revoke(ctx context.Context, refresh string) error {
	return r.client.Del(ctx, r.prefix+refresh).Err()
}
