package presence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists presence entries.
type Store interface {
	Put(ctx context.Context, docID string, e Entry) error
	Delete(ctx context.Context, docID, uid string) error
	List(ctx context.Context, docID string) ([]Entry, error)
	// Clear removes every entry for a document, used on document delete.
	Clear(ctx context.Context, docID string) error
}

// RedisStore keeps entries as JSON under "presence:<doc>:<uid>" with a TTL a
// bit above the staleness bound, so crashed clients age out on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, stale time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: 2 * stale}
}

func key(docID, uid string) string {
	return "presence:" + docID + ":" + uid
}

func (r *RedisStore) Put(ctx context.Context, docID string, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key(docID, e.UID), b, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, docID, uid string) error {
	return r.client.Del(ctx, key(docID, uid)).Err()
}

func (r *RedisStore) List(ctx context.Context, docID string) ([]Entry, error) {
	keys, err := r.scan(ctx, docID)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		b, err := r.client.Get(ctx, k).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue // expired between scan and get
			}
			return nil, err
		}
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			continue // skip corrupt entries
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *RedisStore) Clear(ctx context.Context, docID string) error {
	keys, err := r.scan(ctx, docID)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisStore) scan(ctx context.Context, docID string) ([]string, error) {
	var keys []string
	var cursor uint64
	pattern := "presence:" + docID + ":*"
	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
