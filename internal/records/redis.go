package records

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/factreply/pkg/models"
)

const defaultRedisPrefix = "factreply"

// RedisStore keeps records in a hash keyed by source post id, with a list
// preserving insertion order
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to url (redis://...) and pings it
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client, prefix), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) recordsKey() string { return s.prefix + ":records" }
func (s *RedisStore) orderKey() string   { return s.prefix + ":order" }

func (s *RedisStore) GetAllRecords(ctx context.Context) ([]models.ReplyRecord, error) {
	ids, err := s.client.LRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	values, err := s.client.HMGet(ctx, s.recordsKey(), ids...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]models.ReplyRecord, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var rec models.ReplyRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", ids[i], err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// InsertRecord claims the source id with HSETNX so concurrent writers cannot
// both log the same post
func (s *RedisStore) InsertRecord(ctx context.Context, rec models.ReplyRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	created, err := s.client.HSetNX(ctx, s.recordsKey(), rec.SourcePostID, data).Result()
	if err != nil {
		return err
	}
	if !created {
		return ErrDuplicate
	}
	return s.client.RPush(ctx, s.orderKey(), rec.SourcePostID).Err()
}

func (s *RedisStore) HasSourcePost(ctx context.Context, sourcePostID string) (bool, error) {
	return s.client.HExists(ctx, s.recordsKey(), sourcePostID).Result()
}
