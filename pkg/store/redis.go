package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/gridboard/pkg/cache"
	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// Redis key layout.
const (
	redisKeyPrefix = "gridboard:layout:"
	redisIndexKey  = "gridboard:layouts"
)

// RedisConfig holds connection settings for NewRedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps each layout as a JSON string and indexes ids in a sorted
// set scored by update time, which gives List its order.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis and verifies the connection with PING,
// retrying transient failures.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	err := cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		client.Close()
		return nil, gberr.Wrap(gberr.ErrCodeNetwork, err, "connect redis %s", cfg.Addr)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client. The store closes it on
// Close.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(id string) string { return redisKeyPrefix + id }

// Get reads and decodes the layout stored under id.
func (s *RedisStore) Get(ctx context.Context, id string) (*layout.Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "get layout %s", id)
	}
	return layout.Unmarshal(data)
}

// List reads every indexed layout in one MGET, newest first. Index entries
// whose value is gone or undecodable are skipped.
func (s *RedisStore) List(ctx context.Context) ([]*layout.Record, error) {
	ids, err := s.client.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "list layouts")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "list layouts")
	}

	recs := make([]*layout.Record, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			// Index entry whose value expired or was deleted out of band.
			continue
		}
		rec, err := layout.Unmarshal([]byte(str))
		if err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	sortRecords(recs)
	return recs, nil
}

// Save writes the record and its index entry in one transaction.
func (s *RedisStore) Save(ctx context.Context, rec *layout.Record) error {
	if err := prepare(rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return gberr.Wrap(gberr.ErrCodeInvalidFormat, err, "encode layout %s", rec.ID)
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, redisKey(rec.ID), data, 0)
		p.ZAdd(ctx, redisIndexKey, redis.Z{
			Score:  float64(rec.UpdatedAt.UnixMilli()),
			Member: rec.ID,
		})
		return nil
	})
	if err != nil {
		return gberr.Wrap(gberr.ErrCodeStorage, err, "save layout %s", rec.ID)
	}
	return nil
}

// Delete removes the record and its index entry.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, redisKey(id))
		p.ZRem(ctx, redisIndexKey, id)
		return nil
	})
	if err != nil {
		return gberr.Wrap(gberr.ErrCodeStorage, err, "delete layout %s", id)
	}
	return nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
