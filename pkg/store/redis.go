package store

import (
	"context"
	"errors"
	"slices"

	"github.com/redis/go-redis/v9"

	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
)

// RedisStore stores pages as JSON strings in Redis.
//
// Keys:
//
//	<prefix>:page:<id>   JSON document
//	<prefix>:pages       set of stored page ids
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisConfig holds connection settings for NewRedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects to Redis and verifies the connection with a PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errs.Wrap(errs.ErrCodeStore, err, "connect to redis at %s", cfg.Addr)
	}
	return NewRedisStoreFromClient(client, cfg.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client. An empty prefix means "tsvisio".
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "tsvisio"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) pageKey(pageID string) string { return s.prefix + ":page:" + pageID }
func (s *RedisStore) indexKey() string             { return s.prefix + ":pages" }

func (s *RedisStore) Load(ctx context.Context, pageID string) (*Document, error) {
	if err := errs.ValidatePageID(pageID); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.pageKey(pageID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(pageID)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStore, err, "redis get %s", pageID)
	}
	return Unmarshal(data)
}

// Save writes the document and its index entry in one MULTI/EXEC transaction.
func (s *RedisStore) Save(ctx context.Context, doc *Document) error {
	if err := errs.ValidatePageID(doc.PageID); err != nil {
		return err
	}
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.pageKey(doc.PageID), data, 0)
		pipe.SAdd(ctx, s.indexKey(), doc.PageID)
		return nil
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeStore, err, "redis save %s", doc.PageID)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, pageID string) error {
	if err := errs.ValidatePageID(pageID); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.pageKey(pageID))
		pipe.SRem(ctx, s.indexKey(), pageID)
		return nil
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeStore, err, "redis delete %s", pageID)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStore, err, "redis list pages")
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
