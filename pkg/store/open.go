package store

import (
	"context"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/config"
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
)

// Open builds the backend selected by cfg and instruments it.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendFile, "":
		s, err = NewFileStore(cfg.Dir)
	case config.BackendRedis:
		s, err = NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
	case config.BackendMongo:
		s, err = NewMongoStore(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: collectionName(cfg.KeyPrefix),
		})
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	name := cfg.Backend
	if name == "" {
		name = config.BackendFile
	}
	return Instrument(name, s), nil
}

func collectionName(prefix string) string {
	if prefix == "" || prefix == "tsvisio" {
		return "pages"
	}
	return prefix + "_pages"
}
