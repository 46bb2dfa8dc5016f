package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/go_restaurant/internal/config"
	"github.com/fjod/go_restaurant/internal/storage"
	"github.com/redis/go-redis/v9"
)

const janitorInterval = time.Hour

// openStorage connects the configured cart snapshot backend. The returned
// close func releases it.
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, func(), error) {
	switch cfg.StorageBackend {
	case "memory":
		log.Warn("using in-memory cart storage, carts will not survive a restart")
		return storage.NewMemoryStorage(), func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("connected to redis", "addr", cfg.RedisAddr)
		return storage.NewRedisStorage(client, cfg.CartTTL), func() { client.Close() }, nil

	case "mongo":
		st, err := storage.OpenMongoStorage(ctx, cfg.MongoURI, cfg.MongoDBName, cfg.CartTTL)
		if err != nil {
			return nil, nil, err
		}
		if err := st.CreateIndexes(ctx); err != nil {
			log.Warn("failed to create snapshot indexes", "error", err)
		}
		log.Info("connected to mongodb", "db", cfg.MongoDBName)
		return st, func() { _ = st.Close(context.Background()) }, nil

	case "sqlite":
		st, err := storage.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		janitorCtx, stop := context.WithCancel(context.Background())
		if cfg.CartTTL > 0 {
			go st.RunJanitor(janitorCtx, janitorInterval, cfg.CartTTL, log)
		}
		log.Info("opened sqlite storage", "path", cfg.SQLitePath)
		return st, func() {
			stop()
			if err := st.Close(); err != nil {
				log.Error("failed to close sqlite storage", "error", err)
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
