package storage

import (
	"context"
	"fmt"

	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
	"github.com/pharmarun/pharmacy-delivery/internal/pkg/config"
)

// New builds the backend named by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (ports.StorageBackend, error) {
	switch cfg.StorageBackend {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(cfg.FileDir)
	case "redis":
		return ConnectRedis(ctx, RedisConfig{
			Addr:      cfg.Redis.Addr,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
	case "mongo":
		return ConnectMongo(ctx, MongoConfig{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.StorageBackend)
	}
}
