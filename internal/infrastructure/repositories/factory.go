package repositories

import (
	"context"

	"livecast/internal/core/ports"
	"livecast/internal/infrastructure/repositories/memory"
	redisrepo "livecast/internal/infrastructure/repositories/redis"
	"livecast/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories with fallback support
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		logger:   logger,
	}

	// Try to connect to Redis if enabled
	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

// CreateConnectionRegistry creates a connection registry (Redis or memory with fallback)
func (f *RepositoryFactory) CreateConnectionRegistry() ports.ConnectionRegistry {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisConnectionRegistry(f.redisClient)
	}
	return memory.NewMemoryConnectionRegistry()
}

// CreateRoomDirectory creates a room directory (Redis or memory with fallback)
func (f *RepositoryFactory) CreateRoomDirectory() ports.RoomDirectory {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisRoomDirectory(f.redisClient)
	}
	return memory.NewMemoryRoomDirectory()
}

// Close closes Redis connection if used
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck checks Redis connection health
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
