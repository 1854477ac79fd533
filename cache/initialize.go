package cache

import (
	"todo-service/config"

	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitializeCache builds the session backend; "redis" talks to a Redis server, "memory" keeps
// sessions in process
func InitializeCache(cfg config.CacheConfig) (cache.Cache, error) {
	c, err := cache.New(cache.Config{
		Type:          cfg.Type,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Error("Failed to initialize cache", zap.String("type", cfg.Type), zap.Error(err))
		return nil, err
	}
	logger.Info("Cache initialized", zap.String("type", cfg.Type))
	return c, nil
}
