package history

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campusrag/campusrag/config"
)

// NewFromConfig selects a history backend. The Redis backend requires a
// non-nil client; callers wire the shared client in.
func NewFromConfig(cfg config.HistoryConfig, redisClient *redis.Client, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "file", "":
		return NewFileStore(cfg.Path, logger), nil
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("history backend %q requires a redis client", cfg.Backend)
		}
		return NewRedisStore(redisClient, logger), nil
	case "sqlite":
		return NewSQLStore(cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("unknown history backend: %s", cfg.Backend)
	}
}
