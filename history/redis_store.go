package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campusrag/campusrag/types"
)

const historyKeyPrefix = "history:"

// RedisStore keeps each user's turns in a Redis list, one JSON-encoded
// turn per element. Suited to multi-instance deployments where the
// file backend cannot be shared.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a history store over an existing Redis client.
func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		logger: logger.With(zap.String("component", "history_redis")),
	}
}

func (s *RedisStore) Append(ctx context.Context, userID string, turn Turn) error {
	if turn.AskedAt.IsZero() {
		turn.AskedAt = time.Now().UTC()
	}

	data, err := json.Marshal(turn)
	if err != nil {
		return types.NewError(types.ErrHistoryWriteFailure, "failed to encode turn").WithCause(err)
	}

	if err := s.client.RPush(ctx, historyKeyPrefix+userID, data).Err(); err != nil {
		return types.NewError(types.ErrHistoryWriteFailure, "failed to append turn").WithCause(err)
	}
	return nil
}

func (s *RedisStore) History(ctx context.Context, userID string) ([]Turn, error) {
	raw, err := s.client.LRange(ctx, historyKeyPrefix+userID, 0, -1).Result()
	if err != nil {
		return nil, types.NewError(types.ErrServiceUnavailable, "failed to read history").WithCause(err)
	}

	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var turn Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			s.logger.Warn("skipping undecodable history entry", zap.Error(err))
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, historyKeyPrefix+userID).Err(); err != nil {
		return types.NewError(types.ErrHistoryWriteFailure, "failed to clear history").WithCause(err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
