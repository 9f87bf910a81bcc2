// Package runs keeps summaries of finished pipeline runs.
package runs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	errx "github.com/ia-assistant/server/internal/core/error"
	"github.com/ia-assistant/server/internal/pipeline/model"
	logx "github.com/ia-assistant/server/pkg/logger"
)

const (
	recentKey = "runs:recent"
	// MaxRecent bounds the recent-runs index.
	MaxRecent = 50
)

type RedisRunRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisRunRepository(rdb redis.Cmdable, ttl time.Duration) *RedisRunRepository {
	return &RedisRunRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisRunRepository) runKey(id uuid.UUID) string {
	return fmt.Sprintf("run:%s", id)
}

func (r *RedisRunRepository) Save(ctx context.Context, record model.RunRecord) error {
	b, err := json.Marshal(record)
	if err != nil {
		logx.Error().Err(err).Str("run_id", record.ID.String()).Msg("failed to marshal run record")
		return fmt.Errorf("marshal run record: %w", err)
	}
	key := r.runKey(record.ID)

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, key, b, r.ttl)
	pipe.LRem(ctx, recentKey, 0, record.ID.String())
	pipe.LPush(ctx, recentKey, record.ID.String())
	pipe.LTrim(ctx, recentKey, 0, MaxRecent-1)
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save run record to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisRunRepository) Find(ctx context.Context, id uuid.UUID) (*model.RunRecord, error) {
	key := r.runKey(id)

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logx.Error().Err(err).Str("key", key).Msg("failed to load run record from redis")
		}
		return nil, errx.WrapRedis(err)
	}

	var rec model.RunRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal run record")
		return nil, fmt.Errorf("unmarshal run record: %w", err)
	}
	return &rec, nil
}

func (r *RedisRunRepository) Recent(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}

	ids, err := r.rdb.LRange(ctx, recentKey, 0, int64(limit-1)).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", recentKey).Msg("failed to read recent runs index")
		return nil, errx.WrapRedis(err)
	}
	if len(ids) == 0 {
		return []model.RunRecord{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, "run:"+id)
	}
	rows, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		logx.Error().Err(err).Msg("failed to load recent runs from redis")
		return nil, errx.WrapRedis(err)
	}

	out := make([]model.RunRecord, 0, len(rows))
	for i, row := range rows {
		s, ok := row.(string)
		if !ok {
			// expired, the index entry outlived its record
			continue
		}
		var rec model.RunRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			logx.Warn().Err(err).Str("key", keys[i]).Msg("skipping unreadable run record")
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

var _ model.RunRepository = (*RedisRunRepository)(nil)
