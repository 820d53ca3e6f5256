package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"scms_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

// RedisSnapshotStore 全部投诉以 JSON 保存在一个 key 中
type RedisSnapshotStore struct {
	Redis *redis.Client
	Key   string
}

func NewRedisSnapshotStore(rdb *redis.Client, key string) *RedisSnapshotStore {
	return &RedisSnapshotStore{Redis: rdb, Key: key}
}

func (s *RedisSnapshotStore) Save(ctx context.Context, complaints []model.Complaint) error {
	if complaints == nil {
		complaints = []model.Complaint{}
	}
	data, err := json.Marshal(complaints)
	if err != nil {
		return fmt.Errorf("encode complaints: %w", err)
	}
	return s.Redis.Set(ctx, s.Key, data, 0).Err()
}

func (s *RedisSnapshotStore) Load(ctx context.Context) ([]model.Complaint, error) {
	data, err := s.Redis.Get(ctx, s.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var complaints []model.Complaint
	if err := json.Unmarshal(data, &complaints); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Key, err)
	}
	return complaints, nil
}
