package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"smart-signal-sentry/pkg/types"
)

// 状态在Redis中的键
const redisStateKey = "sentry:signal_state"

// RedisStateStore Redis状态存储（多机部署时替代本地文件）
type RedisStateStore struct {
	client *redis.Client
}

// NewRedisStateStore 创建Redis状态存储，连接测试失败返回错误由调用方降级
func NewRedisStateStore(cfg types.RedisConfig) (*RedisStateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, &types.StateIOError{Op: "load", Err: err}
	}

	zap.L().Info("✅ Redis连接成功", zap.String("addr", cfg.URL))
	return &RedisStateStore{client: client}, nil
}

// Load 读取状态，键不存在或内容损坏时退回空状态
func (rs *RedisStateStore) Load() (*types.State, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := rs.client.Get(ctx, redisStateKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return types.NewState(), nil
		}
		zap.L().Warn("⚠️ Redis状态读取失败，退回空状态", zap.Error(err))
		return types.NewState(), &types.StateIOError{Op: "load", Err: err}
	}

	var state types.State
	if err := json.Unmarshal(data, &state); err != nil {
		zap.L().Warn("⚠️ Redis状态内容损坏，退回空状态", zap.Error(err))
		return types.NewState(), &types.StateIOError{Op: "load", Err: err}
	}

	state.Normalize()
	return &state, nil
}

// Save 整个状态序列化为单个JSON值写入
func (rs *RedisStateStore) Save(state *types.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return &types.StateIOError{Op: "save", Err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rs.client.Set(ctx, redisStateKey, data, 0).Err(); err != nil {
		return &types.StateIOError{Op: "save", Err: err}
	}

	return nil
}

// Close 关闭Redis连接
func (rs *RedisStateStore) Close() error {
	return rs.client.Close()
}
