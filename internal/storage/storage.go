package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"smart-signal-sentry/pkg/types"
)

// StateStore 持久化状态存储
// 加载失败一律退回空默认状态，不阻断运行
type StateStore interface {
	Load() (*types.State, error)
	Save(state *types.State) error
}

// FileStateStore JSON文件状态存储（默认后端）
type FileStateStore struct {
	path string
}

// NewFileStateStore 创建文件状态存储
func NewFileStateStore(path string) *FileStateStore {
	return &FileStateStore{path: path}
}

// Load 读取状态文件
// 文件缺失返回空默认状态；文件损坏返回空默认状态并告警，不视为致命
func (fs *FileStateStore) Load() (*types.State, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			zap.L().Info("🔧 状态文件不存在，使用空状态", zap.String("path", fs.path))
			return types.NewState(), nil
		}
		zap.L().Warn("⚠️ 状态文件读取失败，退回空状态",
			zap.String("path", fs.path),
			zap.Error(err))
		return types.NewState(), &types.StateIOError{Op: "load", Err: err}
	}

	var state types.State
	if err := json.Unmarshal(data, &state); err != nil {
		zap.L().Warn("⚠️ 状态文件损坏，退回空状态",
			zap.String("path", fs.path),
			zap.Error(err))
		return types.NewState(), &types.StateIOError{Op: "load", Err: err}
	}

	state.Normalize()
	return &state, nil
}

// Save 写入状态文件：先写临时文件再rename，避免中途失败留下半截文件
func (fs *FileStateStore) Save(state *types.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return &types.StateIOError{Op: "save", Err: err}
	}

	tmp := fs.path + ".tmp"
	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &types.StateIOError{Op: "save", Err: err}
		}
	}

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &types.StateIOError{Op: "save", Err: err}
	}

	if err := os.Rename(tmp, fs.path); err != nil {
		return &types.StateIOError{Op: "save", Err: err}
	}

	return nil
}
