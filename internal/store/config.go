package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrConfigNotFound 配置项不存在
var ErrConfigNotFound = errors.New("config key not found")

// 配置项
const configLastRunID = "last_run_id"

// GetConfig 获取配置项
func (s *Store) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM config WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrConfigNotFound, key)
	}
	return value, err
}

// SetConfig 设置配置项
func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// LastRunID 最近一次记录的运行；没有记录时返回空串
func (s *Store) LastRunID(ctx context.Context) (string, error) {
	id, err := s.GetConfig(ctx, configLastRunID)
	if errors.Is(err, ErrConfigNotFound) {
		return "", nil
	}
	return id, err
}
