package job

import (
	"Touchstone/internal/api/dto"
	"context"
)

// Task 一个可被调度或手动触发的批处理，limit<=0 时使用配置的上限
type Task interface {
	Name() string
	Execute(ctx context.Context, limit int) (*dto.BatchResultDTO, error)
}

func capOf(limit, def int) int {
	if limit > 0 {
		return limit
	}
	return def
}
