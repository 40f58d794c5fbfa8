package repository

import (
	"Touchstone/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// 计入违规次数的动作
var violationActions = []string{string(model.RuleActionReject), model.LogActionManualReject}

type ModerationLogRepo interface {
	CreateLog(ctx context.Context, entry *model.ModerationLog) error
	CountViolationsSince(ctx context.Context, userID uint64, since time.Time) (int64, error)
	CountByActionSince(ctx context.Context, since time.Time) (map[string]int64, error)
	ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.ModerationLog, error)
}

type moderationLogRepoImpl struct {
	db *gorm.DB
}

func NewModerationLogRepo(db *gorm.DB) ModerationLogRepo {
	return &moderationLogRepoImpl{db: db}
}

func (r *moderationLogRepoImpl) CreateLog(ctx context.Context, entry *model.ModerationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CountViolationsSince 窗口内被拒绝的次数
func (r *moderationLogRepoImpl) CountViolationsSince(ctx context.Context, userID uint64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ModerationLog{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Where("action IN ?", violationActions).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *moderationLogRepoImpl) CountByActionSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	var rows []struct {
		Action string
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.ModerationLog{}).
		Select("action, COUNT(*) AS total").
		Where("created_at >= ?", since).
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Action] = row.Total
	}
	return out, nil
}

func (r *moderationLogRepoImpl) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.ModerationLog, error) {
	logs := make([]*model.ModerationLog, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
