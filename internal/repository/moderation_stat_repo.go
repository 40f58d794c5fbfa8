package repository

import (
	"Touchstone/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatDelta 一次审核对用户统计的增量
type StatDelta struct {
	UserID      uint64
	Total       int64
	Moderated   int64
	Rejected    int64
	Flagged     int64
	Score       float64
	ViolationAt *time.Time
}

// IsZero 没有任何需要写入的变化
func (d StatDelta) IsZero() bool {
	return d.Total == 0 && d.Moderated == 0 && d.Rejected == 0 && d.Flagged == 0 && d.Score == 0 && d.ViolationAt == nil
}

type ModerationStatRepo interface {
	ApplyDelta(ctx context.Context, delta StatDelta) error
	GetStat(ctx context.Context, userID uint64) (*model.UserModerationStat, error)
	TopViolators(ctx context.Context, limit int) ([]*model.UserModerationStat, error)
}

type moderationStatRepoImpl struct {
	db *gorm.DB
}

func NewModerationStatRepo(db *gorm.DB) ModerationStatRepo {
	return &moderationStatRepoImpl{db: db}
}

func (r *moderationStatRepoImpl) ApplyDelta(ctx context.Context, delta StatDelta) error {
	return applyStatDelta(r.db.WithContext(ctx), delta)
}

// applyStatDelta 累加式 upsert，首次出现的用户直接插入增量
func applyStatDelta(db *gorm.DB, d StatDelta) error {
	if d.IsZero() {
		return nil
	}
	now := time.Now()
	row := &model.UserModerationStat{
		UserID:          d.UserID,
		TotalContent:    d.Total,
		ModeratedCount:  d.Moderated,
		RejectedCount:   d.Rejected,
		FlaggedCount:    d.Flagged,
		ViolationScore:  d.Score,
		LastViolationAt: d.ViolationAt,
		UpdatedAt:       now,
	}
	updates := map[string]interface{}{
		"total_content":   gorm.Expr("total_content + ?", d.Total),
		"moderated_count": gorm.Expr("moderated_count + ?", d.Moderated),
		"rejected_count":  gorm.Expr("rejected_count + ?", d.Rejected),
		"flagged_count":   gorm.Expr("flagged_count + ?", d.Flagged),
		"violation_score": gorm.Expr("violation_score + ?", d.Score),
		"updated_at":      now,
	}
	if d.ViolationAt != nil {
		updates["last_violation_at"] = *d.ViolationAt
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(row).Error
}

func (r *moderationStatRepoImpl) GetStat(ctx context.Context, userID uint64) (*model.UserModerationStat, error) {
	var stat model.UserModerationStat
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stat, nil
}

func (r *moderationStatRepoImpl) TopViolators(ctx context.Context, limit int) ([]*model.UserModerationStat, error) {
	stats := make([]*model.UserModerationStat, 0)
	err := r.db.WithContext(ctx).
		Where("violation_score > 0").
		Order("violation_score DESC").
		Limit(limit).
		Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
