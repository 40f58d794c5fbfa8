package repository

import (
	"Touchstone/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRecommendationRepo interface {
	ListFlaggedCandidateIDs(ctx context.Context, userID uint64) ([]uint64, error)
	ReplaceActive(ctx context.Context, userID uint64, recs []*model.UserRecommendation) error
	ListActive(ctx context.Context, userID uint64, limit, offset int) ([]*model.UserRecommendation, int64, error)
	SetDismissed(ctx context.Context, userID, candidateID uint64) error
	SetFollowed(ctx context.Context, userID, candidateID uint64) error
	ClearFlags(ctx context.Context, userID, candidateID uint64) (int64, error)
}

type userRecommendationRepoImpl struct {
	db *gorm.DB
}

func NewUserRecommendationRepo(db *gorm.DB) UserRecommendationRepo {
	return &userRecommendationRepoImpl{db: db}
}

// ListFlaggedCandidateIDs 已关注或已忽略的候选，重新生成时排除
func (r *userRecommendationRepoImpl) ListFlaggedCandidateIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := r.db.WithContext(ctx).
		Model(&model.UserRecommendation{}).
		Where("user_id = ? AND (is_dismissed = ? OR is_followed = ?)", userID, true, true).
		Pluck("recommended_user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ReplaceActive 删除未标记的旧推荐并写入新推荐，标记行保持不变
func (r *userRecommendationRepoImpl) ReplaceActive(ctx context.Context, userID uint64, recs []*model.UserRecommendation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("user_id = ? AND is_dismissed = ? AND is_followed = ?", userID, false, false).
			Delete(&model.UserRecommendation{}).Error
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			return nil
		}
		// 与并发写入的标记行冲突时只更新推荐内容，不动标记
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "recommended_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"similarity_score", "reason", "reason_type", "reason_detail", "rank", "generated_at",
			}),
		}).Create(recs).Error
	})
}

func (r *userRecommendationRepoImpl) ListActive(ctx context.Context, userID uint64, limit, offset int) ([]*model.UserRecommendation, int64, error) {
	recs := make([]*model.UserRecommendation, 0)
	var total int64
	db := r.db.WithContext(ctx).
		Model(&model.UserRecommendation{}).
		Where("user_id = ? AND is_dismissed = ? AND is_followed = ?", userID, false, false)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("`rank` ASC").Limit(limit).Offset(offset).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (r *userRecommendationRepoImpl) SetDismissed(ctx context.Context, userID, candidateID uint64) error {
	return r.setFlag(ctx, userID, candidateID, "is_dismissed")
}

func (r *userRecommendationRepoImpl) SetFollowed(ctx context.Context, userID, candidateID uint64) error {
	return r.setFlag(ctx, userID, candidateID, "is_followed")
}

// setFlag 候选行不存在时插入一条仅作排除标记的记录，rank 为 0
func (r *userRecommendationRepoImpl) setFlag(ctx context.Context, userID, candidateID uint64, column string) error {
	row := &model.UserRecommendation{
		UserID:            userID,
		RecommendedUserID: candidateID,
		ReasonType:        model.ReasonSimilarTaste,
		IsDismissed:       column == "is_dismissed",
		IsFollowed:        column == "is_followed",
		GeneratedAt:       time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "recommended_user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{column: true}),
	}).Create(row).Error
}

// ClearFlags 仅作排除标记的行（rank 为 0，从未生成过）直接删除，
// 生成过的行去掉标记后重新可见
func (r *userRecommendationRepoImpl) ClearFlags(ctx context.Context, userID, candidateID uint64) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("user_id = ? AND recommended_user_id = ? AND `rank` = 0", userID, candidateID).
			Delete(&model.UserRecommendation{})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		result = tx.
			Model(&model.UserRecommendation{}).
			Where("user_id = ? AND recommended_user_id = ?", userID, candidateID).
			Updates(map[string]interface{}{"is_dismissed": false, "is_followed": false})
		affected += result.RowsAffected
		return result.Error
	})
	return affected, err
}
