package repository

import (
	"Touchstone/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserSimilarityRepo interface {
	GetSimilarity(ctx context.Context, lo, hi uint64) (*model.UserSimilarity, error)
	UpsertSimilarities(ctx context.Context, rows []*model.UserSimilarity) error
	ZeroStale(ctx context.Context, userIDs []uint64, before time.Time) (int64, error)
	ListForUser(ctx context.Context, userID uint64, minScore float64, after *SimilarityCursor, limit int) ([]*model.UserSimilarity, error)
}

// SimilarityCursor ListForUser 的翻页位置，取上一页最后一行
type SimilarityCursor struct {
	Score float64
	Lo    uint64
	Hi    uint64
}

func CursorOf(row *model.UserSimilarity) *SimilarityCursor {
	return &SimilarityCursor{Score: row.CombinedScore, Lo: row.UserLo, Hi: row.UserHi}
}

type userSimilarityRepoImpl struct {
	db *gorm.DB
}

func NewUserSimilarityRepo(db *gorm.DB) UserSimilarityRepo {
	return &userSimilarityRepoImpl{db: db}
}

func (r *userSimilarityRepoImpl) GetSimilarity(ctx context.Context, lo, hi uint64) (*model.UserSimilarity, error) {
	var row model.UserSimilarity
	err := r.db.WithContext(ctx).Where("user_lo = ? AND user_hi = ?", lo, hi).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// UpsertSimilarities 并发写入同一对用户时以后写为准，1062 视为成功
func (r *userSimilarityRepoImpl) UpsertSimilarities(ctx context.Context, rows []*model.UserSimilarity) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_lo"}, {Name: "user_hi"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"static_similarity",
			"behavior_similarity",
			"combined_score",
			"common_interests",
			"common_behaviors",
			"last_calculated_at",
		}),
	}).CreateInBatches(rows, 200).Error
	if err != nil && !IsDuplicateKey(err) {
		return err
	}
	return nil
}

// ZeroStale 候选集合内本轮没有重写的用户对说明已无共同点，清零
func (r *userSimilarityRepoImpl) ZeroStale(ctx context.Context, userIDs []uint64, before time.Time) (int64, error) {
	if len(userIDs) < 2 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.UserSimilarity{}).
		Where("user_lo IN ? AND user_hi IN ?", userIDs, userIDs).
		Where("last_calculated_at < ?", before).
		Where("combined_score > 0 OR static_similarity > 0 OR behavior_similarity > 0").
		Updates(map[string]interface{}{
			"static_similarity":   0,
			"behavior_similarity": 0,
			"combined_score":      0,
			"common_interests":    model.IDList{},
			"common_behaviors":    model.CommonBehaviors{},
			"last_calculated_at":  before,
		})
	return result.RowsAffected, result.Error
}

// ListForUser 分数严格大于 minScore，按 (分数降序, user_lo, user_hi) 键集翻页
func (r *userSimilarityRepoImpl) ListForUser(ctx context.Context, userID uint64, minScore float64, after *SimilarityCursor, limit int) ([]*model.UserSimilarity, error) {
	rows := make([]*model.UserSimilarity, 0)
	db := r.db.WithContext(ctx).
		Where("(user_lo = ? OR user_hi = ?) AND combined_score > ?", userID, userID, minScore)
	if after != nil {
		db = db.Where(
			"combined_score < ? OR (combined_score = ? AND (user_lo > ? OR (user_lo = ? AND user_hi > ?)))",
			after.Score, after.Score, after.Lo, after.Lo, after.Hi,
		)
	}
	err := db.
		Order("combined_score DESC, user_lo ASC, user_hi ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
