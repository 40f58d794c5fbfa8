package repository

import (
	"Touchstone/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// UserRepo 定时任务挑选候选用户
type UserRepo interface {
	ListActiveUserIDs(ctx context.Context, since time.Time, limit int) ([]uint64, error)
	ListUserIDs(ctx context.Context, limit int) ([]uint64, error)
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db: db}
}

// ListActiveUserIDs 窗口内发帖、评论、投票或收藏过的用户
func (s *UserRepoImpl) ListActiveUserIDs(ctx context.Context, since time.Time, limit int) ([]uint64, error) {
	db := s.db.WithContext(ctx)
	posts := db.Model(&model.Post{}).Select("user_id").Where("created_at >= ?", since)
	comments := db.Model(&model.PostComment{}).Select("user_id").Where("created_at >= ?", since)
	votes := db.Model(&model.PostVote{}).Select("user_id").Where("created_at >= ?", since)
	collections := db.Model(&model.Collection{}).Select("user_id").Where("created_at >= ?", since)

	ids := make([]uint64, 0)
	err := db.Raw("SELECT DISTINCT a.user_id FROM ((?) UNION (?) UNION (?) UNION (?)) AS a "+
		"JOIN users u ON u.id = a.user_id AND u.is_delete = 0 AND u.is_ban = 0 "+
		"ORDER BY a.user_id ASC LIMIT ?",
		posts, comments, votes, collections, limit).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *UserRepoImpl) ListUserIDs(ctx context.Context, limit int) ([]uint64, error) {
	ids := make([]uint64, 0)
	result := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("is_delete = ? AND is_ban = ?", false, false).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}
