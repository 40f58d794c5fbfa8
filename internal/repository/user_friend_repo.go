package repository

import (
	"Touchstone/internal/model"
	"context"

	"gorm.io/gorm"
)

type UserFriendRepo interface {
	GetAcceptedFriendIDs(ctx context.Context, userID uint64) ([]uint64, error)
	IsFriend(ctx context.Context, userID, otherID uint64) (bool, error)
}

type UserFriendRepoImpl struct {
	db *gorm.DB
}

func NewUserFriendRepo(db *gorm.DB) UserFriendRepo {
	return &UserFriendRepoImpl{db: db}
}

// GetAcceptedFriendIDs 获取已通过的好友
func (s *UserFriendRepoImpl) GetAcceptedFriendIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	result := s.db.WithContext(ctx).
		Model(&model.UserFriend{}).
		Where("user_id = ? AND status = ?", userID, model.FriendStatusAccepted).
		Pluck("friend_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}

func (s *UserFriendRepoImpl) IsFriend(ctx context.Context, userID, otherID uint64) (bool, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.UserFriend{}).
		Where("user_id = ? AND friend_id = ? AND status = ?", userID, otherID, model.FriendStatusAccepted).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}
