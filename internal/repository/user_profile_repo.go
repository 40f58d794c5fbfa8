package repository

import (
	"Touchstone/internal/model"
	"Touchstone/internal/pkg/similarity"
	"context"
	"fmt"

	"gorm.io/gorm"
)

type UserProfileRepo interface {
	LoadProfiles(ctx context.Context, userIDs []uint64) (map[uint64]*similarity.Profile, error)
	GetMediaTitles(ctx context.Context, ids []uint64) (map[uint64]string, error)
	GetCharacterNames(ctx context.Context, ids []uint64) (map[uint64]string, error)
}

type userProfileRepoImpl struct {
	db *gorm.DB
}

func NewUserProfileRepo(db *gorm.DB) UserProfileRepo {
	return &userProfileRepoImpl{db: db}
}

type userItem struct {
	UserID uint64
	ItemID uint64
}

// LoadProfiles 每个用户只查询一次，没有任何数据的用户也会返回空画像
func (r *userProfileRepoImpl) LoadProfiles(ctx context.Context, userIDs []uint64) (map[uint64]*similarity.Profile, error) {
	profiles := make(map[uint64]*similarity.Profile, len(userIDs))
	for _, id := range userIDs {
		profiles[id] = similarity.NewProfile(id)
	}
	if len(userIDs) == 0 {
		return profiles, nil
	}

	db := r.db.WithContext(ctx)

	tags, err := r.pluckPairs(db.Model(&model.UserTag{}).Select("user_id, tag_id AS item_id"), userIDs)
	if err != nil {
		return nil, fmt.Errorf("load user tags: %w", err)
	}
	for _, row := range tags {
		profiles[row.UserID].AddTags(row.ItemID)
	}

	sources := []struct {
		cat   similarity.Category
		query *gorm.DB
	}{
		{similarity.CategoryMedia, db.Model(&model.MediaFavorite{}).Select("user_id, media_id AS item_id")},
		{similarity.CategoryCharacter, db.Model(&model.CharacterFavorite{}).Select("user_id, character_id AS item_id")},
		{similarity.CategoryHighlight, db.Model(&model.HighlightLike{}).Select("user_id, highlight_id AS item_id")},
		{similarity.CategoryPostUpvote, db.Model(&model.PostVote{}).Select("user_id, post_id AS item_id").Where("vote_type = ?", model.VoteUp)},
	}
	for _, src := range sources {
		rows, err := r.pluckPairs(src.query, userIDs)
		if err != nil {
			return nil, fmt.Errorf("load %s behaviors: %w", src.cat, err)
		}
		for _, row := range rows {
			profiles[row.UserID].AddBehavior(src.cat, row.ItemID)
		}
	}
	return profiles, nil
}

func (r *userProfileRepoImpl) pluckPairs(query *gorm.DB, userIDs []uint64) ([]userItem, error) {
	rows := make([]userItem, 0)
	if err := query.Where("user_id IN ?", userIDs).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userProfileRepoImpl) GetMediaTitles(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	if len(ids) == 0 {
		return map[uint64]string{}, nil
	}
	media := make([]*model.Media, 0, len(ids))
	if err := r.db.WithContext(ctx).Select("id", "title").Where("id IN ?", ids).Find(&media).Error; err != nil {
		return nil, err
	}
	out := make(map[uint64]string, len(media))
	for _, m := range media {
		out[m.ID] = m.Title
	}
	return out, nil
}

func (r *userProfileRepoImpl) GetCharacterNames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	if len(ids) == 0 {
		return map[uint64]string{}, nil
	}
	chars := make([]*model.Character, 0, len(ids))
	if err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&chars).Error; err != nil {
		return nil, err
	}
	out := make(map[uint64]string, len(chars))
	for _, c := range chars {
		out[c.ID] = c.Name
	}
	return out, nil
}
